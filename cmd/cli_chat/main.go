package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"todo-llm/internal/config"
	"todo-llm/internal/db"
	"todo-llm/internal/domain"
	"todo-llm/internal/llm"
	"todo-llm/internal/repository"
	"todo-llm/internal/service"
)

// REPL local contra los servicios reales: útil para probar el agente sin
// levantar el API HTTP.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)
	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	taskTools := service.NewTaskTools(logger.Named("audit"), taskRepo)
	contextSvc := service.NewTokenWindowContextService(messageRepo, cfg.HistoryTokenBudget)
	quota := service.NewMemoryTurnQuota(cfg.ChatDailyLimit)
	chatSvc := service.NewChatService(logger, llmClient, conversationRepo, messageRepo, contextSvc, taskTools, quota, nil)
	userSvc := service.NewUserService(logger, userRepo)

	user, err := ensureUser(ctx, userRepo, userSvc, "cli_test@example.com")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("===== Todo Chat =====")
	fmt.Printf("Usuario: %s (%s)\n", user.Email, user.ID)
	fmt.Println("Escribe un mensaje, o 'salir' para terminar.")

	conversationID := ""
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "salir" || line == "exit" {
			return
		}

		reply, err := chatSvc.Turn(ctx, user.ID, conversationID, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		conversationID = reply.ConversationID
		fmt.Printf("assistant: %s\n", reply.Content)
	}
}

func ensureUser(ctx context.Context, users repository.UserRepository, userSvc *service.UserService, email string) (domain.User, error) {
	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return userSvc.Register(ctx, service.RegisterInput{
		Email:       email,
		Password:    "cli-local-password",
		DisplayName: "CLI",
	})
}
