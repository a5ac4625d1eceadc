package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TurnQuota limita los turnos de chat por usuario y día (UTC).
type TurnQuota interface {
	Allow(userID string) bool
}

type memoryTurnQuota struct {
	mu    sync.Mutex
	max   int
	day   string
	count map[string]int
}

// NewMemoryTurnQuota crea una cuota diaria en memoria. Solo apto para un
// proceso único; en despliegues horizontales usar la variante Redis.
func NewMemoryTurnQuota(max int) TurnQuota {
	if max <= 0 {
		max = 1
	}
	return &memoryTurnQuota{
		max:   max,
		count: make(map[string]int),
	}
}

func (q *memoryTurnQuota) Allow(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	today := time.Now().UTC().Format("2006-01-02")
	if q.day != today {
		q.day = today
		q.count = make(map[string]int)
	}
	if q.count[userID] >= q.max {
		return false
	}
	q.count[userID]++
	return true
}

const redisQuotaAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisTurnQuota struct {
	client redisEvaler
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisTurnQuota crea una cuota diaria respaldada en Redis. La clave expira
// a la medianoche UTC, cuando se reinicia la cuota.
func NewRedisTurnQuota(client *redis.Client, max int) TurnQuota {
	if client == nil {
		return nil
	}
	if max <= 0 {
		max = 1
	}
	return &redisTurnQuota{
		client: client,
		max:    max,
		prefix: "chat:quota:",
	}
}

func (q *redisTurnQuota) Allow(userID string) bool {
	if q == nil || q.client == nil {
		return true
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	now := time.Now().UTC()
	redisKey := q.prefix + userID + ":" + now.Format("2006-01-02")
	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	seconds := int(midnight.Sub(now).Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := q.client.Eval(ctx, redisQuotaAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		// Ante un Redis caído preferimos no bloquear a los usuarios.
		return true
	}
	return count <= q.max
}
