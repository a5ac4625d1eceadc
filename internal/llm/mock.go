package llm

import "context"

// MockClient permite tests sin llamar a un LLM real. Cada llamada a Complete
// consume la siguiente respuesta de Responses; la última se repite.
type MockClient struct {
	Responses []Message
	Err       error

	Calls [][]Message
}

func (m *MockClient) Complete(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return Message{}, m.Err
	}
	if len(m.Responses) == 0 {
		return Message{Role: "assistant", Content: "ok"}, nil
	}
	next := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return next, nil
}
