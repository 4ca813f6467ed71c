package command

import (
	"context"
	"sync"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
)

type recordingBot struct {
	messages []string
}

func (b *recordingBot) SendMessage(text string) {
	b.messages = append(b.messages, text)
}

type deduction struct {
	user   string
	amount int
	kind   domain.PointsType
}

type fakeLedger struct {
	calls []deduction
	err   error
}

func (l *fakeLedger) DeductPoints(_ context.Context, user *domain.User, amount int, kind domain.PointsType) error {
	l.calls = append(l.calls, deduction{user: user.Name, amount: amount, kind: kind})
	if l.err != nil {
		return l.err
	}
	user.SetBalance(kind, user.Balance(kind)-amount)
	return nil
}

type memoryModuleStore struct {
	mu      sync.Mutex
	modules []string
	found   bool
	saveErr error
	saves   int
}

func (s *memoryModuleStore) LoadModules(context.Context) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.modules...), s.found, nil
}

func (s *memoryModuleStore) SaveModules(_ context.Context, modules []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.modules = append([]string(nil), modules...)
	s.found = true
	return nil
}

func noop(context.Context, *domain.ChatMessage, ChatBot) error { return nil }

func message(text string, user *domain.User, roles ...domain.Role) *domain.ChatMessage {
	if user == nil {
		user = &domain.User{Name: "viewer"}
	}
	return domain.NewChatMessage(text, user, roles...)
}
