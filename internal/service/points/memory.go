package points

import (
	"context"
	"fmt"
	"sync"

	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"go.uber.org/zap"
)

// MemoryStore keeps balances in process memory. It is used when no database
// is configured and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]domain.User
	logger *zap.Logger
}

// NewMemoryStore seeds the store with the given accounts.
func NewMemoryStore(logger *zap.Logger, seed ...domain.User) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	users := make(map[string]domain.User, len(seed))
	for _, user := range seed {
		users[user.Name] = user
	}
	return &MemoryStore{users: users, logger: logger}
}

// GetOrCreate returns a copy of the stored account.
func (s *MemoryStore) GetOrCreate(_ context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[name]
	if !ok {
		user = domain.User{Name: name}
		s.users[name] = user
	}
	return &user, nil
}

func (s *MemoryStore) DeductPoints(_ context.Context, user *domain.User, amount int, kind domain.PointsType) error {
	if err := validateDeduction(user, amount, kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.Name]
	if !ok || stored.Balance(kind) < amount {
		return fmt.Errorf("%w: %s has less than %d %s", ErrInsufficientPoints, user.Name, amount, kind)
	}

	stored.SetBalance(kind, stored.Balance(kind)-amount)
	s.users[user.Name] = stored
	user.SetBalance(kind, stored.Balance(kind))

	s.logger.Debug("Points deducted",
		zap.String("user", user.Name),
		zap.Int("amount", amount),
		zap.Stringer("points", kind),
	)
	return nil
}
