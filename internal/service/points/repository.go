package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
	"github.com/kapu/mana-chat-bot-go/internal/util"
	boterrors "github.com/kapu/mana-chat-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// ErrInsufficientPoints is returned when a stored balance cannot cover a
// deduction.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrBackendUnavailable is returned while the circuit breaker is open.
var ErrBackendUnavailable = errors.New("points backend unavailable")

// Repository stores chat users and their balances in PostgreSQL. It
// implements both the user lookup used by the message adapter and the ledger
// used by the dispatcher.
type Repository struct {
	db      *sql.DB
	breaker *util.CircuitBreaker
	logger  *zap.Logger
}

func NewRepository(postgres *PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db: postgres.GetDB(),
		breaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}
}

// GetOrCreate loads a user by name, creating an empty account on first sight.
func (r *Repository) GetOrCreate(ctx context.Context, name string) (*domain.User, error) {
	query := `
		INSERT INTO chat_users (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING name, mana, elixir
	`

	var user domain.User
	err := r.withBreaker(ctx, "get_or_create", func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query, name).Scan(&user.Name, &user.Mana, &user.Elixir)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeductPoints subtracts amount from the stored balance and mirrors the new
// value onto user. The update is refused when the balance is too low.
func (r *Repository) DeductPoints(ctx context.Context, user *domain.User, amount int, kind domain.PointsType) error {
	if err := validateDeduction(user, amount, kind); err != nil {
		return err
	}
	column, _ := balanceColumn(kind)

	query := fmt.Sprintf(`
		UPDATE chat_users
		SET %[1]s = %[1]s - $1, updated_at = now()
		WHERE name = $2 AND %[1]s >= $1
		RETURNING %[1]s
	`, column)

	var (
		remaining int
		updated   bool
	)
	err := r.withBreaker(ctx, "deduct", func(ctx context.Context) error {
		err := r.db.QueryRowContext(ctx, query, amount, user.Name).Scan(&remaining)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		updated = err == nil
		return err
	})
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: %s has less than %d %s", ErrInsufficientPoints, user.Name, amount, kind)
	}

	user.SetBalance(kind, remaining)
	r.logger.Debug("Points deducted",
		zap.String("user", user.Name),
		zap.Int("amount", amount),
		zap.Stringer("points", kind),
		zap.Int("remaining", remaining),
	)
	return nil
}

func (r *Repository) withBreaker(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	if !r.breaker.CanExecute() {
		return boterrors.NewServiceError("points backend unavailable", "points", operation, ErrBackendUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.PostgresConfig.QueryTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		r.breaker.RecordFailure()
		return boterrors.NewServiceError("points query failed", "points", operation, err)
	}
	r.breaker.RecordSuccess()
	return nil
}

func balanceColumn(kind domain.PointsType) (string, error) {
	switch kind {
	case domain.PointsMana:
		return "mana", nil
	case domain.PointsElixir:
		return "elixir", nil
	default:
		return "", fmt.Errorf("unknown points type %q", kind)
	}
}

func validateDeduction(user *domain.User, amount int, kind domain.PointsType) error {
	if user == nil || user.Name == "" {
		return boterrors.NewValidationError("user is required", "user", user)
	}
	if amount <= 0 {
		return boterrors.NewValidationError("amount must be positive", "amount", amount)
	}
	if !kind.IsValid() {
		return boterrors.NewValidationError("unknown points type", "kind", kind)
	}
	return nil
}
