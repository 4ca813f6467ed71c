package command

import (
	"strings"
	"sync/atomic"

	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"github.com/kapu/mana-chat-bot-go/internal/domain"
)

// Spec describes a single command: how it is triggered, who may run it, what
// it costs and what it does. Only the registration flag changes after
// construction.
type Spec struct {
	name          string
	aliases       []string
	ownerOnly     bool
	rolesRequired []domain.Role
	manaCost      int
	elixirCost    int
	module        string
	handler       Handler
	helpText      string

	registered atomic.Bool
}

type Option func(*Spec)

func WithAliases(aliases ...string) Option {
	return func(s *Spec) {
		for _, alias := range aliases {
			if alias = strings.ToLower(strings.TrimSpace(alias)); alias != "" {
				s.aliases = append(s.aliases, alias)
			}
		}
	}
}

// OwnerOnly restricts the command to the channel owner.
func OwnerOnly() Option {
	return func(s *Spec) {
		s.ownerOnly = true
	}
}

// WithRoles requires the sender to hold at least one of roles.
func WithRoles(roles ...domain.Role) Option {
	return func(s *Spec) {
		for _, role := range domain.NewRoleSet(roles...).Strings() {
			s.rolesRequired = append(s.rolesRequired, domain.Role(role))
		}
	}
}

func WithManaCost(cost int) Option {
	return func(s *Spec) {
		s.manaCost = max(cost, 0)
	}
}

func WithElixirCost(cost int) Option {
	return func(s *Spec) {
		s.elixirCost = max(cost, 0)
	}
}

// InModule assigns the command to a functional module.
func InModule(module string) Option {
	return func(s *Spec) {
		if module = strings.TrimSpace(module); module != "" {
			s.module = module
		}
	}
}

// NewSpec builds an unregistered command. Names and aliases are matched in
// lowercase, so they are stored that way.
func NewSpec(name string, handler Handler, opts ...Option) *Spec {
	name = strings.ToLower(strings.TrimSpace(name))
	s := &Spec{
		name:     name,
		module:   constants.DefaultModule,
		handler:  handler,
		helpText: constants.CommandPrefix + name,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Spec) Name() string { return s.name }
func (s *Spec) OwnerOnly() bool { return s.ownerOnly }
func (s *Spec) ManaCost() int { return s.manaCost }
func (s *Spec) ElixirCost() int { return s.elixirCost }
func (s *Spec) Module() string { return s.module }
func (s *Spec) HelpText() string { return s.helpText }
func (s *Spec) Registered() bool { return s.registered.Load() }
func (s *Spec) IsFree() bool { return s.manaCost == 0 && s.elixirCost == 0 }
func (s *Spec) hasHandler() bool { return s.handler != nil }
func (s *Spec) markRegistered() bool { return s.registered.CompareAndSwap(false, true) }

func (s *Spec) Aliases() []string {
	return append([]string(nil), s.aliases...)
}

func (s *Spec) RolesRequired() []domain.Role {
	return append([]domain.Role(nil), s.rolesRequired...)
}

// Matches reports whether token, already lowercased, triggers this command.
func (s *Spec) Matches(token string) bool {
	if !strings.HasPrefix(token, constants.CommandPrefix) {
		return false
	}
	word := token[len(constants.CommandPrefix):]
	if word == s.name {
		return true
	}
	for _, alias := range s.aliases {
		if word == alias {
			return true
		}
	}
	return false
}
