package command

import (
	"github.com/kapu/mana-chat-bot-go/internal/domain"
)

// ModuleChecker reports whether a module is active.
type ModuleChecker interface {
	IsActive(name string) bool
}

// Rejection explains why gating refused a command.
type Rejection string

const (
	RejectionNone           Rejection = ""
	RejectionModuleInactive Rejection = "module_inactive"
	RejectionPermission     Rejection = "permission"
)

type GateDecision struct {
	Allowed bool
	Reason  Rejection
}

// EvaluateGating runs the module and permission checks. It has no side effects.
func EvaluateGating(spec *Spec, msg *domain.ChatMessage, modules ModuleChecker) GateDecision {
	if modules == nil || !modules.IsActive(spec.Module()) {
		return GateDecision{Reason: RejectionModuleInactive}
	}

	var roles domain.RoleSet
	if msg != nil {
		roles = msg.Roles
	}
	if !HasPermission(spec, roles) {
		return GateDecision{Reason: RejectionPermission}
	}
	return GateDecision{Allowed: true}
}

// HasPermission applies the owner-only rule first, then the role requirement.
func HasPermission(spec *Spec, roles domain.RoleSet) bool {
	if spec.OwnerOnly() {
		return roles.HasAny(domain.OwnerRoles...)
	}
	if len(spec.rolesRequired) > 0 {
		return roles.HasAny(spec.rolesRequired...)
	}
	return true
}

// ShortageKind names the currencies a user could not cover.
type ShortageKind int

const (
	ShortageNone ShortageKind = iota
	ShortageMana
	ShortageElixir
	ShortageEither
)

func (k ShortageKind) String() string {
	switch k {
	case ShortageMana:
		return "mana"
	case ShortageElixir:
		return "elixir"
	case ShortageEither:
		return "mana_or_elixir"
	default:
		return "none"
	}
}

type CostResult struct {
	OK       bool
	Shortage ShortageKind
}

// CheckCost passes when the user can pay the mana cost or the elixir cost.
// A zero cost does not count as payable; a free command always passes.
func CheckCost(spec *Spec, user *domain.User) CostResult {
	if spec.IsFree() {
		return CostResult{OK: true}
	}

	if spec.manaCost > 0 && user.Balance(domain.PointsMana) >= spec.manaCost {
		return CostResult{OK: true}
	}
	if spec.elixirCost > 0 && user.Balance(domain.PointsElixir) >= spec.elixirCost {
		return CostResult{OK: true}
	}

	switch {
	case spec.manaCost > 0 && spec.elixirCost > 0:
		return CostResult{Shortage: ShortageEither}
	case spec.elixirCost > 0:
		return CostResult{Shortage: ShortageElixir}
	default:
		return CostResult{Shortage: ShortageMana}
	}
}

// Deduction picks the single charge for a finished command. Mana is charged
// first; ok is false when nothing is owed or affordable.
func Deduction(spec *Spec, user *domain.User) (amount int, kind domain.PointsType, ok bool) {
	if spec.manaCost > 0 && user.Balance(domain.PointsMana) >= spec.manaCost {
		return spec.manaCost, domain.PointsMana, true
	}
	if spec.elixirCost > 0 && user.Balance(domain.PointsElixir) >= spec.elixirCost {
		return spec.elixirCost, domain.PointsElixir, true
	}
	return 0, "", false
}
