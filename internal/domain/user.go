package domain

// PointsType identifies one of the two point currencies a chat user owns.
type PointsType string

const (
	PointsMana   PointsType = "mana"
	PointsElixir PointsType = "elixir"
)

func (p PointsType) String() string {
	return string(p)
}

func (p PointsType) IsValid() bool {
	switch p {
	case PointsMana, PointsElixir:
		return true
	default:
		return false
	}
}

// User is a chat participant with point balances. Balances are changed only
// through a points ledger.
type User struct {
	Name   string `json:"name"`
	Mana   int    `json:"mana"`
	Elixir int    `json:"elixir"`
}

// Balance returns the user's balance for the given currency.
func (u *User) Balance(kind PointsType) int {
	if u == nil {
		return 0
	}
	switch kind {
	case PointsMana:
		return u.Mana
	case PointsElixir:
		return u.Elixir
	default:
		return 0
	}
}

// SetBalance overwrites the balance for the given currency. Negative values are
// stored as zero.
func (u *User) SetBalance(kind PointsType, value int) {
	if u == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	switch kind {
	case PointsMana:
		u.Mana = value
	case PointsElixir:
		u.Elixir = value
	}
}
