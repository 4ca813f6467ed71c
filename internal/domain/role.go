package domain

import (
	"sort"
	"strings"
)

// Role is a chat role held by a sender in the current channel.
type Role string

const (
	RoleStreamer    Role = "streamer"
	RoleBroadcaster Role = "broadcaster"
	RoleModerator   Role = "moderator"
	RoleVIP         Role = "vip"
	RoleSubscriber  Role = "subscriber"
)

// OwnerRoles are the roles that grant access to owner-only commands.
var OwnerRoles = []Role{RoleStreamer, RoleBroadcaster}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles. Role names are lowercased and
// empty names are skipped.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		normalized := Role(strings.ToLower(strings.TrimSpace(string(role))))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether the set intersects roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if s.Has(role) {
			return true
		}
	}
	return false
}

// Strings returns the roles sorted by name.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for role := range s {
		out = append(out, string(role))
	}
	sort.Strings(out)
	return out
}
