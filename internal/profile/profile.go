// Package profile reshapes a raw upstream player document into the views the
// bot renders: role ratings and tiers, per hero stat pages and a summary.
//
// A Profile is read only. It is owned by the invocation that fetched it and
// never shared, so it carries no locking.
package profile

import (
	"strings"

	"overbot/internal/api"
)

type Role string

const (
	RoleTank    Role = "tank"
	RoleDamage  Role = "damage"
	RoleSupport Role = "support"
)

// Roles is the display order of role ratings.
var Roles = []Role{RoleTank, RoleDamage, RoleSupport}

func (r Role) valid() bool {
	return r == RoleTank || r == RoleDamage || r == RoleSupport
}

// Ratings maps a role to its rating level. A profile without any known
// role rating is unranked and has no Ratings at all.
type Ratings map[Role]int

type RoleRating struct {
	Role  Role
	Level int
}

// Ordered returns the ratings in tank, damage, support order.
func (r Ratings) Ordered() []RoleRating {
	out := make([]RoleRating, 0, len(r))
	for _, role := range Roles {
		if level, ok := r[role]; ok {
			out = append(out, RoleRating{Role: role, Level: level})
		}
	}
	return out
}

type Profile struct {
	raw *api.Profile
}

// New wraps a fetched document. A nil document is a caller bug.
func New(raw *api.Profile) *Profile {
	if raw == nil {
		panic("profile: New called with a nil document")
	}
	return &Profile{raw: raw}
}

func (p *Profile) Raw() *api.Profile { return p.raw }

func (p *Profile) Name() string { return p.raw.Name }

func (p *Profile) Avatar() string { return p.raw.Icon }

func (p *Profile) LevelIcon() string { return p.raw.LevelIcon }

// IsPrivate must be checked before any other view is rendered; a private
// profile has no meaningful stats.
func (p *Profile) IsPrivate() bool { return p.raw.Private }

func (p *Profile) HasStats() bool {
	return len(p.raw.QuickPlayStats.CareerStats) > 0 || len(p.raw.CompetitiveStats.CareerStats) > 0
}

// Ratings returns the per role levels, or false when the profile is
// unranked. Unknown roles are dropped.
func (p *Profile) Ratings() (Ratings, bool) {
	if len(p.raw.Ratings) == 0 {
		return nil, false
	}

	ratings := make(Ratings, len(p.raw.Ratings))
	for key, value := range p.raw.Ratings {
		role := Role(strings.ToLower(key))
		if !role.valid() {
			continue
		}
		ratings[role] = value.Level.Int()
	}

	if len(ratings) == 0 {
		return nil, false
	}
	return ratings, true
}
