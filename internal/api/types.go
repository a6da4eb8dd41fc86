package api

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// CandidateAccount is one entry of the account search result. Older API
// generations send name/urlName, newer ones battleTag.
type CandidateAccount struct {
	BattleTag string `json:"battleTag"`
	Name      string `json:"name"`
	URLName   string `json:"urlName"`
	Platform  string `json:"platform"`
}

// Tag is the display tag used both for matching and as the resolved name.
func (c CandidateAccount) Tag() string {
	if c.BattleTag != "" {
		return c.BattleTag
	}
	if c.Name != "" {
		return c.Name
	}
	return c.URLName
}

// Profile is the complete player document returned by the profile endpoint.
type Profile struct {
	Name             string      `json:"name"`
	Icon             string      `json:"icon"`
	Level            FlexInt     `json:"level"`
	LevelIcon        string      `json:"levelIcon"`
	Prestige         FlexInt     `json:"prestige"`
	PrestigeIcon     string      `json:"prestigeIcon"`
	Endorsement      FlexInt     `json:"endorsement"`
	EndorsementIcon  string      `json:"endorsementIcon"`
	Rating           FlexInt     `json:"rating"`
	RatingIcon       string      `json:"ratingIcon"`
	Ratings          RoleRatings `json:"ratings"`
	GamesWon         FlexInt     `json:"gamesWon"`
	Private          bool        `json:"private"`
	QuickPlayStats   GameStats   `json:"quickPlayStats"`
	CompetitiveStats GameStats   `json:"competitiveStats"`
}

type GameStats struct {
	CareerStats map[string]HeroStats `json:"careerStats"`
	Games       struct {
		Played FlexInt `json:"played"`
		Won    FlexInt `json:"won"`
	} `json:"games"`
}

// HeroStats maps a stat category (combat, game, best...) to its block. A
// category upstream sends as null decodes to a nil block.
type HeroStats map[string]StatBlock

// StatBlock maps a stat key to its raw value: a float64 for numbers, a
// string for durations and formatted values.
type StatBlock map[string]any

// RoleLevel is the per role rating object.
type RoleLevel struct {
	Role  string  `json:"role"`
	Level FlexInt `json:"level"`
}

// RoleRatings maps the upstream role key to its rating. It accepts both the
// object form {"tank": {"level": 2500}} and the array form
// [{"role": "tank", "level": 2500}].
type RoleRatings map[string]RoleLevel

func (r *RoleRatings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}

	if data[0] == '[' {
		var list []RoleLevel
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("ratings: %w", err)
		}
		if len(list) == 0 {
			*r = nil
			return nil
		}
		out := make(RoleRatings, len(list))
		for _, item := range list {
			if item.Role == "" {
				continue
			}
			out[item.Role] = item
		}
		*r = out
		return nil
	}

	var m map[string]RoleLevel
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("ratings: %w", err)
	}
	if len(m) == 0 {
		*r = nil
		return nil
	}
	*r = m
	return nil
}

// FlexInt decodes a JSON number, a numeric string, an empty string or null.
// Upstream is inconsistent about which one it sends for display numbers.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flex int %q: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int() int { return int(f) }
