package profile

import (
	"strconv"

	"overbot/internal/api"

	"github.com/dustin/go-humanize"
)

// summaryCombat is the allow list of combat stats shown in a summary.
var summaryCombat = []string{"deaths", "eliminations", "damageDone"}

type Summary struct {
	Name        string
	Avatar      string
	LevelIcon   string
	Level       string
	Endorsement int
	GamesWon    string
	Ratings     Ratings
	Modes       []ModeSummary
}

type ModeSummary struct {
	Mode   string
	Game   []Entry
	Combat []Entry
	Awards []Entry
}

// BuildSummary condenses the profile into the fields of the summary view.
// Ratings is nil for an unranked profile. A mode without an allHeroes entry
// is left out.
func (p *Profile) BuildSummary() Summary {
	ratings, _ := p.Ratings()

	s := Summary{
		Name:        p.raw.Name,
		Avatar:      p.raw.Icon,
		LevelIcon:   p.raw.LevelIcon,
		Level:       p.Level(),
		Endorsement: p.raw.Endorsement.Int(),
		GamesWon:    humanize.Comma(int64(p.raw.GamesWon.Int())),
		Ratings:     ratings,
	}

	if m, ok := modeSummary("Quick Play", p.raw.QuickPlayStats); ok {
		s.Modes = append(s.Modes, m)
	}
	if m, ok := modeSummary("Competitive", p.raw.CompetitiveStats); ok {
		s.Modes = append(s.Modes, m)
	}
	return s
}

// Level is the displayed level. A prestige above zero is written in front
// of the level digits, so prestige 3 and level 42 read "342".
func (p *Profile) Level() string {
	level := strconv.Itoa(p.raw.Level.Int())
	if prestige := p.raw.Prestige.Int(); prestige > 0 {
		return strconv.Itoa(prestige) + level
	}
	return level
}

func modeSummary(mode string, stats api.GameStats) (ModeSummary, bool) {
	all, ok := stats.CareerStats[AllHeroes]
	if !ok || len(all) == 0 {
		return ModeSummary{}, false
	}

	m := ModeSummary{
		Mode:   mode,
		Game:   entries(all["game"]),
		Awards: entries(all["matchAwards"]),
	}

	combat := all["combat"]
	for _, key := range summaryCombat {
		v, ok := combat[key]
		if !ok {
			continue
		}
		m.Combat = append(m.Combat, Entry{Label: FormatKey(key), Value: FormatValue(v)})
	}
	return m, true
}
