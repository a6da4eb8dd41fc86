package profile

import (
	"sort"
	"strings"
	"unicode"

	"overbot/internal/api"
	"overbot/internal/domain"
)

// AllHeroes is the career stats key aggregating every hero.
const AllHeroes = "allHeroes"

// HeroStats is the resolved view of one hero across both game modes. A nil
// side means the mode has no stats for the hero.
type HeroStats struct {
	Hero        string
	Keys        []string
	QuickPlay   api.HeroStats
	Competitive api.HeroStats
}

// ResolveStats selects one hero from both game modes. Keys is the sorted
// union of stat categories, minus the ones empty in both modes.
func (p *Profile) ResolveStats(hero string) (HeroStats, error) {
	quickplay := p.raw.QuickPlayStats.CareerStats
	competitive := p.raw.CompetitiveStats.CareerStats

	if len(quickplay) == 0 && len(competitive) == 0 {
		return HeroStats{}, domain.ErrNoStats
	}

	q, qok := quickplay[hero]
	c, cok := competitive[hero]
	if !qok && !cok {
		return HeroStats{}, domain.NewNoHeroStats(FormatKey(hero))
	}

	seen := make(map[string]struct{}, len(q)+len(c))
	for key := range q {
		seen[key] = struct{}{}
	}
	for key := range c {
		seen[key] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		if len(q[key]) == 0 && len(c[key]) == 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return HeroStats{Hero: hero, Keys: keys, QuickPlay: q, Competitive: c}, nil
}

type Entry struct {
	Label string
	Value string
}

// StatPage is one rendered stat category. A nil side has no data for the
// category in that game mode.
type StatPage struct {
	Title       string
	QuickPlay   []Entry
	Competitive []Entry
	Index       int
	Count       int
}

// BuildStatPages returns one page per stat category of hero, 1-indexed. The
// slice is freshly built on every call.
func (p *Profile) BuildStatPages(hero string) ([]StatPage, error) {
	stats, err := p.ResolveStats(hero)
	if err != nil {
		return nil, err
	}

	pages := make([]StatPage, 0, len(stats.Keys))
	for i, key := range stats.Keys {
		pages = append(pages, StatPage{
			Title:       FormatKey(key),
			QuickPlay:   entries(stats.QuickPlay[key]),
			Competitive: entries(stats.Competitive[key]),
			Index:       i + 1,
			Count:       len(stats.Keys),
		})
	}
	return pages, nil
}

// entries renders a stat block sorted by its raw keys.
func entries(block api.StatBlock) []Entry {
	if len(block) == 0 {
		return nil
	}

	keys := make([]string, 0, len(block))
	for key := range block {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, Entry{Label: FormatKey(key), Value: FormatValue(block[key])})
	}
	return out
}

// HeroKey maps user input such as "Soldier 76" or "d.va" to the careerStats
// key it names, ignoring case and anything but letters and digits. Unknown
// names are returned unchanged so ResolveStats reports them.
func (p *Profile) HeroKey(name string) string {
	want := squash(name)
	if want == "" {
		return AllHeroes
	}
	for _, stats := range []map[string]api.HeroStats{p.raw.QuickPlayStats.CareerStats, p.raw.CompetitiveStats.CareerStats} {
		for key := range stats {
			if squash(key) == want {
				return key
			}
		}
	}
	return name
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
