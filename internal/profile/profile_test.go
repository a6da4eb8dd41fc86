package profile

import (
	"testing"

	"overbot/internal/api"
	"overbot/internal/domain"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const fixture = `{
	"name": "Mercy#2000",
	"icon": "https://example.test/avatar.png",
	"level": 42,
	"prestige": 3,
	"endorsement": 4,
	"gamesWon": 12345,
	"ratings": {"tank": {"level": 1499}, "Support": {"level": "3500"}, "open": {"level": 2000}},
	"quickPlayStats": {
		"careerStats": {
			"allHeroes": {
				"combat": {"deaths": 10, "eliminations": 25, "damageDone": 12000, "multikills": 1},
				"game": {"gamesWon": 3, "timePlayed": "1:02:03"},
				"matchAwards": {"cards": 2},
				"best": {"eliminationsMostInGame": 30},
				"heroSpecific": null
			},
			"mercy": {
				"assists": {"healingDone": 1500.5, "defensiveAssists": 2},
				"average": {}
			}
		}
	},
	"competitiveStats": {
		"careerStats": {
			"mercy": {
				"assists": {"healingDone": 900},
				"average": {"healingDoneAvgPer10Min": 8000},
				"miscellaneous": null
			}
		}
	}
}`

func load(t *testing.T, body string) *Profile {
	t.Helper()
	var raw api.Profile
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return New(&raw)
}

func TestNew_NilPanics(t *testing.T) {
	require.Panics(t, func() { New(nil) })
}

func TestTierFor_Boundaries(t *testing.T) {
	cases := map[int]Tier{
		-5:   TierBronze,
		0:    TierBronze,
		1:    TierBronze,
		1499: TierBronze,
		1500: TierSilver,
		1999: TierSilver,
		2000: TierGold,
		2499: TierGold,
		2500: TierPlatinum,
		2999: TierPlatinum,
		3000: TierDiamond,
		3499: TierDiamond,
		3500: TierMaster,
		3999: TierMaster,
		4000: TierGrandMaster,
		5000: TierGrandMaster,
	}
	for level, want := range cases {
		require.Equal(t, want, TierFor(level), "level %d", level)
	}
}

func TestTierFor_Monotonic(t *testing.T) {
	prev := TierFor(-100)
	for level := -99; level <= 5000; level++ {
		tier := TierFor(level)
		require.GreaterOrEqual(t, tier, prev, "level %d", level)
		prev = tier
	}
}

func TestRatings(t *testing.T) {
	p := load(t, fixture)

	ratings, ok := p.Ratings()
	require.True(t, ok)
	require.Equal(t, Ratings{RoleTank: 1499, RoleSupport: 3500}, ratings)
	require.Equal(t, []RoleRating{{RoleTank, 1499}, {RoleSupport, 3500}}, ratings.Ordered())
}

func TestRatings_Unranked(t *testing.T) {
	for _, body := range []string{
		`{"name": "a"}`,
		`{"name": "a", "ratings": null}`,
		`{"name": "a", "ratings": []}`,
		`{"name": "a", "ratings": {}}`,
		`{"name": "a", "ratings": {"open": {"level": 2000}}}`,
	} {
		ratings, ok := load(t, body).Ratings()
		require.False(t, ok, body)
		require.Nil(t, ratings, body)
	}
}

func TestFormatKey(t *testing.T) {
	cases := map[string]string{
		"best":                    "Best (Most in game)",
		"average":                 "Average (per 10 minutes)",
		"damageDone":              "Damage Done",
		"eliminationsAvgPer10Min": "Eliminations",
		"allDamageDoneMostInGame": "All Damage Done",
		"matchAwards":             "Match Awards",
		"heroSpecific":            "Hero Specific",
		"deaths":                  "Deaths",
	}
	for key, want := range cases {
		require.Equal(t, want, FormatKey(key), key)
	}
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "12000", FormatValue(float64(12000)))
	require.Equal(t, "1500.5", FormatValue(1500.5))
	require.Equal(t, "1:02:03", FormatValue("1:02:03"))
	require.Equal(t, "", FormatValue(nil))
}

func TestResolveStats(t *testing.T) {
	p := load(t, fixture)

	stats, err := p.ResolveStats("mercy")
	require.NoError(t, err)
	require.Equal(t, []string{"assists", "average"}, stats.Keys)
	require.NotNil(t, stats.QuickPlay)
	require.NotNil(t, stats.Competitive)

	stats, err = p.ResolveStats(AllHeroes)
	require.NoError(t, err)
	require.Equal(t, []string{"best", "combat", "game", "matchAwards"}, stats.Keys)
	require.Nil(t, stats.Competitive)
}

func TestResolveStats_MissingHero(t *testing.T) {
	p := load(t, fixture)

	_, err := p.ResolveStats("reinhardt")
	require.ErrorIs(t, err, domain.ErrNoHeroStats)

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "Reinhardt", derr.Hero)
	require.Equal(t, "This profile has no quick play nor competitive stats for **Reinhardt** to display.", derr.Error())
}

func TestResolveStats_MissingAllHeroes(t *testing.T) {
	p := load(t, `{"name": "a", "quickPlayStats": {"careerStats": {"mercy": {"combat": {"eliminations": 1}}}}}`)

	_, err := p.ResolveStats(AllHeroes)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, domain.KindNoHeroStats, derr.Kind)
	require.Contains(t, derr.Error(), "**All Heroes**")
}

func TestResolveStats_NoStats(t *testing.T) {
	p := load(t, `{"name": "a", "quickPlayStats": {"careerStats": {}}}`)
	require.False(t, p.HasStats())

	_, err := p.ResolveStats(AllHeroes)
	require.ErrorIs(t, err, domain.ErrNoStats)
}

func TestBuildStatPages(t *testing.T) {
	p := load(t, fixture)

	pages, err := p.BuildStatPages("mercy")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	require.Equal(t, "Assists", pages[0].Title)
	require.Equal(t, 1, pages[0].Index)
	require.Equal(t, 2, pages[0].Count)
	require.Equal(t, []Entry{{"Defensive Assists", "2"}, {"Healing Done", "1500.5"}}, pages[0].QuickPlay)
	require.Equal(t, []Entry{{"Healing Done", "900"}}, pages[0].Competitive)

	// average exists only on the competitive side with data.
	require.Equal(t, "Average (per 10 minutes)", pages[1].Title)
	require.Nil(t, pages[1].QuickPlay)
	require.Equal(t, []Entry{{"Healing Done", "8000"}}, pages[1].Competitive)
	require.Equal(t, 2, pages[1].Index)

	again, err := p.BuildStatPages("mercy")
	require.NoError(t, err)
	again[0].Title = "changed"
	require.Equal(t, "Assists", pages[0].Title)
}

func TestBuildSummary(t *testing.T) {
	p := load(t, fixture)

	s := p.BuildSummary()
	require.Equal(t, "Mercy#2000", s.Name)
	require.Equal(t, "342", s.Level)
	require.Equal(t, 4, s.Endorsement)
	require.Equal(t, "12,345", s.GamesWon)
	require.Len(t, s.Ratings, 2)

	// competitive has no allHeroes entry.
	require.Len(t, s.Modes, 1)
	qp := s.Modes[0]
	require.Equal(t, "Quick Play", qp.Mode)
	require.Equal(t, []Entry{{"Deaths", "10"}, {"Eliminations", "25"}, {"Damage Done", "12000"}}, qp.Combat)
	require.Equal(t, []Entry{{"Games Won", "3"}, {"Time Played", "1:02:03"}}, qp.Game)
	require.Equal(t, []Entry{{"Cards", "2"}}, qp.Awards)
}

func TestBuildSummary_NoPrestige(t *testing.T) {
	p := load(t, `{"name": "a", "level": 7, "prestige": 0}`)
	s := p.BuildSummary()
	require.Equal(t, "7", s.Level)
	require.Nil(t, s.Ratings)
	require.Empty(t, s.Modes)
}

func TestPrivateProfile(t *testing.T) {
	docs := map[string]string{
		"empty modes": `{"name": "Hidden#1", "private": true, "ratings": null, "quickPlayStats": {}, "competitiveStats": {}}`,
		"null career": `{"name": "Hidden#1", "private": true, "ratings": null,
			"quickPlayStats": {"careerStats": null}, "competitiveStats": null}`,
		"null modes": `{"name": "Hidden#1", "private": true, "quickPlayStats": null, "competitiveStats": null}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			p := load(t, doc)
			require.True(t, p.IsPrivate())
			require.False(t, p.HasStats())

			require.NotPanics(t, func() { p.BuildSummary() })

			ratings, ok := p.Ratings()
			require.False(t, ok)
			require.Empty(t, ratings)

			_, err := p.ResolveStats(AllHeroes)
			require.ErrorIs(t, err, domain.ErrNoStats)

			_, err = p.ResolveStats("mercy")
			require.ErrorIs(t, err, domain.ErrNoStats)

			pages, err := p.BuildStatPages(AllHeroes)
			require.ErrorIs(t, err, domain.ErrNoStats)
			require.Empty(t, pages)
		})
	}
}

func TestHeroKey(t *testing.T) {
	p := load(t, fixture)

	require.Equal(t, "mercy", p.HeroKey("Mercy"))
	require.Equal(t, "mercy", p.HeroKey(" MER-CY "))
	require.Equal(t, AllHeroes, p.HeroKey("All Heroes"))
	require.Equal(t, AllHeroes, p.HeroKey(""))
	require.Equal(t, "Soldier 76", p.HeroKey("Soldier 76"))
}
