package discord

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func testPages(n int) []*discordgo.MessageEmbed {
	pages := make([]*discordgo.MessageEmbed, n)
	for i := range pages {
		pages[i] = &discordgo.MessageEmbed{Title: fmt.Sprintf("page %d", i+1)}
	}
	return pages
}

func rowButtons(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)

	buttons := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		buttons = append(buttons, b)
	}
	require.Len(t, buttons, 5)
	return buttons
}

func customID(t *testing.T, components []discordgo.MessageComponent, action pageAction) string {
	t.Helper()
	for _, b := range rowButtons(t, components) {
		if strings.HasSuffix(b.CustomID, ":"+string(action)) {
			return b.CustomID
		}
	}
	t.Fatalf("no %s button", action)
	return ""
}

func TestPaginator_Navigation(t *testing.T) {
	p := NewPaginator(time.Minute)

	first, components, err := p.Start("user", testPages(3))
	require.NoError(t, err)
	require.Equal(t, "page 1", first.Title)
	require.Equal(t, 1, p.Len())

	buttons := rowButtons(t, components)
	require.True(t, buttons[0].Disabled)
	require.True(t, buttons[1].Disabled)
	require.False(t, buttons[2].Disabled)
	require.False(t, buttons[3].Disabled)
	require.True(t, IsPagerButton(buttons[2].CustomID))

	page, components, err := p.Turn(customID(t, components, actionNext), "user")
	require.NoError(t, err)
	require.Equal(t, "page 2", page.Title)

	page, components, err = p.Turn(customID(t, components, actionLast), "user")
	require.NoError(t, err)
	require.Equal(t, "page 3", page.Title)
	buttons = rowButtons(t, components)
	require.True(t, buttons[2].Disabled)
	require.True(t, buttons[3].Disabled)

	// next on the last page stays put
	page, components, err = p.Turn(customID(t, components, actionNext), "user")
	require.NoError(t, err)
	require.Equal(t, "page 3", page.Title)

	page, components, err = p.Turn(customID(t, components, actionPrev), "user")
	require.NoError(t, err)
	require.Equal(t, "page 2", page.Title)

	page, _, err = p.Turn(customID(t, components, actionFirst), "user")
	require.NoError(t, err)
	require.Equal(t, "page 1", page.Title)
}

func TestPaginator_SinglePage(t *testing.T) {
	p := NewPaginator(time.Minute)

	first, components, err := p.Start("user", testPages(1))
	require.NoError(t, err)
	require.Equal(t, "page 1", first.Title)
	require.Nil(t, components)
	require.Zero(t, p.Len())

	_, _, err = p.Start("user", nil)
	require.Error(t, err)
}

func TestPaginator_Owner(t *testing.T) {
	p := NewPaginator(time.Minute)

	_, components, err := p.Start("owner", testPages(2))
	require.NoError(t, err)

	_, _, err = p.Turn(customID(t, components, actionNext), "someone else")
	require.ErrorIs(t, err, errNotOwner)
	require.Equal(t, 1, p.Len())
}

func TestPaginator_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPaginator(time.Minute)
	p.now = func() time.Time { return now }

	_, components, err := p.Start("user", testPages(2))
	require.NoError(t, err)

	// a turn extends the session
	now = now.Add(50 * time.Second)
	_, components, err = p.Turn(customID(t, components, actionNext), "user")
	require.NoError(t, err)

	now = now.Add(50 * time.Second)
	_, components, err = p.Turn(customID(t, components, actionPrev), "user")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, _, err = p.Turn(customID(t, components, actionNext), "user")
	require.ErrorIs(t, err, errPageExpired)
	require.Zero(t, p.Len())
}

func TestPaginator_Stop(t *testing.T) {
	p := NewPaginator(time.Minute)

	_, components, err := p.Start("user", testPages(3))
	require.NoError(t, err)
	_, components, err = p.Turn(customID(t, components, actionNext), "user")
	require.NoError(t, err)
	stopID := customID(t, components, actionStop)

	page, components, err := p.Turn(stopID, "user")
	require.NoError(t, err)
	require.Equal(t, "page 2", page.Title)
	require.NotNil(t, components)
	require.Empty(t, components)
	require.Zero(t, p.Len())

	_, _, err = p.Turn(stopID, "user")
	require.ErrorIs(t, err, errPageExpired)
}

func TestPaginator_PurgeExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewPaginator(time.Minute)
	p.now = func() time.Time { return now }

	_, _, err := p.Start("a", testPages(2))
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, _, err = p.Start("b", testPages(2))
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	p.PurgeExpired()
	require.Equal(t, 1, p.Len())

	now = now.Add(time.Minute)
	p.PurgeExpired()
	require.Zero(t, p.Len())
}

func TestPaginator_MalformedID(t *testing.T) {
	p := NewPaginator(time.Minute)

	_, _, err := p.Turn("pager:only", "user")
	require.Error(t, err)
	require.False(t, IsPagerButton("other:abc:next"))

	_, components, err := p.Start("user", testPages(2))
	require.NoError(t, err)
	id := customID(t, components, actionNext)
	_, _, err = p.Turn(strings.TrimSuffix(id, "next")+"jump", "user")
	require.Error(t, err)
}

func TestPaginator_Janitor(t *testing.T) {
	p := NewPaginator(time.Millisecond)

	_, _, err := p.Start("user", testPages(2))
	require.NoError(t, err)

	stop := p.StartJanitor(5 * time.Millisecond)
	defer stop()

	require.Eventually(t, func() bool { return p.Len() == 0 }, time.Second, 5*time.Millisecond)
}
