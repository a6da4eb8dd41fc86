package discord

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const pagerPrefix = "pager"

var (
	errPageExpired = errors.New("this menu has expired, run the command again")
	errNotOwner    = errors.New("only the command author can use these buttons")
)

type pageAction string

const (
	actionFirst pageAction = "first"
	actionPrev  pageAction = "prev"
	actionNext  pageAction = "next"
	actionLast  pageAction = "last"
	actionStop  pageAction = "stop"
)

type pageSession struct {
	owner     string
	pages     []*discordgo.MessageEmbed
	index     int
	expiresAt time.Time
}

// Paginator keeps the state of button paginated messages. A session lives
// for ttl after its last use.
type Paginator struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*pageSession
	now      func() time.Time

	janitorStop chan struct{}
}

func NewPaginator(ttl time.Duration) *Paginator {
	return &Paginator{
		ttl:      ttl,
		sessions: make(map[string]*pageSession),
		now:      time.Now,
	}
}

// Start opens a session for pages and returns the first page with its
// buttons. A single page gets no buttons and no session.
func (p *Paginator) Start(owner string, pages []*discordgo.MessageEmbed) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	if len(pages) == 0 {
		return nil, nil, errors.New("paginator: no pages")
	}
	if len(pages) == 1 {
		return pages[0], nil, nil
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	p.mu.Lock()
	p.sessions[id] = &pageSession{owner: owner, pages: pages, expiresAt: p.now().Add(p.ttl)}
	p.mu.Unlock()

	return pages[0], buttons(id, 0, len(pages)), nil
}

// IsPagerButton reports whether customID belongs to a paginator.
func IsPagerButton(customID string) bool {
	return strings.HasPrefix(customID, pagerPrefix+":")
}

// Turn applies a button press. Stop closes the session and drops the
// buttons.
func (p *Paginator) Turn(customID, userID string) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != pagerPrefix {
		return nil, nil, fmt.Errorf("paginator: malformed custom id %q", customID)
	}
	id, action := parts[1], pageAction(parts[2])

	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[id]
	if !ok || p.now().After(s.expiresAt) {
		delete(p.sessions, id)
		return nil, nil, errPageExpired
	}
	if s.owner != userID {
		return nil, nil, errNotOwner
	}

	last := len(s.pages) - 1
	switch action {
	case actionFirst:
		s.index = 0
	case actionPrev:
		if s.index > 0 {
			s.index--
		}
	case actionNext:
		if s.index < last {
			s.index++
		}
	case actionLast:
		s.index = last
	case actionStop:
		delete(p.sessions, id)
		return s.pages[s.index], []discordgo.MessageComponent{}, nil
	default:
		return nil, nil, fmt.Errorf("paginator: unknown action %q", action)
	}

	s.expiresAt = p.now().Add(p.ttl)
	return s.pages[s.index], buttons(id, s.index, len(s.pages)), nil
}

func buttons(id string, index, count int) []discordgo.MessageComponent {
	button := func(action pageAction, label string, disabled bool) discordgo.Button {
		return discordgo.Button{
			Label:    label,
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s:%s:%s", pagerPrefix, id, action),
			Disabled: disabled,
		}
	}

	atStart, atEnd := index == 0, index == count-1
	stop := button(actionStop, "Stop", false)
	stop.Style = discordgo.DangerButton

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button(actionFirst, "<<", atStart),
			button(actionPrev, "<", atStart),
			button(actionNext, ">", atEnd),
			button(actionLast, ">>", atEnd),
			stop,
		}},
	}
}

// PurgeExpired drops every expired session.
func (p *Paginator) PurgeExpired() {
	now := p.now()

	p.mu.Lock()
	for id, s := range p.sessions {
		if now.After(s.expiresAt) {
			delete(p.sessions, id)
		}
	}
	p.mu.Unlock()
}

func (p *Paginator) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// StartJanitor purges expired sessions every interval until the returned
// function is called.
func (p *Paginator) StartJanitor(interval time.Duration) func() {
	p.mu.Lock()
	if p.janitorStop != nil {
		close(p.janitorStop)
	}
	stop := make(chan struct{})
	p.janitorStop = stop
	p.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.PurgeExpired()
			case <-stop:
				return
			}
		}
	}()

	return func() {
		p.mu.Lock()
		if p.janitorStop == stop {
			close(stop)
			p.janitorStop = nil
		}
		p.mu.Unlock()
	}
}
