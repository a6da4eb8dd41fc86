package service

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"overbot/internal/api"
	"overbot/internal/database"
	"overbot/internal/domain"
	"overbot/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "overbot.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestHTTPClient serves handler on an in-memory listener.
func newTestHTTPClient(t *testing.T, handler fasthttp.RequestHandler) *fasthttp.Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })

	return &fasthttp.Client{Dial: func(addr string) (net.Conn, error) { return ln.Dial() }}
}

type fakeFetcher struct {
	profiles map[string]*api.Profile
	calls    int
}

func (f *fakeFetcher) Lookup(ctx context.Context, id domain.Identifier) (*api.Profile, error) {
	f.calls++
	if p, ok := f.profiles[id.Username]; ok {
		return p, nil
	}
	return nil, domain.NewStatusError(domain.KindNotFound, 404)
}

type fakeEditor struct {
	mu    sync.Mutex
	nicks map[string]string
	err   error
}

func (f *fakeEditor) EditNickname(ctx context.Context, guildID, memberID, nick string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.nicks == nil {
		f.nicks = make(map[string]string)
	}
	f.nicks[guildID+"/"+memberID] = nick
	return nil
}

type testServices struct {
	db       *sql.DB
	premium  *PremiumCache
	profiles *ProfileService
	fetcher  *fakeFetcher
	servers  *repository.ServerRepository
	members  *repository.MemberRepository
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := newTestDB(t)
	log := zerolog.Nop()
	servers := repository.NewServerRepository(db, log)
	members := repository.NewMemberRepository(db, log)
	premium := NewPremiumCache(servers, members, log)
	fetcher := &fakeFetcher{profiles: map[string]*api.Profile{}}

	return &testServices{
		db:      db,
		premium: premium,
		fetcher: fetcher,
		servers: servers,
		members: members,
		profiles: NewProfileService(
			fetcher,
			repository.NewProfileRepository(db, log),
			repository.NewRatingRepository(db, log),
			premium,
			log,
		),
	}
}

var errEdit = errors.New("missing permissions")
