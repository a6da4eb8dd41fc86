package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"overbot/internal/config"
	"overbot/internal/domain"
	"overbot/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	endpointSearch  = "search"
	endpointProfile = "profile"
)

// Client talks to the account search and profile endpoints of the stats API.
// It never retries: every failure is classified into a *domain.Error and
// returned to the caller.
type Client struct {
	apiBase     string
	accountBase string
	client      *fasthttp.Client
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return newClient(cfg.Overwatch.APIBase, cfg.Overwatch.AccountBase, &fasthttp.Client{
		Name:                   "OverBot",
		MaxConnsPerHost:        100,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		MaxIdleConnDuration:    1 * time.Minute,
		DisablePathNormalizing: true,
	}, logger)
}

func newClient(apiBase, accountBase string, hc *fasthttp.Client, logger zerolog.Logger) *Client {
	return &Client{
		apiBase:     strings.TrimRight(apiBase, "/"),
		accountBase: strings.TrimRight(accountBase, "/"),
		client:      hc,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

func (c *Client) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	limit := string(resp.Header.Peek("X-Ratelimit-Limit"))
	if limit == "" {
		return
	}

	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if val, err := strconv.Atoi(limit); err == nil {
		c.rateLimit.Limit = val
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// SearchAccounts returns every account upstream matches for username. The
// search is fuzzy, so the result usually needs ResolveName.
func (c *Client) SearchAccounts(ctx context.Context, username string) ([]CandidateAccount, error) {
	u := fmt.Sprintf("%s/%s/", c.accountBase, url.PathEscape(username))

	body, err := c.get(ctx, endpointSearch, u)
	if err != nil {
		return nil, err
	}

	var candidates []CandidateAccount
	if err := json.Unmarshal(body, &candidates); err != nil {
		c.observe(endpointSearch, domain.KindUnknown)
		return nil, domain.WrapUnknown(fmt.Errorf("decode search response: %w", err))
	}
	return candidates, nil
}

// GetProfile fetches the complete profile of an already resolved name.
func (c *Client) GetProfile(ctx context.Context, platform domain.Platform, name string) (*Profile, error) {
	urlName := url.PathEscape(strings.ReplaceAll(name, "#", "-"))
	u := fmt.Sprintf("%s/%s/%s/complete", c.apiBase, platform, urlName)

	body, err := c.get(ctx, endpointProfile, u)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		c.observe(endpointProfile, domain.KindInternalServer)
		return nil, &domain.Error{Kind: domain.KindInternalServer, Err: fmt.Errorf("decode profile: %w", err)}
	}
	return &profile, nil
}

// Lookup runs the whole pipeline for one identifier: search, resolve, fetch.
func (c *Client) Lookup(ctx context.Context, id domain.Identifier) (*Profile, error) {
	candidates, err := c.SearchAccounts(ctx, id.Username)
	if err != nil {
		return nil, err
	}

	name, err := ResolveName(id, candidates)
	if err != nil {
		c.logger.Debug().
			Str("platform", string(id.Platform)).
			Str("username", id.Username).
			Int("candidates", len(candidates)).
			Err(err).
			Msg("account resolution failed")
		return nil, err
	}

	c.logger.Debug().
		Str("platform", string(id.Platform)).
		Str("username", id.Username).
		Str("resolved", name).
		Int("candidates", len(candidates)).
		Msg("account resolved")

	return c.GetProfile(ctx, id.Platform, name)
}

// get performs one GET and returns the body of a 200 response. Anything else
// comes back as a classified *domain.Error.
func (c *Client) get(ctx context.Context, endpoint, u string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		c.observe(endpoint, domain.KindUnknown)
		return nil, domain.WrapUnknown(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn().Err(err).Str("url", u).Msg("upstream request failed")
		c.observe(endpoint, domain.KindUnknown)
		return nil, domain.WrapUnknown(err)
	}

	c.updateRateLimit(resp)

	if kind, ok := ClassifyStatus(resp.StatusCode()); !ok {
		c.logger.Debug().Int("status", resp.StatusCode()).Str("url", u).Msg("upstream returned an error status")
		c.observe(endpoint, kind)
		return nil, domain.NewStatusError(kind, resp.StatusCode())
	}

	c.observe(endpoint, 0)

	// resp is released on return
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func (c *Client) observe(endpoint string, kind domain.ErrorKind) {
	outcome := "ok"
	if kind != 0 {
		outcome = kind.String()
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// ClassifyStatus maps an upstream status code to an error kind. ok is true
// only for 200.
func ClassifyStatus(status int) (kind domain.ErrorKind, ok bool) {
	switch status {
	case fasthttp.StatusOK:
		return 0, true
	case fasthttp.StatusBadRequest:
		return domain.KindBadRequest, false
	case fasthttp.StatusNotFound:
		return domain.KindNotFound, false
	case fasthttp.StatusUnprocessableEntity:
		return domain.KindValidation, false
	case fasthttp.StatusInternalServerError:
		return domain.KindInternalServer, false
	case fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return domain.KindServiceUnavailable, false
	default:
		return domain.KindUnknown, false
	}
}
