package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"overbot/internal/config"
	"overbot/internal/constants"
	"overbot/internal/repository"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// serverCustomField is the checkout field buyers fill with the guild id.
const serverCustomField = "Server ID (to be set as premium)"

// snowflake is a Discord id sent either as a JSON string or number.
type snowflake string

func (s *snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = snowflake(v)
		return nil
	}
	if _, err := strconv.ParseUint(string(data), 10, 64); err != nil {
		return fmt.Errorf("snowflake %q: %w", data, err)
	}
	*s = snowflake(data)
	return nil
}

type Donation struct {
	TxnID         string            `json:"txn_id"`
	ProductID     string            `json:"product_id"`
	BuyerID       snowflake         `json:"buyer_id"`
	SellerCustoms map[string]string `json:"seller_customs"`
}

type donationsResponse struct {
	Donations []Donation `json:"donations"`
}

type SubscriptionService struct {
	cfg     config.DonationsConfig
	servers *repository.ServerRepository
	members *repository.MemberRepository
	premium *PremiumCache
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewSubscriptionService(
	cfg *config.Config,
	servers *repository.ServerRepository,
	members *repository.MemberRepository,
	premium *PremiumCache,
	logger zerolog.Logger,
) *SubscriptionService {
	return newSubscriptionService(cfg.Donations, servers, members, premium, &fasthttp.Client{
		Name:         "OverBot",
		ReadTimeout:  constants.ExternalAPITimeout,
		WriteTimeout: constants.ExternalAPITimeout,
	}, logger)
}

func newSubscriptionService(
	cfg config.DonationsConfig,
	servers *repository.ServerRepository,
	members *repository.MemberRepository,
	premium *PremiumCache,
	hc *fasthttp.Client,
	logger zerolog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		cfg:     cfg,
		servers: servers,
		members: members,
		premium: premium,
		client:  hc,
		logger:  logger.With().Str("component", "subscriptions").Logger(),
	}
}

// Poll grants premium for every new donation and marks it processed. It
// returns the number of donations handled.
func (s *SubscriptionService) Poll(ctx context.Context) (int, error) {
	if s.cfg.NewURL == "" {
		return 0, nil
	}

	var resp donationsResponse
	if err := doJSON(ctx, s.client, fasthttp.MethodGet, s.cfg.NewURL, s.cfg.APIKey, nil, &resp); err != nil {
		return 0, err
	}

	handled := 0
	for _, d := range resp.Donations {
		if err := s.grant(ctx, d); err != nil {
			s.logger.Error().Err(err).Str("txn_id", d.TxnID).Msg("failed to grant premium")
			continue
		}

		mark := strings.ReplaceAll(s.cfg.MarkURL, "{txn_id}", d.TxnID)
		if err := doJSON(ctx, s.client, fasthttp.MethodPost, mark, s.cfg.APIKey, map[string]bool{"markProcessed": true}, nil); err != nil {
			s.logger.Error().Err(err).Str("txn_id", d.TxnID).Msg("failed to mark donation processed")
			continue
		}

		s.logger.Info().Str("txn_id", d.TxnID).Msg("donation processed")
		handled++
	}
	return handled, nil
}

func (s *SubscriptionService) grant(ctx context.Context, d Donation) error {
	if s.cfg.ServerProduct != "" && d.ProductID == s.cfg.ServerProduct {
		guildID := strings.TrimSpace(d.SellerCustoms[serverCustomField])
		if guildID == "" {
			return fmt.Errorf("donation %s has no server id", d.TxnID)
		}
		if err := s.servers.SetPremium(ctx, guildID); err != nil {
			return err
		}
		s.premium.Add(guildID)
		return nil
	}

	if d.BuyerID == "" {
		return fmt.Errorf("donation %s has no buyer id", d.TxnID)
	}
	if err := s.members.SetPremium(ctx, string(d.BuyerID)); err != nil {
		return err
	}
	s.premium.Add(string(d.BuyerID))
	return nil
}
