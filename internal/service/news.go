package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"overbot/internal/domain"
	"overbot/internal/metrics"
	"overbot/internal/repository"

	"github.com/rs/zerolog"
)

var articleIDPattern = regexp.MustCompile(`\d+`)

type NewsSource interface {
	Latest(ctx context.Context) (*domain.Article, error)
}

// NewsPublisher posts an article to the news channel.
type NewsPublisher interface {
	PublishNews(ctx context.Context, article domain.Article) error
}

type NewsService struct {
	source    NewsSource
	repo      *repository.NewsRepository
	publisher NewsPublisher
	logger    zerolog.Logger
}

func NewNewsService(source NewsSource, repo *repository.NewsRepository, publisher NewsPublisher, logger zerolog.Logger) *NewsService {
	return &NewsService{
		source:    source,
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "news").Logger(),
	}
}

// ArticleID is the first number in an article link.
func ArticleID(link string) (int64, error) {
	match := articleIDPattern.FindString(link)
	if match == "" {
		return 0, fmt.Errorf("no article id in %q", link)
	}
	return strconv.ParseInt(match, 10, 64)
}

// Poll posts the newest article unless it was already posted. It reports
// whether an article was published.
func (s *NewsService) Poll(ctx context.Context) (bool, error) {
	article, err := s.source.Latest(ctx)
	if err != nil {
		return false, err
	}

	id, err := ArticleID(article.Link)
	if err != nil {
		return false, err
	}
	article.ID = id

	last, err := s.repo.LastID(ctx)
	if err != nil {
		return false, err
	}
	if id == last {
		s.logger.Debug().Int64("news_id", id).Msg("latest article already posted")
		return false, nil
	}

	if err := s.publisher.PublishNews(ctx, *article); err != nil {
		return false, fmt.Errorf("failed to publish article %d: %w", id, err)
	}
	if err := s.repo.SetLastID(ctx, id); err != nil {
		return true, err
	}

	metrics.NewsPosted.Inc()
	s.logger.Info().Int64("news_id", id).Str("title", article.Title).Msg("article posted")
	return true, nil
}
