// Package scrape reads the Overwatch news page.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"overbot/internal/config"
	"overbot/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const linkBase = "https://overwatch.blizzard.com/en-us"

// ErrNoNews is returned when the page does not have the expected layout.
var ErrNoNews = errors.New("scrape: news container not found")

type Client struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return newClient(cfg.Overwatch.NewsURL, &fasthttp.Client{
		Name:         "OverBot",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}, logger)
}

func newClient(url string, hc *fasthttp.Client, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		client: hc,
		logger: logger.With().Str("component", "scrape").Logger(),
	}
}

// Latest returns the newest article of the news page.
func (c *Client) Latest(ctx context.Context) (*domain.Article, error) {
	articles, err := c.Articles(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, ErrNoNews
	}
	return &articles[0], nil
}

// Articles returns every article of the news page, newest first.
func (c *Client) Articles(ctx context.Context) ([]domain.Article, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news page: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("news page returned status %d", resp.StatusCode())
	}

	articles, err := Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(articles)).Msg("news page parsed")
	return articles, nil
}

// Parse extracts the articles of body > div.main-content > div.news-header
// > blz-news. Article ids are left to the caller.
func Parse(r io.Reader) ([]domain.Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news page: %w", err)
	}

	body := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if body == nil {
		return nil, ErrNoNews
	}

	root := child(body, func(n *html.Node) bool { return n.DataAtom == atom.Div && hasClass(n, "main-content") })
	header := child(root, func(n *html.Node) bool { return n.DataAtom == atom.Div && hasClass(n, "news-header") })
	container := child(header, func(n *html.Node) bool { return n.Data == "blz-news" })
	if container == nil {
		return nil, ErrNoNews
	}

	var articles []domain.Article
	for _, card := range findAll(container, func(n *html.Node) bool { return n.Data == "blz-card" }) {
		heading := findFirst(card, func(n *html.Node) bool { return n.DataAtom == atom.H4 && attr(n, "slot") == "heading" })
		image := findFirst(card, func(n *html.Node) bool { return n.Data == "blz-image" && attr(n, "slot") == "image" })

		a := domain.Article{
			Link: linkBase + attr(card, "href"),
			Date: day(attr(card, "date")),
		}
		if heading != nil {
			a.Title = strings.TrimSpace(text(heading))
		}
		if image != nil {
			a.Thumbnail = attr(image, "src")
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// day trims an ISO timestamp to its date part.
func day(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func child(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
	}
	return nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
