package scrape

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const page = `<!DOCTYPE html>
<html>
<head><title>News</title></head>
<body>
<div class="main-content">
	<div class="news-header">
		<blz-news>
			<blz-card href="/news/24083541/patch-notes/" date="2026-09-30T18:00:00.000Z">
				<blz-image slot="image" src="//cdn.test/patch.jpg"></blz-image>
				<h4 slot="heading"> Patch Notes <b>September</b> </h4>
			</blz-card>
			<div class="row">
				<blz-card href="/news/24083000/season/" date="2026-09-20T18:00:00.000Z">
					<h4 slot="heading">New Season</h4>
				</blz-card>
			</div>
		</blz-news>
	</div>
</div>
</body>
</html>`

func TestParse(t *testing.T) {
	articles, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, articles, 2)

	require.Equal(t, "Patch Notes September", articles[0].Title)
	require.Equal(t, "https://overwatch.blizzard.com/en-us/news/24083541/patch-notes/", articles[0].Link)
	require.Equal(t, "//cdn.test/patch.jpg", articles[0].Thumbnail)
	require.Equal(t, "2026-09-30", articles[0].Date)

	require.Equal(t, "New Season", articles[1].Title)
	require.Empty(t, articles[1].Thumbnail)
}

func TestParse_UnexpectedLayout(t *testing.T) {
	// news-header must be a direct child of main-content.
	_, err := Parse(strings.NewReader(`<html><body><div class="main-content"><section><div class="news-header"><blz-news></blz-news></div></section></div></body></html>`))
	require.ErrorIs(t, err, ErrNoNews)

	_, err = Parse(strings.NewReader(`<html><body><p>maintenance</p></body></html>`))
	require.ErrorIs(t, err, ErrNoNews)
}

func TestClient_Latest(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			ctx.SetContentType("text/html")
			ctx.SetBodyString(page)
		})
	}()
	t.Cleanup(func() { _ = ln.Close() })

	hc := &fasthttp.Client{Dial: func(addr string) (net.Conn, error) { return ln.Dial() }}
	client := newClient("http://news.test/en-us/news/", hc, zerolog.Nop())

	article, err := client.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Patch Notes September", article.Title)
}

func TestClient_StatusError(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		})
	}()
	t.Cleanup(func() { _ = ln.Close() })

	hc := &fasthttp.Client{Dial: func(addr string) (net.Conn, error) { return ln.Dial() }}
	client := newClient("http://news.test/en-us/news/", hc, zerolog.Nop())

	_, err := client.Latest(context.Background())
	require.Error(t, err)
}
