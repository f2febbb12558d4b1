package fetch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/regharvest/fedresurs-cli/internal/model"
)

// loadMoreSelector matches both button variants the registry uses for
// paginated listings and for long notice pages.
const loadMoreSelector = "div.more_btn_orange, div.more_btn_wrapper div.more_btn"

// BrowserConfig controls the chromedp-backed Fetcher.
type BrowserConfig struct {
	// Headless runs Chrome without a window. Default true.
	Headless bool

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string

	// NavTimeout bounds one full page render, pagination included.
	// Default 45s.
	NavTimeout time.Duration

	// LoadMoreWait is the settle time after each "load more" click.
	// Default 2s.
	LoadMoreWait time.Duration

	// MaxLoadMore caps pagination clicks per page. Default 30.
	MaxLoadMore int

	// RecycleEvery restarts the browser context after that many fetches to
	// bound memory growth. 0 disables recycling.
	RecycleEvery int
}

func (c BrowserConfig) withDefaults() BrowserConfig {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 45 * time.Second
	}
	if c.LoadMoreWait <= 0 {
		c.LoadMoreWait = 2 * time.Second
	}
	if c.MaxLoadMore <= 0 {
		c.MaxLoadMore = 30
	}
	return c
}

// Browser is a Fetcher backed by one headless Chrome process. Fetches run
// sequentially, each in a fresh tab; the browser context is recycled every
// RecycleEvery fetches. Not safe for concurrent use.
type Browser struct {
	cfg BrowserConfig

	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc

	fetches int
}

// NewBrowser starts the exec allocator. The browser process itself launches
// lazily on the first fetch.
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1920,1080"),
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close shuts down the browser and the allocator.
func (b *Browser) Close() error {
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
	}
	b.allocCancel()
	return nil
}

// Fetch renders url, exhausts "load more" pagination, and returns the DOM.
// Failures come back as *Error with the appropriate kind.
func (b *Browser) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.maybeRecycle()
	if b.browserCtx == nil {
		b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)
	}
	b.fetches++

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, b.cfg.NavTimeout)
	defer timeoutCancel()

	// Propagate operator interrupts into the tab.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	if err := chromedp.Run(tabCtx,
		b.sessionSetup(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return nil, b.classify(err)
	}

	b.expandPagination(tabCtx, url)

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, b.classify(err)
	}

	return &Page{URL: url, HTML: html}, nil
}

// expandPagination clicks "load more" until the button disappears or the
// click cap is reached. Click failures end pagination rather than the fetch;
// whatever content is loaded by then still gets extracted.
func (b *Browser) expandPagination(ctx context.Context, url string) {
	for clicks := 0; clicks < b.cfg.MaxLoadMore; clicks++ {
		var nodes []*cdp.Node
		err := chromedp.Run(ctx,
			chromedp.Nodes(loadMoreSelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
		)
		if err != nil || len(nodes) == 0 {
			return
		}

		err = chromedp.Run(ctx,
			chromedp.ScrollIntoView(loadMoreSelector, chromedp.ByQuery),
			chromedp.Click(loadMoreSelector, chromedp.ByQuery),
			chromedp.Sleep(b.cfg.LoadMoreWait),
		)
		if err != nil {
			zap.L().Debug("load more click failed",
				zap.String("url", url),
				zap.Int("clicks", clicks),
				zap.Error(err),
			)
			return
		}
	}
}

func (b *Browser) sessionSetup() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return eris.Wrap(err, "fetch: enable network domain")
		}
		if b.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(b.cfg.UserAgent).Do(ctx); err != nil {
				return eris.Wrap(err, "fetch: set user agent")
			}
		}
		return nil
	})
}

// maybeRecycle tears down the browser context after RecycleEvery fetches so
// long runs do not accumulate renderer memory.
func (b *Browser) maybeRecycle() {
	if b.cfg.RecycleEvery <= 0 || b.fetches == 0 || b.fetches%b.cfg.RecycleEvery != 0 {
		return
	}
	if b.browserCancel != nil {
		zap.L().Info("recycling browser session", zap.Int("fetches", b.fetches))
		b.browserCancel()
		b.browserCtx = nil
		b.browserCancel = nil
	}
}

func (b *Browser) classify(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: model.FailTimeout, Err: err}
	case isNavigationErr(err):
		return &Error{Kind: model.FailNavigation, Err: err}
	default:
		return &Error{Kind: model.FailUnexpected, Err: err}
	}
}

func isNavigationErr(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"net::", "ERR_", "page load error", "navigate", "websocket"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
