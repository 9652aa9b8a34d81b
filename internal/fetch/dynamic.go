package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/jakopako/pomgen/internal/log"
)

// The DynamicFetcher renders js
type DynamicFetcher struct {
	*FetcherConfig
	allocContext context.Context
	cancelAlloc  context.CancelFunc
}

func NewDynamicFetcher(fc *FetcherConfig) *DynamicFetcher {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080), // init with a desktop view (sometimes pages look different on mobile, eg buttons are missing)
	)
	if fc.UserAgent != "" {
		opts = append(opts,
			chromedp.UserAgent(fc.UserAgent))
	}
	allocContext, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	d := &DynamicFetcher{
		FetcherConfig: fc,
		allocContext:  allocContext,
		cancelAlloc:   cancelAlloc,
	}
	if d.PageLoadWaitMS == 0 {
		d.PageLoadWaitMS = 2000 // default
	}
	return d
}

func (d *DynamicFetcher) Cancel() {
	d.cancelAlloc()
}

func (d *DynamicFetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	logger := log.LoggerFromContext(ctx).With(slog.String("fetcher", "dynamic"), slog.String("url", urlStr))
	logger.Debug("fetching page", slog.String("user-agent", d.UserAgent))
	ctx, cancel := chromedp.NewContext(d.allocContext)
	defer cancel()

	actions := []chromedp.Action{}

	// log chrome version in debug mode
	if log.Debug {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			protocolVersion, product, revision, userAgent, jsVersion, err := browser.GetVersion().Do(ctx)
			if err != nil {
				logger.Warn("failed to get chrome version", slog.String("err", err.Error()))
				return nil
			}
			logger.Debug(fmt.Sprintf("chrome version: protocolVersion=%s, product=%s, revision=%s, userAgent=%s, jsVersion=%s",
				protocolVersion, product, revision, userAgent, jsVersion))
			return nil
		}))
	}

	var body string
	sleepTime := time.Duration(d.PageLoadWaitMS) * time.Millisecond
	actions = append(actions,
		chromedp.Navigate(urlStr),
		chromedp.Sleep(sleepTime),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			body, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", err
	}

	if log.Debug {
		writeHTMLToFile(ctx, urlStr, body, d.DebugDir)
	}
	return body, nil
}
