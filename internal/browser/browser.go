// Package browser drives a chrome instance in which the user performs
// the flow to record. Interactions are reported by a script injected
// into every page and forwarded to a Target.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// BrowserConfig holds the browser section of the configuration.
type BrowserConfig struct {
	Headless     bool   `yaml:"headless" env:"POMGEN_HEADLESS"`
	UserAgent    string `yaml:"user_agent"`
	WindowWidth  int    `yaml:"window_width" env-default:"1280"`
	WindowHeight int    `yaml:"window_height" env-default:"900"`
	ExecPath     string `yaml:"exec_path" env:"POMGEN_CHROME_PATH"`
}

// Session is a recording browser session.
type Session struct {
	cfg    *BrowserConfig
	target Target
	events chan string
	logger *slog.Logger
}

func NewSession(bc *BrowserConfig, t Target) *Session {
	return &Session{
		cfg:    bc,
		target: t,
		events: make(chan string, 256),
		logger: slog.With(slog.String("component", "browser")),
	}
}

func (s *Session) allocatorOptions() []chromedp.ExecAllocatorOption {
	w, h := s.cfg.WindowWidth, s.cfg.WindowHeight
	if w <= 0 || h <= 0 {
		w, h = 1280, 900
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-first-run", true),
		chromedp.WindowSize(w, h),
	)
	if s.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ExecPath))
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	return opts
}

// Run opens startURL in a new browser and forwards the user's
// interactions until ctx is cancelled or the browser is closed.
func (s *Session) Run(ctx context.Context, startURL string) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()
	bctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// the listener must not block, events are handled in order below
	chromedp.ListenTarget(bctx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == bindingName {
			select {
			case s.events <- e.Payload:
			default:
				s.logger.Warn("event queue full, dropping event")
			}
		}
	})

	err := chromedp.Run(bctx,
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(captureScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(startURL),
	)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	s.logger.Info(fmt.Sprintf("recording in browser, opened %s", startURL))

	for {
		select {
		case <-bctx.Done():
			s.logger.Info("browser closed")
			return nil
		case payload := <-s.events:
			s.handle(ctx, payload)
		}
	}
}

func (s *Session) handle(ctx context.Context, payload string) {
	ev, err := ParseEvent(payload)
	if err != nil {
		s.logger.Warn(err.Error())
		return
	}
	s.logger.Debug(fmt.Sprintf("%s event on %s", ev.Type, ev.URL), slog.String("path", ev.Path))
	if err := HandleEvent(ctx, s.target, ev); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to record %s event: %v", ev.Type, err))
	}
}
