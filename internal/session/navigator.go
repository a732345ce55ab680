// internal/session/navigator.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/internal/retry"
	"github.com/law-makers/snip/pkg/models"
)

// networkIdleQuiet is the window with zero in-flight requests that counts as
// "network idle" for the NETWORKIDLE wait strategy.
const networkIdleQuiet = 500 * time.Millisecond

// NavigationError is the terminal failure of a navigation after the retry
// budget is exhausted.
type NavigationError struct {
	URL      string
	Strategy models.WaitStrategy
	Attempts int
	Elapsed  time.Duration
	Hint     string
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed (strategy=%s, attempts=%d, elapsed=%s): %v; hint: %s",
		e.URL, e.Strategy, e.Attempts, e.Elapsed.Round(time.Millisecond), e.Err, e.Hint)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Navigator retries page loads with exponential backoff under different wait
// strategies. Timeout-class failures retry; DNS errors, malformed URLs and
// refused connections surface immediately.
type Navigator struct {
	retryCfg       retry.Config
	defaultTimeout time.Duration
}

// NewNavigator creates a Navigator with the given default per-attempt timeout.
func NewNavigator(defaultTimeout time.Duration) *Navigator {
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	return &Navigator{
		retryCfg:       retry.DefaultConfig(),
		defaultTimeout: defaultTimeout,
	}
}

// NavigateWithRetry drives pageCtx to url, waiting per strategy. Returns the
// number of attempts made.
func (n *Navigator) NavigateWithRetry(pageCtx context.Context, url string, strategy models.WaitStrategy, timeout time.Duration) (int, error) {
	if strategy == "" {
		strategy = models.WaitLoad
	}
	if timeout <= 0 {
		timeout = n.defaultTimeout
	}

	start := time.Now()

	attempts, err := retry.Do(pageCtx, n.retryCfg, retry.IsTimeout, func() error {
		tctx, cancel := context.WithTimeout(pageCtx, timeout)
		defer cancel()
		return chromedp.Run(tctx, network.Enable(), navigateAction(url, strategy))
	})
	if err != nil {
		navErr := &NavigationError{
			URL:      url,
			Strategy: strategy,
			Attempts: attempts,
			Elapsed:  time.Since(start),
			Hint:     navigationHint(strategy, err),
			Err:      err,
		}
		log.Warn().
			Str("url", url).
			Str("strategy", string(strategy)).
			Int("attempts", attempts).
			Err(err).
			Msg("Navigation failed")
		return attempts, navErr
	}

	log.Debug().
		Str("url", url).
		Str("strategy", string(strategy)).
		Int("attempts", attempts).
		Dur("elapsed", time.Since(start)).
		Msg("Navigation completed")

	return attempts, nil
}

// WaitForCondition blocks until selector has at least one ready match. Used
// after a WaitNone navigation, where the caller owns the wait.
func (n *Navigator) WaitForCondition(s *Session, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = n.defaultTimeout
	}
	s.Touch()
	tctx, cancel := context.WithTimeout(s.Context(), timeout)
	defer cancel()
	return chromedp.Run(tctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func navigationHint(strategy models.WaitStrategy, err error) string {
	if retry.IsTimeout(err) {
		if strategy != models.WaitNetworkIdle {
			return "try NETWORKIDLE for dynamic pages"
		}
		return "increase the navigation timeout"
	}
	return "check the URL and network connectivity"
}

// navigateAction commits a navigation and waits according to the strategy.
// The event listeners are registered before the navigation is issued so no
// lifecycle event can be missed.
func navigateAction(url string, strategy models.WaitStrategy) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if strategy == models.WaitNone {
			return doNavigate(ctx, url)
		}

		lctx, lcancel := context.WithCancel(ctx)
		defer lcancel()

		fired := make(chan struct{}, 1)

		var mu sync.Mutex
		inflight := make(map[network.RequestID]struct{})
		loaded := false
		idleSince := time.Now()

		chromedp.ListenTarget(lctx, func(ev interface{}) {
			switch e := ev.(type) {
			case *page.EventDomContentEventFired:
				if strategy == models.WaitDOMContentLoaded {
					select {
					case fired <- struct{}{}:
					default:
					}
				}
			case *page.EventLoadEventFired:
				switch strategy {
				case models.WaitLoad:
					select {
					case fired <- struct{}{}:
					default:
					}
				case models.WaitNetworkIdle:
					mu.Lock()
					loaded = true
					if len(inflight) == 0 {
						idleSince = time.Now()
					}
					mu.Unlock()
				}
			case *network.EventRequestWillBeSent:
				mu.Lock()
				inflight[e.RequestID] = struct{}{}
				mu.Unlock()
			case *network.EventLoadingFinished:
				mu.Lock()
				delete(inflight, e.RequestID)
				if len(inflight) == 0 {
					idleSince = time.Now()
				}
				mu.Unlock()
			case *network.EventLoadingFailed:
				mu.Lock()
				delete(inflight, e.RequestID)
				if len(inflight) == 0 {
					idleSince = time.Now()
				}
				mu.Unlock()
			}
		})

		if err := doNavigate(ctx, url); err != nil {
			return err
		}

		if strategy == models.WaitNetworkIdle {
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					mu.Lock()
					idle := loaded && len(inflight) == 0 && time.Since(idleSince) >= networkIdleQuiet
					mu.Unlock()
					if idle {
						return nil
					}
				}
			}
		}

		select {
		case <-fired:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// doNavigate issues the raw navigation and surfaces engine-level errors
// (DNS, refused connection) as immediate failures.
func doNavigate(ctx context.Context, url string) error {
	_, _, errText, _, err := page.Navigate(url).Do(ctx)
	if err != nil {
		return err
	}
	if errText != "" {
		return fmt.Errorf("navigation error: %s", errText)
	}
	return nil
}
