package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spiffcs/ghfeed/config"
	"github.com/spiffcs/ghfeed/internal/commands"
	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/feed"
	"github.com/spiffcs/ghfeed/internal/format"
	"github.com/spiffcs/ghfeed/internal/ghclient"
	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/model"
	"github.com/spiffcs/ghfeed/internal/mount"
	"github.com/spiffcs/ghfeed/internal/notify"
	"github.com/spiffcs/ghfeed/internal/prefs"
	"github.com/spiffcs/ghfeed/internal/render"
	"github.com/spiffcs/ghfeed/internal/tui"
	"github.com/spiffcs/ghfeed/internal/wait"
	"golang.org/x/sync/errgroup"
)

// feedRuntime bundles TUI-related state that's threaded through startup.
type feedRuntime struct {
	useTUI       bool
	readyTimeout time.Duration
	events       chan tui.Event
	tuiDone      chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *feedRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, tui.WithReadinessTimeout(rt.readyTimeout))
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *feedRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	rt.events = nil
	if rt.tuiDone != nil {
		<-rt.tuiDone
	}
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *feedRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// session is one fully wired feed: credential, client, preferences, the
// state machine and the command menu.
type session struct {
	client   *ghclient.Client
	username string
	host     []byte
	mount    *mount.Mount
	machine  *feed.Machine
	registry *commands.Registry
}

// setupRuntime loads the config, initializes logging and the notification
// channel, and decides whether startup progress is shown.
func setupRuntime(opts *Options, useTUI bool) (*config.Config, *feedRuntime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	kind := cfg.GetNotify()
	if useTUI && kind == notify.KindStderr {
		// Lines on stderr would tear through the progress display
		kind = notify.KindNone
	}
	n := notify.New(kind, os.Stderr)

	// At the default verbosity the notifier is the only stderr channel.
	var out io.Writer = os.Stderr
	if useTUI || (opts.Verbosity == 0 && kind == notify.KindStderr) {
		out = io.Discard
	}
	log.Initialize(opts.Verbosity, out)
	log.SetNotifier(n.Notify)

	return cfg, &feedRuntime{useTUI: useTUI, readyTimeout: cfg.GetReadinessTimeout()}, nil
}

// startSession resolves the credential and the user, waits for the host
// page, and builds the state machine. A missing or rejected credential
// and a readiness timeout are fatal; nothing is mounted.
func startSession(ctx context.Context, cfg *config.Config, opts *Options, rt *feedRuntime, token commands.TokenFunc) (*session, error) {
	store := config.NewStore()
	p, err := prefs.Load(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)
	secret, err := store.Get(ctx, prefs.KeyToken, "")
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	client, err := ghclient.NewClient(ctx, secret)
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return nil, err
	}

	sidebar, mainRegion := cfg.GetSelectors()
	m := mount.New(mount.WithPlacement(p.Placement), mount.WithSelectors(sidebar, mainRegion))

	username := opts.Username
	if username == "" {
		username = cfg.Username
	}

	var host []byte
	waitOpts := []wait.Option{
		wait.WithTimeout(cfg.GetReadinessTimeout()),
		wait.WithInterval(cfg.GetReadinessInterval()),
	}

	rt.sendEvent(tui.TaskReady, tui.StatusRunning)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if username != "" {
			return nil
		}
		u, err := client.AuthenticatedUser(gctx)
		if err != nil {
			return fmt.Errorf("failed to resolve the GitHub user: %w", err)
		}
		username = u
		return nil
	})
	g.Go(func() error {
		if cfg.HostPage == "" {
			// The built-in page is either ready now or never
			doc, err := mount.ParseHost(mount.DefaultHost())
			if err != nil {
				return err
			}
			if !m.HostReady(doc) {
				return fmt.Errorf("built-in dashboard has no %s region matching the configured selector", m.Placement())
			}
			host = mount.DefaultHost()
			return nil
		}
		err := wait.Until(gctx, func(ctx context.Context) (bool, error) {
			page, err := mount.LoadHost(ctx, cfg.HostPage)
			if err != nil {
				log.Debug("host page not available yet", "error", err)
				return false, nil
			}
			doc, err := mount.ParseHost(page)
			if err != nil {
				return false, nil
			}
			if !m.HostReady(doc) {
				return false, nil
			}
			host = page
			return true, nil
		}, waitOpts...)
		if err != nil {
			return fmt.Errorf("dashboard not ready (%s region missing): %w", m.Placement(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		rt.sendEvent(tui.TaskReady, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(username))
	if cfg.HostPage == "" {
		rt.sendEvent(tui.TaskReady, tui.StatusSkipped, tui.WithMessage("built-in page"))
	} else {
		rt.sendEvent(tui.TaskReady, tui.StatusComplete, tui.WithMessage(cfg.HostPage))
	}

	perPage := cfg.GetPerPage()
	if opts.PerPage > 0 {
		perPage = opts.PerPage
	}

	renderer := render.New(render.WithErrorFunc(func(e *model.Event, err error) {
		id := ""
		if e != nil {
			id = e.ID
		}
		log.Warn("failed to render event", "event", id, "error", err)
	}))
	machine := feed.New(client, renderer, username,
		feed.WithPerPage(perPage),
		feed.WithRules(cfg.ActorRules()),
		feed.WithPreferences(p),
		feed.WithReporter(func(page int, err error) {
			log.Error(fmt.Sprintf("failed to load events page %d: %v", page, err))
		}),
	)

	registry := commands.NewRegistry()
	commands.NewToggles(registry, store, p, func(p prefs.Preferences) {
		machine.SetPreferences(p)
		m.SetPlacement(p.Placement)
	}, token).Install()

	return &session{
		client:   client,
		username: username,
		host:     host,
		mount:    m,
		machine:  machine,
		registry: registry,
	}, nil
}

// loadStats counts what the loaded pages held.
type loadStats struct {
	fetched  int
	filtered int
}

// load loads pages 1 through n, stopping early when the feed ends or a
// page fails. A rejected credential on page 1 is fatal; any other failure
// leaves the pages loaded so far, with no more pages offered.
func (s *session) load(ctx context.Context, rt *feedRuntime, n int) (loadStats, error) {
	var stats loadStats

	rt.sendEvent(tui.TaskFetch, tui.StatusRunning)
	batch, err := s.machine.LoadFirstPage(ctx)
	for err == nil {
		stats.fetched += batch.Fetched
		stats.filtered += batch.Filtered
		if s.machine.Page() >= n || !s.machine.HasMore() {
			break
		}
		next := s.machine.Page() + 1
		rt.sendEvent(tui.TaskFetch, tui.StatusRunning,
			tui.WithProgress(float64(next-1)/float64(n)),
			tui.WithMessage(fmt.Sprintf("page %d of %d", next, n)))
		if !rt.useTUI {
			log.Progress("loading page %d of %d", next, n)
		}
		batch, err = s.machine.LoadMore(ctx)
	}
	log.ProgressDone()
	if err != nil {
		rt.sendEvent(tui.TaskFetch, tui.StatusError, tui.WithError(err))
		if s.machine.Page() == 0 && errors.Is(err, ghclient.ErrUnauthorized) {
			return stats, err
		}
		s.warnRateLimit(rt)
		return stats, nil
	}

	kept := stats.fetched - stats.filtered
	rt.sendEvent(tui.TaskFetch, tui.StatusComplete,
		tui.WithCount(kept),
		tui.WithMessage(fmt.Sprintf("(%s)", format.PageWindow(s.machine.Page(), kept))))
	s.warnRateLimit(rt)
	return stats, nil
}

func (s *session) warnRateLimit(rt *feedRuntime) {
	remaining, limit, resetAt, limited := s.client.RateLimitState().Status()
	switch {
	case limited:
		if rt.events != nil {
			tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: resetAt})
		}
		log.Warn("GitHub API rate limit exceeded", "resets", resetAt.Format("15:04:05"))
	case limit > 0 && remaining < constants.RateLimitLowWatermark:
		log.Warn("GitHub API rate limit is low", "remaining", remaining, "limit", limit)
	}
}

// tokenHint is the credential action for surfaces that cannot prompt.
func tokenHint(context.Context) error {
	log.Warn("run 'ghfeed token set' to configure the GitHub token")
	return nil
}
