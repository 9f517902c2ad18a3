// Package server serves the dashboard page with the feed mounted, the
// load-more endpoint and the command menu.
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spiffcs/ghfeed/internal/commands"
	"github.com/spiffcs/ghfeed/internal/feed"
	"github.com/spiffcs/ghfeed/internal/format"
	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/mount"
	"golang.org/x/sync/singleflight"
)

//go:embed static/feed.js
var feedScript string

var menuTmpl = template.Must(template.New("menu").Parse(`<nav class="ghfeed-commands" aria-label="Feed commands">{{range .}}<form method="post" action="/commands/{{.Handle}}"><button type="submit">{{.Label}}</button></form>{{end}}</nav>`))

// Server is the dashboard HTTP server.
type Server struct {
	machine  *feed.Machine
	registry *commands.Registry
	host     []byte
	router   chi.Router

	// pages collapses concurrent requests for the same page into one load.
	pages singleflight.Group

	mu    sync.Mutex
	mount *mount.Mount
	// doc is the mounted host page, kept in step with the machine so a
	// reload serves every page loaded so far. Nil until first requested
	// and after a command changed the preferences.
	doc *goquery.Document
}

// New creates a server for machine. host is the raw host page; the mount
// decides where the feed goes.
func New(machine *feed.Machine, registry *commands.Registry, m *mount.Mount, host []byte) *Server {
	if len(host) == 0 {
		host = mount.DefaultHost()
	}
	s := &Server{
		machine:  machine,
		registry: registry,
		host:     host,
		mount:    m,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/more", s.handleMore)
	r.Get("/healthz", s.handleHealth)
	r.Route("/commands", func(r chi.Router) {
		r.Get("/", s.handleCommands)
		r.Post("/{handle}", s.handleInvoke)
	})

	s.router = r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// --- Page Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	page, err := s.Page()
	if err != nil {
		log.Error("failed to render dashboard", "error", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// Page renders the host page with the feed, the command menu and the
// load-more script.
func (s *Server) Page() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document()
	if err != nil {
		return "", err
	}
	if _, err := s.mount.Append(doc, s.machine.Cards(), s.affordance()); err != nil {
		return "", err
	}
	return mount.HTML(doc)
}

// document returns the mounted host page, building it on first use.
// Callers hold s.mu.
func (s *Server) document() (*goquery.Document, error) {
	if s.doc != nil {
		return s.doc, nil
	}
	doc, err := mount.ParseHost(s.host)
	if err != nil {
		return nil, err
	}

	var menu strings.Builder
	if err := menuTmpl.Execute(&menu, s.registry.Commands()); err != nil {
		return nil, fmt.Errorf("failed to render commands: %w", err)
	}
	doc.Find("body").First().PrependHtml(menu.String())
	injectScript(doc)

	s.mount.SetPlacement(s.machine.Preferences().Placement)
	if err := s.mount.Render(doc, s.machine.Cards(), s.affordance()); err != nil {
		return nil, err
	}
	s.doc = doc
	return doc, nil
}

// reset drops the mounted page so the next request renders it again.
func (s *Server) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
}

func injectScript(doc *goquery.Document) {
	target := doc.Find("head").First()
	if target.Length() == 0 {
		target = doc.Find("body").First()
	}
	target.AppendHtml("<script defer>" + feedScript + "</script>")
}

func (s *Server) affordance() mount.Affordance {
	st := s.machine.Snapshot()
	return mount.Affordance{
		HasMore:  st.HasMore,
		NextPage: st.Page + 1,
		Busy:     st.Loading,
		Window:   format.PageWindow(st.Page, len(st.Events)),
	}
}

// --- API Handlers ---

func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}

	v, err, shared := s.pages.Do(strconv.Itoa(n), func() (any, error) {
		// Detached so one client hanging up does not fail the others
		return s.loadFragment(context.WithoutCancel(r.Context()), n)
	})
	if shared {
		log.Debug("shared page load", "page", n)
	}
	switch {
	case errors.Is(err, feed.ErrLoading), errors.Is(err, feed.ErrOutOfOrder):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, feed.ErrNoMore):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, errRender):
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	case err != nil:
		// The machine already reported it and stopped offering pages.
		http.Error(w, "Failed to load events", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(v.(template.HTML)))
}

var errRender = errors.New("render error")

// loadFragment loads page n and renders its cards with the affordance
// that follows them. The mounted page shows the load as busy and then
// receives the new cards.
func (s *Server) loadFragment(ctx context.Context, n int) (template.HTML, error) {
	s.mu.Lock()
	if doc, err := s.document(); err == nil {
		s.mount.SetBusy(doc, true)
	}
	s.mu.Unlock()

	batch, loadErr := s.machine.LoadPage(ctx, n)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sync(); err != nil {
		log.Warn("failed to update mounted page", "page", n, "error", err)
	}
	if loadErr != nil {
		return "", loadErr
	}

	fragment, err := s.mount.CardsFragment(batch.Cards, s.affordance())
	if err != nil {
		log.Error("failed to render page fragment", "page", n, "error", err)
		return "", fmt.Errorf("%w: %w", errRender, err)
	}
	return fragment, nil
}

// sync appends the cards the mounted page lacks and refreshes its
// affordance from the machine. Callers hold s.mu.
func (s *Server) sync() error {
	doc, err := s.document()
	if err != nil {
		return err
	}
	added, err := s.mount.Append(doc, s.machine.Cards(), s.affordance())
	if err != nil {
		return err
	}
	if added > 0 {
		log.Debug("mounted cards", "added", added, "total", s.mount.Rendered())
	}
	return nil
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := menuTmpl.Execute(w, s.registry.Commands()); err != nil {
		log.Error("failed to render commands", "error", err)
	}
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	h, err := strconv.Atoi(chi.URLParam(r, "handle"))
	if err != nil {
		http.Error(w, "Invalid command", http.StatusBadRequest)
		return
	}
	if err := s.registry.Invoke(r.Context(), commands.Handle(h)); err != nil {
		if errors.Is(err, commands.ErrUnknownHandle) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error("command failed", "handle", h, "error", err)
		http.Error(w, "Command failed", http.StatusInternalServerError)
		return
	}
	s.reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}
