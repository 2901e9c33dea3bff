// Package server exposes a portfolio session over HTTP with a JSON API and
// a server-sent event stream.
package server

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/theirongolddev/allot/internal/alloc"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	DataDir      string
	Store        string
	Log          zerolog.Logger
}

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	DataDir          string    `json:"data_dir,omitempty"`
	Store            string    `json:"store,omitempty"`
	Items            int       `json:"items"`
	LastSeq          int64     `json:"last_seq"`
	LastPersistError string    `json:"last_persist_error,omitempty"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
}

// Server serves one session. Every successful mutation, whether it comes
// from HTTP or another frontend sharing the session, is recorded in a ring
// buffer and fanned out to stream subscribers.
type Server struct {
	cfg    Config
	sess   *alloc.Session
	log    zerolog.Logger
	router *chi.Mux

	unsubscribe func()

	mu        sync.RWMutex
	startedAt time.Time
	lastSeq   int64
	events    []alloc.Event

	nextSubID int
	subs      map[int]chan alloc.Event
}

// New returns a server bound to sess.
func New(sess *alloc.Session, cfg Config) *Server {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 256
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7433"
	}

	s := &Server{
		cfg:       cfg,
		sess:      sess,
		log:       cfg.Log.With().Str("component", "server").Logger(),
		router:    chi.NewRouter(),
		startedAt: time.Now(),
		subs:      make(map[int]chan alloc.Event),
	}
	s.unsubscribe = sess.Subscribe(s.publishEvent)

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close detaches the server from its session.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Run serves HTTP until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	// No write timeout: /v1/stream holds its response open.
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Msg("serving portfolio API")

	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/summary", s.handleSummary)
		r.Get("/chart", s.handleChart)
		r.Put("/funds", s.handleSetFunds)
		r.Post("/default", s.handleDefault)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleAddItem)
			r.Get("/{id}", s.handleGetItem)
			r.Patch("/{id}", s.handleUpdateItem)
			r.Delete("/{id}", s.handleRemoveItem)
		})

		r.Get("/export", s.handleExport)
		r.Put("/import", s.handleImport)

		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// publishEvent records ev and forwards it to stream subscribers. Slow
// subscribers miss events rather than block the session.
//
// Sessions notify outside their lock, so concurrent edits may arrive out of
// order; the ring stays sorted by Seq so eventsSince never skips one.
func (s *Server) publishEvent(ev alloc.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeq = max(s.lastSeq, ev.Seq)
	i, _ := slices.BinarySearchFunc(s.events, ev.Seq, func(e alloc.Event, seq int64) int {
		return cmp.Compare(e.Seq, seq)
	})
	s.events = slices.Insert(s.events, i, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) eventsSince(seq int64) []alloc.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]alloc.Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.Seq > seq {
			out = append(out, ev)
		}
	}
	return out
}

func (s *Server) status() Status {
	st := Status{
		DataDir: s.cfg.DataDir,
		Store:   s.cfg.Store,
		Items:   len(s.sess.Items()),
	}
	if err := s.sess.LastPersistError(); err != nil {
		st.LastPersistError = err.Error()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st.StartedAt = s.startedAt
	st.LastSeq = s.lastSeq
	st.EventCount = len(s.events)
	st.SubscriberCount = len(s.subs)
	return st
}

func (s *Server) addSubscriber(ch chan alloc.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Server) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
