// Package server exposes the ledger over a local HTTP/JSON API with an
// in-memory event feed and a server-sent-events stream of ledger changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
)

// Store is the subset of *ledger.Ledger the API serves.
type Store interface {
	Path() string
	Count() (int, error)
	GetDateRange() (model.DateRange, bool, error)
	GetAllExpenses() ([]model.Expense, error)
	GetExpensesByDateRange(start, end string) ([]model.Expense, error)
	GetExpense(id int64) (model.Expense, bool, error)
	AddExpense(in ledger.NewExpense) (int64, error)
	UpdateExpense(id int64, u ledger.ExpenseUpdate) (bool, error)
	DeleteExpense(id int64) (bool, error)
	ExtractCategoryNames() ([]string, error)
	ListCategories() ([]model.Category, error)
	GetExpensesByCategory() ([]model.CategoryTotal, error)
	DeleteCategory(name string) (bool, error)
}

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Convention   report.Convention
	ReportDays   int
	// MonthlyBudget adds a budget block to /v1/report when positive.
	MonthlyBudget float64
	Logger        *slog.Logger
	Now           func() time.Time
}

// Event describes one change to the ledger.
type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ExpenseID int64          `json:"expense_id,omitempty"`
	Expense   *model.Expense `json:"expense,omitempty"`
	Category  string         `json:"category,omitempty"`
}

// Event types.
const (
	EventHello           = "hello"
	EventExpenseAdded    = "expense_added"
	EventExpenseUpdated  = "expense_updated"
	EventExpenseDeleted  = "expense_deleted"
	EventCategoryDeleted = "category_deleted"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time        `json:"started_at"`
	DBPath          string           `json:"db_path"`
	Expenses        int              `json:"expenses"`
	Range           *model.DateRange `json:"range,omitempty"`
	Requests        int64            `json:"requests"`
	LastEventAt     time.Time        `json:"last_event_at,omitempty"`
	EventCount      int              `json:"event_count"`
	SubscriberCount int              `json:"subscriber_count"`
}

// Server serves the ledger HTTP API.
type Server struct {
	cfg   Config
	store Store
	log   *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	requests    int64
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a server over store with the provided config.
func New(cfg Config, store Store) *Server {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Convention.Rule == "" {
		cfg.Convention = report.DefaultConvention()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Server{
		cfg:       cfg,
		store:     store,
		log:       cfg.Logger.With("component", "server"),
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the API routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)

	mux.HandleFunc("GET /v1/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /v1/expenses", s.handleAddExpense)
	mux.HandleFunc("GET /v1/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PATCH /v1/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /v1/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /v1/categories", s.handleListCategories)
	mux.HandleFunc("GET /v1/categories/totals", s.handleCategoryTotals)
	mux.HandleFunc("DELETE /v1/categories/{name}", s.handleDeleteCategory)

	mux.HandleFunc("GET /v1/report", s.handleReport)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	return s.logRequests(mux)
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
// Open event streams are closed when ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		s.log.Info("listening", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) snapshotStatus() Status {
	st := Status{DBPath: s.store.Path()}
	if n, err := s.store.Count(); err == nil {
		st.Expenses = n
	}
	if dr, ok, err := s.store.GetDateRange(); err == nil && ok {
		st.Range = &dr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	st.StartedAt = s.startedAt
	st.Requests = s.requests
	st.EventCount = len(s.events)
	st.SubscriberCount = len(s.subs)
	if len(s.events) > 0 {
		st.LastEventAt = s.events[len(s.events)-1].Timestamp
	}
	return st
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.mu.Lock()
		s.requests++
		s.mu.Unlock()

		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
