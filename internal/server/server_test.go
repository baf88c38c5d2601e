package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/logging"
	"github.com/theirongolddev/fintrack/internal/model"
)

var fixedNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server, *ledger.Ledger) {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "api.db"),
		ledger.WithDefaultCategories([]string{"Food", "Other"}),
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithLogger(logging.Discard()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	cfg.Logger = logging.Discard()
	cfg.Now = func() time.Time { return fixedNow }
	s := New(cfg, l)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, l
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, Logger: logging.Discard()}, nil)

	s.publishEvent(Event{Type: EventExpenseAdded})
	s.publishEvent(Event{Type: EventExpenseAdded})
	s.publishEvent(Event{Type: EventExpenseAdded})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestConcurrentEmitKeepsIDOrder(t *testing.T) {
	s := New(Config{EventsBuffer: 500, Logger: logging.Discard()}, nil)
	ch := make(chan Event, 500)
	s.addSubscriber(ch)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.emit(EventExpenseDeleted, nil)
			}
		}()
	}
	wg.Wait()
	close(ch)

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	require.Len(t, events, 200)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.ID)
	}

	var last int64
	for ev := range ch {
		assert.Greater(t, ev.ID, last)
		last = ev.ID
	}
	assert.Equal(t, int64(200), last)
}

func TestHealthAndStatus(t *testing.T) {
	_, ts, l := newTestServer(t, Config{})

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := l.AddExpense(ledger.NewExpense{Amount: 3, Category: "Food", Date: "2024-03-02"})
	require.NoError(t, err)

	st := decode[Status](t, do(t, http.MethodGet, ts.URL+"/v1/status", ""))
	assert.Equal(t, l.Path(), st.DBPath)
	assert.Equal(t, 1, st.Expenses)
	require.NotNil(t, st.Range)
	assert.Equal(t, "2024-03-02", st.Range.From)
}

func TestExpenseLifecycle(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/v1/expenses",
		`{"amount": 42.5, "category": "Food", "date": "2024-03-01", "description": "lunch"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[map[string]int64](t, resp)["id"]
	require.Positive(t, id)

	got := decode[model.Expense](t, do(t, http.MethodGet, ts.URL+"/v1/expenses/"+itoa(id), ""))
	assert.Equal(t, "lunch", got.Description)
	assert.Equal(t, "Food", got.Category)

	resp = do(t, http.MethodPatch, ts.URL+"/v1/expenses/"+itoa(id), `{"amount": 40}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Expense](t, resp)
	assert.Equal(t, 40.0, updated.Amount)
	assert.Equal(t, "lunch", updated.Description)
	assert.Equal(t, "2024-03-01", updated.Date)

	resp = do(t, http.MethodDelete, ts.URL+"/v1/expenses/"+itoa(id), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/v1/expenses/"+itoa(id), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	events := decode[[]Event](t, do(t, http.MethodGet, ts.URL+"/v1/events", ""))
	require.Len(t, events, 3)
	assert.Equal(t, EventExpenseAdded, events[0].Type)
	assert.Equal(t, EventExpenseUpdated, events[1].Type)
	assert.Equal(t, EventExpenseDeleted, events[2].Type)
	assert.Equal(t, id, events[2].ExpenseID)
	assert.Equal(t, 3, s.snapshotStatus().EventCount)
}

func TestListByRange(t *testing.T) {
	_, ts, l := newTestServer(t, Config{})
	for _, d := range []string{"2024-03-01", "2024-03-10", "2024-03-20"} {
		_, err := l.AddExpense(ledger.NewExpense{Amount: 1, Category: "Food", Date: d})
		require.NoError(t, err)
	}

	all := decode[[]model.Expense](t, do(t, http.MethodGet, ts.URL+"/v1/expenses", ""))
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-20", all[0].Date)

	ranged := decode[[]model.Expense](t, do(t, http.MethodGet, ts.URL+"/v1/expenses?from=2024-03-05&to=2024-03-20", ""))
	require.Len(t, ranged, 2)
	assert.Equal(t, "2024-03-10", ranged[0].Date)

	resp := do(t, http.MethodGet, ts.URL+"/v1/expenses?from=2024-3-5&to=2024-03-20", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Contains(t, body["error"], "YYYY-MM-DD")
}

func TestValidationErrors(t *testing.T) {
	_, ts, _ := newTestServer(t, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad date", http.MethodPost, "/v1/expenses", `{"amount": 10, "category": "X", "date": "not-a-date"}`, http.StatusBadRequest},
		{"missing amount", http.MethodPost, "/v1/expenses", `{"category": "X"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/expenses", `{"amount": 1, "category": "X", "colour": "red"}`, http.StatusBadRequest},
		{"unknown category id", http.MethodPost, "/v1/expenses", `{"amount": 1, "category_id": 999}`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/v1/expenses/abc", "", http.StatusBadRequest},
		{"missing expense", http.MethodGet, "/v1/expenses/77", "", http.StatusNotFound},
		{"empty patch", http.MethodPatch, "/v1/expenses/1", `{}`, http.StatusBadRequest},
		{"patch missing", http.MethodPatch, "/v1/expenses/77", `{"amount": 1}`, http.StatusNotFound},
		{"bad report days", http.MethodGet, "/v1/report?days=-3", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	all := decode[[]model.Expense](t, do(t, http.MethodGet, ts.URL+"/v1/expenses", ""))
	assert.Empty(t, all, "failed writes must not insert rows")
}

func TestCategories(t *testing.T) {
	_, ts, l := newTestServer(t, Config{})
	_, err := l.AddExpense(ledger.NewExpense{Amount: 42.5, Category: "Food", Date: "2024-03-01"})
	require.NoError(t, err)
	_, err = l.AddExpense(ledger.NewExpense{Amount: 15, Category: "Food", Date: "2024-03-15"})
	require.NoError(t, err)

	cats := decode[[]model.Category](t, do(t, http.MethodGet, ts.URL+"/v1/categories", ""))
	assert.Len(t, cats, 2)

	totals := decode[[]model.CategoryTotal](t, do(t, http.MethodGet, ts.URL+"/v1/categories/totals", ""))
	require.Len(t, totals, 1)
	assert.Equal(t, "Food", totals[0].Category)
	assert.InDelta(t, 57.5, totals[0].Total, 1e-9)

	resp := do(t, http.MethodDelete, ts.URL+"/v1/categories/Food", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/v1/categories/Other", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/v1/categories/Other", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReport(t *testing.T) {
	_, ts, l := newTestServer(t, Config{ReportDays: 30, MonthlyBudget: 100})
	for _, in := range []ledger.NewExpense{
		{Amount: 40, Category: "Food", Date: "2024-03-01"},
		{Amount: -500, Category: "Salary", Date: "2024-03-05"},
		{Amount: 20, Category: "Other", Date: "2024-03-18"},
		{Amount: 99, Category: "Food", Date: "2023-12-01"},
	} {
		_, err := l.AddExpense(in)
		require.NoError(t, err)
	}

	rep := decode[Report](t, do(t, http.MethodGet, ts.URL+"/v1/report", ""))
	assert.Equal(t, "2024-02-20", rep.From)
	assert.Equal(t, "2024-03-20", rep.To)
	assert.Equal(t, 3, rep.Summary.Count)
	assert.InDelta(t, 60.0, rep.Summary.Expenses, 1e-9)
	assert.InDelta(t, 500.0, rep.Summary.Income, 1e-9)
	assert.Len(t, rep.Trend, 30)
	require.Len(t, rep.Shares, 2)
	assert.Equal(t, "Food", rep.Shares[0].Category)
	require.NotNil(t, rep.Budget)
	assert.InDelta(t, 60.0, rep.Budget.Spent, 1e-9)

	all := decode[Report](t, do(t, http.MethodGet, ts.URL+"/v1/report?days=0", ""))
	assert.Equal(t, 4, all.Summary.Count)
}

func TestStreamDeliversEvents(t *testing.T) {
	s, ts, _ := newTestServer(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	rd := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var typ string
		for {
			line, err := rd.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "event: ") {
				typ = strings.TrimPrefix(line, "event: ")
			}
			if line == "" && typ != "" {
				return typ
			}
		}
	}
	require.Equal(t, EventHello, readEvent())

	require.Eventually(t, func() bool {
		return s.snapshotStatus().SubscriberCount == 1
	}, 2*time.Second, 10*time.Millisecond)

	post := do(t, http.MethodPost, ts.URL+"/v1/expenses", `{"amount": 5, "category": "Food"}`)
	require.Equal(t, http.StatusCreated, post.StatusCode)
	assert.Equal(t, EventExpenseAdded, readEvent())
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _, _ := newTestServer(t, Config{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
