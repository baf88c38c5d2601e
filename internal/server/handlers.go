package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/report"
)

type addRequest struct {
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	CategoryID  int64    `json:"category_id"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
}

type patchRequest struct {
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	CategoryID  *int64   `json:"category_id"`
	Date        *string  `json:"date"`
}

// Report is served at /v1/report.
type Report struct {
	From    string                `json:"from,omitempty"`
	To      string                `json:"to,omitempty"`
	Summary model.Summary         `json:"summary"`
	Monthly []model.MonthlyFlow   `json:"monthly"`
	Shares  []model.CategoryShare `json:"shares"`
	Trend   []model.DailyTotal    `json:"trend"`
	Budget  *model.BudgetStatus   `json:"budget,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")

	var (
		expenses []model.Expense
		err      error
	)
	if from != "" || to != "" {
		expenses, err = s.store.GetExpensesByDateRange(from, to)
	} else {
		expenses, err = s.store.GetAllExpenses()
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		expenses = report.FilterByCategory(expenses, cat)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		expenses = report.FilterByText(expenses, q)
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Amount == nil {
		s.writeError(w, &ledger.ValidationError{Field: "amount", Err: errors.New("required")})
		return
	}

	id, err := s.store.AddExpense(ledger.NewExpense{
		Amount:      *req.Amount,
		Category:    req.Category,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if e, ok, err := s.store.GetExpense(id); err == nil && ok {
		s.emitExpense(EventExpenseAdded, e)
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	e, found, err := s.store.GetExpense(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("expense %d not found", id)))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req patchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.store.UpdateExpense(id, ledger.ExpenseUpdate(req))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !updated {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("expense %d not found", id)))
		return
	}

	e, _, err := s.store.GetExpense(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.emitExpense(EventExpenseUpdated, e)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.store.DeleteExpense(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("expense %d not found", id)))
		return
	}
	s.emit(EventExpenseDeleted, func(ev *Event) { ev.ExpenseID = id })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	cats, err := s.store.ListCategories()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, _ *http.Request) {
	totals, err := s.store.GetExpensesByCategory()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if totals == nil {
		totals = []model.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	deleted, err := s.store.DeleteCategory(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("category %q not found", name)))
		return
	}
	s.emit(EventCategoryDeleted, func(ev *Event) { ev.Category = name })
	w.WriteHeader(http.StatusNoContent)
}

// handleReport aggregates either ?from=&to=, ?days=N, or the configured
// default window.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	now := s.cfg.Now()

	if from == "" && to == "" {
		days := s.cfg.ReportDays
		if v := q.Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				s.writeError(w, &ledger.ValidationError{Field: "days", Value: v, Err: errors.New("want a non-negative integer")})
				return
			}
			days = n
		}
		if days > 0 {
			from = report.WindowStart(now, days)
			to = now.Format(ledger.DateLayout)
		}
	}

	var (
		expenses []model.Expense
		err      error
	)
	if from != "" || to != "" {
		expenses, err = s.store.GetExpensesByDateRange(from, to)
	} else {
		expenses, err = s.store.GetAllExpenses()
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	trend := report.DailyTrend(expenses)
	if from != "" && to != "" {
		trend = report.FillDays(trend, from, to)
	}
	rep := Report{
		From:    from,
		To:      to,
		Summary: report.Summarize(expenses, s.cfg.Convention),
		Monthly: report.MonthlyFlows(expenses, s.cfg.Convention),
		Shares:  report.CategoryShares(expenses, s.cfg.Convention),
		Trend:   trend,
	}
	if s.cfg.MonthlyBudget > 0 {
		all, err := s.store.GetAllExpenses()
		if err != nil {
			s.writeError(w, err)
			return
		}
		bs := report.Budget(all, s.cfg.Convention, s.cfg.MonthlyBudget, now)
		rep.Budget = &bs
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, &ledger.ValidationError{Field: "id", Value: raw, Err: errors.New("want a positive integer")})
		return 0, false
	}
	return id, true
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ledger.ValidationError{Field: "body", Err: err}
	}
	return nil
}

// writeError maps ledger error kinds onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrCategoryInUse):
		status = http.StatusConflict
	case ledger.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
