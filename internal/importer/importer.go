package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/theirongolddev/fintrack/internal/ledger"
)

// Adder is the ledger write used by Import.
type Adder interface {
	AddExpense(in ledger.NewExpense) (int64, error)
}

// Options controls Import.
type Options struct {
	// DefaultCategory is used for records without a category.
	DefaultCategory string
	// DryRun validates records without writing.
	DryRun bool
	// Progress is called after each record.
	Progress func(done, total int)
	Logger   *slog.Logger
}

// Failure is a record the ledger rejected.
type Failure struct {
	Record Record
	Err    error
}

// Result summarizes an import.
type Result struct {
	Added    int
	IDs      []int64
	Failures []Failure
}

// Import adds records one by one. Validation failures are collected and the
// import continues; a storage failure stops it and is returned along with
// the partial result.
func Import(ctx context.Context, store Adder, records []Record, opts Options) (Result, error) {
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = "Other"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger.With("component", "importer")

	var res Result
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		in := ledger.NewExpense{
			Amount:      rec.Amount,
			Category:    rec.Category,
			Date:        rec.Date,
			Description: rec.Description,
		}
		if strings.TrimSpace(in.Category) == "" {
			in.Category = opts.DefaultCategory
		}

		var err error
		if opts.DryRun {
			err = check(in)
		} else {
			var id int64
			id, err = store.AddExpense(in)
			if err == nil {
				res.IDs = append(res.IDs, id)
			}
		}

		switch {
		case err == nil:
			res.Added++
		case ledger.IsValidation(err):
			log.Debug("record rejected", "source", rec.Source, "error", err)
			res.Failures = append(res.Failures, Failure{Record: rec, Err: err})
		default:
			return res, fmt.Errorf("importing %s: %w", rec.Source, err)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(records))
		}
	}

	log.Info("import finished", "added", res.Added, "rejected", len(res.Failures), "dry_run", opts.DryRun)
	return res, nil
}

// check mirrors the ledger's write-time validation for dry runs.
func check(in ledger.NewExpense) error {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return &ledger.ValidationError{Field: "amount", Err: ledger.ErrInvalidAmount}
	}
	if in.Date != "" && !ledger.ValidDate(in.Date) {
		return &ledger.ValidationError{Field: "date", Value: in.Date, Err: ledger.ErrInvalidDate}
	}
	if strings.TrimSpace(in.Category) == "" {
		return &ledger.ValidationError{Field: "category", Err: ledger.ErrEmptyCategory}
	}
	return nil
}
