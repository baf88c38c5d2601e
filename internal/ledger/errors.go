package ledger

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by ValidationError and StorageError.
var (
	ErrInvalidDate     = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidAmount   = errors.New("amount must be a finite number")
	ErrEmptyCategory   = errors.New("category name is empty")
	ErrUnknownCategory = errors.New("unknown category")
	ErrCategoryInUse   = errors.New("category is referenced by expenses")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrClosed          = errors.New("ledger is closed")
)

// ValidationError reports input rejected before any write reached storage.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError reports a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
