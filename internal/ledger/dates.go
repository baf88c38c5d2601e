package ledger

import (
	"math"
	"time"
)

// DateLayout is the ISO calendar date format used for stored dates.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func checkDate(field, s string) error {
	if !ValidDate(s) {
		return &ValidationError{Field: field, Value: s, Err: ErrInvalidDate}
	}
	return nil
}

func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}
