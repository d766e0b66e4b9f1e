package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// StoreError is an error reported by the database server itself, as opposed
// to a transport or context failure.
type StoreError struct {
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"-"`
}

func (e *StoreError) Error() string {
	parts := []string{}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Details != "" {
		parts = append(parts, "Details: "+e.Details)
	}
	if e.Hint != "" {
		parts = append(parts, "Hint: "+e.Hint)
	}
	if e.Code != "" {
		parts = append(parts, "Code: "+e.Code)
	}
	if len(parts) == 0 {
		return "store error"
	}
	return strings.Join(parts, " ")
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrapStoreError converts server-side Postgres errors into a StoreError and
// annotates every error with the failed operation.
func wrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, &StoreError{
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			Code:    pgErr.Code,
			Err:     err,
		})
	}
	return fmt.Errorf("%s: %w", op, err)
}
