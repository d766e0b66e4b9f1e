package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"adminlite/internal/repositories"
)

var (
	ErrListTablesFailed    = errors.New("failed to fetch tables")
	ErrDescribeTableFailed = errors.New("failed to describe table")
	ErrSchemaUnavailable   = errors.New("schema unavailable")
	ErrRowFetchFailed      = errors.New("failed to fetch rows")
	ErrSaveFailed          = errors.New("failed to save record")
	ErrMissingPrimaryKey   = errors.New("missing primary key value")
	ErrNoPrimaryKey        = errors.New("table has no primary key")

	ErrTableNotFound     = errors.New("table not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrNotForeignKey     = errors.New("column is not a foreign key")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrInvalidPanel      = errors.New("invalid panel")
	ErrNoTableSelected   = errors.New("no table selected")
	ErrNoEditor          = errors.New("no record is being edited")
	ErrRowNotFound       = errors.New("row not found")
)

const uninformativeError = "Received an empty or uninformative error from the database. " +
	"Check that the list_tables() and describe_table(p_table_name) functions exist and are executable " +
	"(adminlite install-rpc installs them)."

// DescribeError renders err as one human readable message. A store message
// wins, with its details, hint and code appended. Without a message the error
// is serialized, and an empty error gets a hint about the introspection
// functions.
func DescribeError(err error) string {
	if err == nil {
		return uninformativeError
	}

	var storeErr *repositories.StoreError
	if errors.As(err, &storeErr) {
		if storeErr.Message != "" {
			var sb strings.Builder
			sb.WriteString(storeErr.Message)
			if storeErr.Details != "" {
				sb.WriteString(" Details: " + storeErr.Details)
			}
			if storeErr.Hint != "" {
				sb.WriteString(" Hint: " + storeErr.Hint)
			}
			if storeErr.Code != "" {
				sb.WriteString(" Code: " + storeErr.Code)
			}
			return sb.String()
		}
		if raw, jerr := json.Marshal(storeErr); jerr == nil && string(raw) != "{}" {
			return string(raw)
		}
		if storeErr.Err != nil {
			return DescribeError(storeErr.Err)
		}
		return uninformativeError
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" || msg == "{}" {
		return uninformativeError
	}
	return msg
}

// isHardFailure separates errors that abort a whole resolve pass (transport
// or cancellation) from store-side errors that only skip one strategy.
func isHardFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var storeErr *repositories.StoreError
	if errors.As(err, &storeErr) {
		return false
	}
	if errors.Is(err, repositories.ErrInvalidIdentifier) || errors.Is(err, repositories.ErrRecordNotFound) {
		return false
	}
	return true
}
