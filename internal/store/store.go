// Package store defines the operations of the record collection and implements them against
// the REST API of the records service.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gitlab.com/dirk.krummacker/records-service/internal/form"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
)

// Store lists, creates and updates records. Identities and timestamps are assigned by the
// store.
type Store interface {
	ListRecords(ctx context.Context) ([]model.Record, error)
	CreateRecord(ctx context.Context, fields model.Fields) (model.Record, error)
	UpdateRecord(ctx context.Context, id int64, fields model.Fields) (model.Record, error)
}

var (
	// ErrStoreUnavailable means the store could not be reached or sent an unreadable answer.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrStoreOperationFailed means the store rejected the operation.
	ErrStoreOperationFailed = errors.New("record store operation failed")

	// ErrRecordNotFound means the record to update does not exist.
	ErrRecordNotFound = errors.New("record not found")
)

// OperationError describes a request the store answered with a failure status.
type OperationError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Code    string
}

func (e *OperationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
}

// Is matches ErrStoreOperationFailed for every operation error and ErrRecordNotFound for a
// 404 answer.
func (e *OperationError) Is(target error) bool {
	switch target {
	case ErrStoreOperationFailed:
		return true
	case ErrRecordNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Unwrap returns the validation error the store reported, if any.
func (e *OperationError) Unwrap() error {
	return form.FromCode(e.Code)
}
