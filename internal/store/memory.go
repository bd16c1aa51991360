package store

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"gitlab.com/dirk.krummacker/records-service/internal/model"
)

// Memory is a Store that keeps records in memory. It is meant for tests and for running the
// form without a service.
type Memory struct {
	mu      sync.Mutex
	records []model.Record
	nextID  int64
	now     func() time.Time
	failure error
	calls   int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextID: 1, now: time.Now}
}

// Verify at compile time that Memory implements Store.
var _ Store = (*Memory)(nil)

// FailNext makes the next operation return err without changing anything.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// Calls returns the number of operations the store has received, failed ones included.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// begin counts the call and returns an injected failure, if any. The caller holds the lock.
func (m *Memory) begin() error {
	m.calls++
	err := m.failure
	m.failure = nil
	return err
}

// ListRecords returns a copy of all records in insertion order.
func (m *Memory) ListRecords(_ context.Context) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	return slices.Clone(m.records), nil
}

// CreateRecord appends a record with the next id.
func (m *Memory) CreateRecord(_ context.Context, fields model.Fields) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return model.Record{}, err
	}
	now := m.now().UTC()
	record := model.Record{Id: m.nextID, Fields: fields, CreatedAt: now, UpdatedAt: now}
	m.nextID++
	m.records = append(m.records, record)
	return record, nil
}

// UpdateRecord replaces the fields of the record with the given id.
func (m *Memory) UpdateRecord(_ context.Context, id int64, fields model.Fields) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return model.Record{}, err
	}
	for i := range m.records {
		if m.records[i].Id == id {
			m.records[i].Fields = fields
			m.records[i].UpdatedAt = m.now().UTC()
			return m.records[i], nil
		}
	}
	return model.Record{}, &OperationError{
		Method:  http.MethodPut,
		Path:    recordPath(id),
		Status:  http.StatusNotFound,
		Message: "record not found",
	}
}
