// Package controller holds the state behind the record form and the record table: the draft
// being edited, the records loaded from the store and the table page. Every user action is a
// method call; store operations are the only calls that block.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"gitlab.com/dirk.krummacker/records-service/internal/form"
	"gitlab.com/dirk.krummacker/records-service/internal/model"
	"gitlab.com/dirk.krummacker/records-service/internal/pagination"
	"gitlab.com/dirk.krummacker/records-service/internal/region"
	"gitlab.com/dirk.krummacker/records-service/internal/store"
)

// DefaultCountry is the country whose states are offered when no other is configured.
const DefaultCountry = "IN"

var (
	ErrOperationInProgress = errors.New("another store operation is in progress")
	ErrNoSuchRecord        = errors.New("no record at this position")
	ErrUnknownState        = errors.New("unknown state")
	ErrStateNotSelected    = errors.New("select a state first")
	ErrUnknownDistrict     = errors.New("district does not belong to the selected state")
)

// State is either Idle or Editing.
type State interface {
	isState()
}

// Idle means the draft is for a new record.
type Idle struct{}

// Editing means the draft holds the values of an existing record. Only StartEdit creates an
// Editing value, so its index always points into the loaded records.
type Editing struct {
	index int
	id    int64
}

func (Idle) isState()    {}
func (Editing) isState() {}

// Index returns the position of the edited record in the loaded records.
func (e Editing) Index() int {
	return e.index
}

// ID returns the identity of the edited record.
func (e Editing) ID() int64 {
	return e.id
}

// SaveOutcome tells whether a save created or updated a record.
type SaveOutcome int

const (
	Created SaveOutcome = iota
	Updated
)

func (o SaveOutcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "created"
}

// SaveResult is the record confirmed by the store after a save.
type SaveResult struct {
	Outcome SaveOutcome
	Record  model.Record
}

// Message returns the confirmation shown to the user.
func (r SaveResult) Message() string {
	if r.Outcome == Updated {
		return "Record updated successfully"
	}
	return "Record added successfully"
}

// Controller is safe for use by a UI event loop and store callbacks at the same time. The lock
// is never held while the store is called.
type Controller struct {
	mu      sync.Mutex
	store   store.Store
	regions region.Provider
	country string
	logger  *slog.Logger

	draft   model.Fields
	records []model.Record
	state   State
	pager   *pagination.Pager
	busy    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithCountry selects the country whose states and districts are offered.
func WithCountry(country string) Option {
	return func(c *Controller) {
		c.country = country
	}
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New returns an Idle controller with an empty draft and no records.
func New(s store.Store, regions region.Provider, opts ...Option) *Controller {
	c := &Controller{
		store:   s,
		regions: regions,
		country: DefaultCountry,
		logger:  slog.Default(),
		state:   Idle{},
		pager:   pagination.NewPager(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the records with the store's list and returns to the first page. An edit in
// progress is abandoned because its position may no longer be valid.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	records, err := c.store.ListRecords(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.logger.Error("could not list records", "error", err)
		return fmt.Errorf("list records: %w", err)
	}
	c.records = records
	c.pager.Reset()
	if _, ok := c.state.(Editing); ok {
		c.state = Idle{}
		c.draft = model.Fields{}
	}
	c.logger.Debug("records loaded", "count", len(records))
	return nil
}

// acquire marks the controller busy for a store call.
func (c *Controller) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrOperationInProgress
	}
	c.busy = true
	return nil
}

// Busy reports whether a store operation is awaiting its answer.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// State returns Idle or Editing.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns the current form values.
func (c *Controller) Draft() model.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Records returns a copy of the loaded records.
func (c *Controller) Records() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Country returns the country of the state and district lists.
func (c *Controller) Country() string {
	return c.country
}

// StateName returns the display name of a state code.
func (c *Controller) StateName(code string) string {
	return region.StateName(c.regions, c.country, code)
}

// StateOptions returns the states that can be selected.
func (c *Controller) StateOptions() []region.State {
	return c.regions.States(c.country)
}

// DistrictOptions returns the districts of the selected state, or nothing if no state is
// selected.
func (c *Controller) DistrictOptions() []string {
	state := c.Draft().State
	if state == "" {
		return nil
	}
	return c.regions.Districts(c.country, state)
}

// SetField applies a raw input value to the draft with the formatting rule of the field. A
// state must be one of StateOptions and a district one of DistrictOptions; clearing either
// is always possible.
func (c *Controller) SetField(field model.Field, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrOperationInProgress
	}
	switch field {
	case model.State:
		if raw != "" && !region.HasState(c.regions, c.country, raw) {
			return fmt.Errorf("%w: %q", ErrUnknownState, raw)
		}
	case model.District:
		if raw != "" {
			if c.draft.State == "" {
				return ErrStateNotSelected
			}
			if !region.HasDistrict(c.regions, c.country, c.draft.State, raw) {
				return fmt.Errorf("%w: %q", ErrUnknownDistrict, raw)
			}
		}
	}
	c.draft = form.ApplyInput(c.draft, field, raw)
	return nil
}

// StartEdit loads the record at index into the draft. The index counts from the first loaded
// record, not from the first visible one.
func (c *Controller) StartEdit(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrOperationInProgress
	}
	if index < 0 || index >= len(c.records) {
		return fmt.Errorf("%w: %d", ErrNoSuchRecord, index)
	}
	record := c.records[index]
	c.state = Editing{index: index, id: record.Id}
	c.draft = record.Fields
	return nil
}

// Cancel clears the draft and abandons an edit. The store is not contacted.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrOperationInProgress
	}
	c.state = Idle{}
	c.draft = model.Fields{}
	return nil
}

// Save validates the draft and sends it to the store: as an update of the edited record when
// editing, as a new record otherwise. Only a confirmed answer changes the loaded records;
// afterwards the draft is cleared and the controller is Idle. A validation or store failure
// leaves state and draft as they are.
func (c *Controller) Save(ctx context.Context) (SaveResult, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return SaveResult{}, ErrOperationInProgress
	}
	if err := form.Validate(c.draft); err != nil {
		c.mu.Unlock()
		return SaveResult{}, err
	}
	draft := c.draft
	state := c.state
	c.busy = true
	c.mu.Unlock()

	var record model.Record
	var err error
	editing, isEditing := state.(Editing)
	if isEditing {
		record, err = c.store.UpdateRecord(ctx, editing.id, draft)
	} else {
		record, err = c.store.CreateRecord(ctx, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		if isEditing {
			c.logger.Error("could not update record", "id", editing.id, "error", err)
			return SaveResult{}, fmt.Errorf("update record %d: %w", editing.id, err)
		}
		c.logger.Error("could not create record", "error", err)
		return SaveResult{}, fmt.Errorf("create record: %w", err)
	}

	result := SaveResult{Record: record}
	if isEditing {
		c.records[editing.index] = record
		c.state = Idle{}
		result.Outcome = Updated
	} else {
		c.records = append(c.records, record)
		result.Outcome = Created
	}
	c.draft = model.Fields{}
	c.logger.Info("record saved", "id", record.Id, "outcome", result.Outcome.String())
	return result, nil
}
