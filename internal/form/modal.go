package form

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/resource"
)

// Submitter persists a form draft. resource.Client satisfies it.
type Submitter[T any] interface {
	Create(ctx context.Context, payload resource.Payload) (T, error)
	Update(ctx context.Context, id int64, payload resource.Payload) (T, error)
}

type Publisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// Modal is the create/edit dialog of one resource. A draft with id 0 is
// created, anything else is updated.
type Modal[T resource.Identifiable] struct {
	name      string
	submitter Submitter[T]
	publisher Publisher
	validator *Validator
	logger    *slog.Logger

	draft T
	open  bool
	err   error
}

func NewModal[T resource.Identifiable](name string, submitter Submitter[T], publisher Publisher, logger *slog.Logger) *Modal[T] {
	return &Modal[T]{
		name:      name,
		submitter: submitter,
		publisher: publisher,
		validator: NewValidator(),
		logger:    logger.With("resource", name),
	}
}

// Open starts editing draft; pass the zero value for a new record.
func (m *Modal[T]) Open(draft T) {
	m.draft = draft
	m.open = true
	m.err = nil
}

func (m *Modal[T]) IsOpen() bool { return m.open }

func (m *Modal[T]) Draft() T { return m.draft }

// Err is the failure of the last submit, kept while the form stays open.
func (m *Modal[T]) Err() error { return m.err }

// Set updates one field by JSON name. Read-only fields are refused.
func (m *Modal[T]) Set(field string, value any) error {
	if !m.open {
		return internal.ErrFormClosed
	}
	return SetField(&m.draft, field, value)
}

func (m *Modal[T]) Missing() []string {
	return m.validator.Missing(m.draft)
}

func (m *Modal[T]) CanSubmit() bool {
	return m.open && len(m.Missing()) == 0
}

// Submit validates the draft, sends one create or update, and on success
// closes the form and signals open lists to re-fetch. On failure the form
// stays open with the draft untouched.
func (m *Modal[T]) Submit(ctx context.Context) error {
	if !m.open {
		return internal.ErrFormClosed
	}
	if err := m.validator.Check(m.draft); err != nil {
		m.err = err
		return err
	}

	payload := PayloadOf(m.draft)
	id := m.draft.GetID()
	action := "update"

	var (
		saved T
		err   error
	)
	if id == 0 {
		action = "create"
		saved, err = m.submitter.Create(ctx, payload)
	} else {
		saved, err = m.submitter.Update(ctx, id, payload)
	}
	if err != nil {
		m.err = err
		m.logger.Warn("form submit failed", "action", action, "error", err)
		return err
	}

	m.open = false
	m.err = nil
	m.logger.Debug("form submitted", "action", action, "id", saved.GetID())

	if m.publisher != nil {
		event := events.NewResourceChangedEvent(m.name, action, saved.GetID())
		if err := m.publisher.PublishSync(ctx, event); err != nil {
			m.logger.Warn("refresh after submit failed", "error", err)
		}
	}
	return nil
}

// Cancel closes the form and discards the draft without touching the backend.
func (m *Modal[T]) Cancel() {
	var zero T
	m.draft = zero
	m.open = false
	m.err = nil
}
