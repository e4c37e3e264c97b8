package services

import (
	"errors"
	"net/url"
	"sync"
	"time"
)

type FormStatus string

const (
	FormIdle       FormStatus = "idle"
	FormSubmitting FormStatus = "submitting"
	FormSuccess    FormStatus = "success"
	FormError      FormStatus = "error"
)

var ErrSubmitInFlight = errors.New("submission already in flight")

type SuccessVariant int

const (
	VariantCreated SuccessVariant = iota
	VariantCreatedWithAI
	VariantUpdated
	VariantUpdatedWithAI
	VariantDeleted
)

func (v SuccessVariant) Message() string {
	switch v {
	case VariantCreated:
		return "Todo created successfully."
	case VariantCreatedWithAI:
		return "Todo created successfully. AI suggestions were added."
	case VariantUpdated:
		return "Update completed successfully."
	case VariantUpdatedWithAI:
		return "Task updated successfully. AI suggestions were added."
	case VariantDeleted:
		return "Todo deleted successfully."
	}
	return ""
}

// Timer is the part of *time.Timer the model needs.
type Timer interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type FormOption func(*FormModel)

func WithAfterFunc(fn AfterFunc) FormOption {
	return func(m *FormModel) { m.afterFunc = fn }
}

// WithOnDismiss runs after the success toast times out, e.g. to drop query markers.
func WithOnDismiss(fn func()) FormOption {
	return func(m *FormModel) { m.onDismiss = fn }
}

// FormState is a snapshot for rendering.
type FormState struct {
	Status       FormStatus
	Message      string
	DeleteOpen   bool
	DismissAfter time.Duration
}

func (s FormState) ShowSuccess() bool { return s.Status == FormSuccess }
func (s FormState) ShowError() bool   { return s.Status == FormError }
func (s FormState) Busy() bool        { return s.Status == FormSubmitting }

// FormModel drives the create/edit form: one submission at a time, a success
// toast that dismisses itself, an error that stays until the next input, and
// the delete confirmation modal.
type FormModel struct {
	mu         sync.Mutex
	status     FormStatus
	message    string
	deleteOpen bool

	window    time.Duration
	afterFunc AfterFunc
	onDismiss func()
	timer     Timer
	gen       uint64 // bumped on every transition; stale timers compare against it
}

func NewFormModel(window time.Duration, opts ...FormOption) *FormModel {
	m := &FormModel{status: FormIdle, window: window, afterFunc: realAfterFunc}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FormFromQuery restores the success toast after a post-redirect-get.
// created/updated/deleted pick the variant and ai=true selects the AI wording.
func FormFromQuery(v url.Values, window time.Duration, opts ...FormOption) *FormModel {
	m := NewFormModel(window, opts...)
	if variant, ok := SuccessFromQuery(v); ok {
		m.Succeed(variant)
	}
	return m
}

func SuccessFromQuery(v url.Values) (SuccessVariant, bool) {
	ai := v.Get("ai") == "true"
	switch {
	case v.Get("created") == "true":
		if ai {
			return VariantCreatedWithAI, true
		}
		return VariantCreated, true
	case v.Get("updated") == "true":
		if ai {
			return VariantUpdatedWithAI, true
		}
		return VariantUpdated, true
	case v.Get("deleted") == "true":
		return VariantDeleted, true
	}
	return 0, false
}

func (m *FormModel) State() FormState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := FormState{Status: m.status, Message: m.message, DeleteOpen: m.deleteOpen}
	if m.status == FormSuccess {
		st.DismissAfter = m.window
	}
	return st
}

func (m *FormModel) Submit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitLocked()
}

func (m *FormModel) submitLocked() error {
	if m.status == FormSubmitting {
		return ErrSubmitInFlight
	}
	m.transitionLocked(FormSubmitting, "")
	return nil
}

func (m *FormModel) Succeed(v SuccessVariant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionLocked(FormSuccess, v.Message())
	if m.window <= 0 {
		return
	}
	gen := m.gen
	m.timer = m.afterFunc(m.window, func() { m.dismiss(gen) })
}

func (m *FormModel) Fail(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionLocked(FormError, msg)
}

// Input is any user edit: a visible toast goes away immediately.
func (m *FormModel) Input() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == FormSuccess || m.status == FormError {
		m.transitionLocked(FormIdle, "")
	}
}

func (m *FormModel) OpenDelete() {
	m.mu.Lock()
	m.deleteOpen = true
	m.mu.Unlock()
}

func (m *FormModel) CancelDelete() {
	m.mu.Lock()
	m.deleteOpen = false
	m.mu.Unlock()
}

// ConfirmDelete closes the modal and starts the delete submission.
func (m *FormModel) ConfirmDelete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteOpen = false
	return m.submitLocked()
}

// Close stops a pending dismiss timer. Call when the view goes away.
func (m *FormModel) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.stopTimerLocked()
}

func (m *FormModel) dismiss(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.status != FormSuccess {
		m.mu.Unlock()
		return
	}
	m.status, m.message, m.timer = FormIdle, "", nil
	m.gen++
	fn := m.onDismiss
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (m *FormModel) transitionLocked(to FormStatus, msg string) {
	m.gen++
	m.stopTimerLocked()
	m.status = to
	m.message = msg
}

func (m *FormModel) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
