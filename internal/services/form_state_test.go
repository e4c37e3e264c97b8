package services

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, fire: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) last() *fakeTimer {
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func newTestForm(onDismiss func()) (*FormModel, *fakeClock) {
	clock := &fakeClock{}
	opts := []FormOption{WithAfterFunc(clock.AfterFunc)}
	if onDismiss != nil {
		opts = append(opts, WithOnDismiss(onDismiss))
	}
	return NewFormModel(4*time.Second, opts...), clock
}

func TestForm_SubmitRejectsWhileInFlight(t *testing.T) {
	m, _ := newTestForm(nil)

	require.NoError(t, m.Submit())
	assert.ErrorIs(t, m.Submit(), ErrSubmitInFlight)
	assert.True(t, m.State().Busy())
}

func TestForm_SuccessDismissesAfterWindow(t *testing.T) {
	dismissed := 0
	m, clock := newTestForm(func() { dismissed++ })

	require.NoError(t, m.Submit())
	m.Succeed(VariantUpdated)

	st := m.State()
	assert.True(t, st.ShowSuccess())
	assert.Equal(t, "Update completed successfully.", st.Message)
	assert.Equal(t, 4*time.Second, st.DismissAfter)

	timer := clock.last()
	require.NotNil(t, timer)
	assert.Equal(t, 4*time.Second, timer.d)
	timer.fire()

	assert.Equal(t, FormIdle, m.State().Status)
	assert.Empty(t, m.State().Message)
	assert.Equal(t, 1, dismissed)
}

func TestForm_InputClearsSuccessImmediately(t *testing.T) {
	dismissed := 0
	m, clock := newTestForm(func() { dismissed++ })
	m.Succeed(VariantCreated)

	m.Input()
	assert.Equal(t, FormIdle, m.State().Status)
	assert.True(t, clock.last().stopped)

	// a late fire from the old timer is ignored
	clock.last().fire()
	assert.Equal(t, 0, dismissed)
}

func TestForm_ErrorHasNoTimerAndClearsOnInput(t *testing.T) {
	m, clock := newTestForm(nil)
	require.NoError(t, m.Submit())
	m.Fail("Failed to update task. Please try again.")

	st := m.State()
	assert.True(t, st.ShowError())
	assert.Equal(t, "Failed to update task. Please try again.", st.Message)
	assert.Zero(t, st.DismissAfter)
	assert.Nil(t, clock.last())

	m.Input()
	assert.Equal(t, FormIdle, m.State().Status)
}

func TestForm_ResubmitAfterErrorIsAllowed(t *testing.T) {
	m, _ := newTestForm(nil)
	require.NoError(t, m.Submit())
	m.Fail("boom")
	assert.NoError(t, m.Submit())
}

func TestForm_NewSuccessReplacesTimer(t *testing.T) {
	dismissed := 0
	m, clock := newTestForm(func() { dismissed++ })

	m.Succeed(VariantCreated)
	first := clock.last()
	m.Succeed(VariantUpdatedWithAI)
	second := clock.last()

	assert.True(t, first.stopped)
	first.fire()
	assert.Equal(t, FormSuccess, m.State().Status, "stale timer must not dismiss")
	assert.Equal(t, "Task updated successfully. AI suggestions were added.", m.State().Message)

	second.fire()
	assert.Equal(t, FormIdle, m.State().Status)
	assert.Equal(t, 1, dismissed)
}

func TestForm_CloseCancelsPendingDismiss(t *testing.T) {
	dismissed := 0
	m, clock := newTestForm(func() { dismissed++ })
	m.Succeed(VariantCreated)

	m.Close()
	assert.True(t, clock.last().stopped)
	clock.last().fire()
	assert.Equal(t, 0, dismissed)
}

func TestForm_DeleteModal(t *testing.T) {
	m, _ := newTestForm(nil)

	m.OpenDelete()
	assert.True(t, m.State().DeleteOpen)

	m.CancelDelete()
	st := m.State()
	assert.False(t, st.DeleteOpen)
	assert.Equal(t, FormIdle, st.Status, "cancel has no side effects")

	m.OpenDelete()
	require.NoError(t, m.ConfirmDelete())
	st = m.State()
	assert.False(t, st.DeleteOpen)
	assert.Equal(t, FormSubmitting, st.Status)

	m.OpenDelete()
	assert.ErrorIs(t, m.ConfirmDelete(), ErrSubmitInFlight)
}

func TestSuccessVariant_Messages(t *testing.T) {
	assert.Equal(t, "Todo created successfully.", VariantCreated.Message())
	assert.Equal(t, "Todo created successfully. AI suggestions were added.", VariantCreatedWithAI.Message())
	assert.Equal(t, "Update completed successfully.", VariantUpdated.Message())
	assert.Equal(t, "Task updated successfully. AI suggestions were added.", VariantUpdatedWithAI.Message())
	assert.Equal(t, "Todo deleted successfully.", VariantDeleted.Message())
}

func TestFormFromQuery(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"created=true", "Todo created successfully."},
		{"created=true&ai=true", "Todo created successfully. AI suggestions were added."},
		{"updated=true", "Update completed successfully."},
		{"updated=true&ai=true", "Task updated successfully. AI suggestions were added."},
		{"deleted=true", "Todo deleted successfully."},
		{"", ""},
		{"created=false", ""},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			v, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			clock := &fakeClock{}
			m := FormFromQuery(v, 4*time.Second, WithAfterFunc(clock.AfterFunc))
			defer m.Close()

			st := m.State()
			assert.Equal(t, tc.want, st.Message)
			assert.Equal(t, tc.want != "", st.ShowSuccess())
		})
	}
}

func TestForm_ZeroWindowNeverArmsTimer(t *testing.T) {
	clock := &fakeClock{}
	m := NewFormModel(0, WithAfterFunc(clock.AfterFunc))
	m.Succeed(VariantCreated)
	assert.Nil(t, clock.last())
	assert.True(t, m.State().ShowSuccess())
}
