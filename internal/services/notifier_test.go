package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"todoboard/internal/models"
)

type fakeTelegram struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

type errNotifier struct{ err error }

func (n errNotifier) Notify(context.Context, Message) error { return n.err }

func TestEventMessage(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)
	task := &models.Task{ID: "abc", Title: "Buy milk", Status: models.StatusDoing}

	msg := EventMessage(models.TaskEvent{Type: models.EventTaskCreated, TaskID: "abc", Task: task, At: at})
	assert.Equal(t, "Task created: Buy milk", msg.Subject)
	assert.Equal(t, "Buy milk\nStatus: Doing\nCreated: 2026/03/04 05:06", msg.Body)

	msg = EventMessage(models.TaskEvent{Type: models.EventTaskUpdated, TaskID: "abc", Task: task, At: at})
	assert.Equal(t, "Task updated: Buy milk", msg.Subject)

	msg = EventMessage(models.TaskEvent{Type: models.EventTaskDeleted, TaskID: "abc", At: at})
	assert.Equal(t, "Task deleted", msg.Subject)
	assert.Equal(t, "Task abc was deleted at 2026/03/04 05:06.", msg.Body)
}

func TestEmailNotifier(t *testing.T) {
	var got *gomail.Message
	n := &EmailNotifier{
		from: "bot@example.com",
		to:   "me@example.com",
		send: func(m *gomail.Message) error { got = m; return nil },
	}
	require.NoError(t, n.Notify(context.Background(), Message{Subject: "Hi", Body: "There"}))
	require.NotNil(t, got)
	assert.Equal(t, []string{"me@example.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, got.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := got.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "There")
}

func TestEmailNotifier_WrapsSendError(t *testing.T) {
	n := &EmailNotifier{send: func(*gomail.Message) error { return errors.New("smtp down") }}
	err := n.Notify(context.Background(), Message{Subject: "x"})
	assert.ErrorContains(t, err, "failed to send email: smtp down")
}

func TestTelegramNotifier_EscapesHTML(t *testing.T) {
	api := &fakeTelegram{}
	n := &TelegramNotifier{api: api, chatID: 42}

	require.NoError(t, n.Notify(context.Background(), Message{Subject: "Task created: <b>", Body: "a & b"}))
	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Equal(t, "<b>Task created: &lt;b&gt;</b>\na &amp; b", msg.Text)
}

func TestTelegramNotifier_SkipsWithoutChat(t *testing.T) {
	api := &fakeTelegram{}
	n := &TelegramNotifier{api: api}
	require.NoError(t, n.Notify(context.Background(), Message{Subject: "x"}))
	assert.Empty(t, api.sent)
}

func TestMultiNotifier_JoinsErrors(t *testing.T) {
	notes := make(chanNotifier, 1)
	m := MultiNotifier{errNotifier{errors.New("a")}, notes, errNotifier{errors.New("b")}}

	err := m.Notify(context.Background(), Message{Subject: "s"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "a")
	assert.ErrorContains(t, err, "b")
	assert.Equal(t, "s", (<-notes).Subject, "healthy channel still delivered")
}
