package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gopkg.in/gomail.v2"

	"todoboard/internal/models"
)

const notifyTimeout = 15 * time.Second

const dateLayout = "2006/01/02 15:04"

// Message is a channel-neutral notification.
type Message struct {
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// EventMessage renders a task change for humans.
func EventMessage(ev models.TaskEvent) Message {
	switch ev.Type {
	case models.EventTaskDeleted:
		return Message{
			Subject: "Task deleted",
			Body:    fmt.Sprintf("Task %s was deleted at %s.", ev.TaskID, ev.At.Format(dateLayout)),
		}
	case models.EventTaskCreated, models.EventTaskUpdated:
		verb, label := "created", "Created"
		if ev.Type == models.EventTaskUpdated {
			verb, label = "updated", "Updated"
		}
		title, status := ev.TaskID, ""
		if ev.Task != nil {
			title, status = ev.Task.Title, ev.Task.Status.Label()
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", title)
		if status != "" {
			fmt.Fprintf(&b, "Status: %s\n", status)
		}
		fmt.Fprintf(&b, "%s: %s", label, ev.At.Format(dateLayout))
		return Message{Subject: fmt.Sprintf("Task %s: %s", verb, title), Body: b.String()}
	}
	return Message{Subject: "Task event", Body: string(ev.Type)}
}

// ===== Email

type EmailNotifier struct {
	from string
	to   string
	send func(m *gomail.Message) error
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, toEmail string) *EmailNotifier {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &EmailNotifier{
		from: fromEmail,
		to:   toEmail,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := n.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// ===== Telegram

// telegramSender is satisfied by *tgbotapi.BotAPI.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	api    telegramSender
	chatID int64
}

// NewTelegramNotifier calls getMe, so it fails fast on a bad token.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	log.Printf("[tg] authorized as @%s", api.Self.UserName)
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.chatID == 0 {
		log.Printf("[tg][skip] chatID empty")
		return nil
	}
	text := fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(msg.Subject), html.EscapeString(msg.Body))
	out := tgbotapi.NewMessage(n.chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if _, err := n.api.Send(out); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

// ===== Fan-out

// MultiNotifier delivers to every channel and joins the failures.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
