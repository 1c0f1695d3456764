package sendgrid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultHost     = "https://api.sendgrid.com"
	sendEndpoint    = "/v3/mail/send"
	defaultTimeout  = 10 * time.Second
	defaultFromName = "Reservations"
)

// Client клиент для отправки писем через SendGrid
type Client struct {
	cfg Config
	log Logger
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// NewClient создает новый экземпляр клиента SendGrid
func NewClient(cfg Config, log Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}

	return &Client{cfg: cfg, log: log}
}

// Configured сообщает, можно ли отправлять письма
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.FromEmail != ""
}

// Send отправляет письмо
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return fmt.Errorf("%w: api key and sender address are required", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	from := mail.NewEmail(c.cfg.FromName, c.cfg.FromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	request := sg.GetRequest(c.cfg.APIKey, sendEndpoint, c.cfg.Host)
	request.Method = http.MethodPost
	client := &sg.Client{Request: request}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		c.log.Error("SendGrid: failed to send to %s: %v", msg.ToEmail, err)
		return fmt.Errorf("%w: failed to execute request: %w", ErrInternal, err)
	}

	// Обработка статус-кодов
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn("SendGrid: status %d for %s: %s", resp.StatusCode, msg.ToEmail, resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, resp.Body)
	}

	c.log.Info("SendGrid: message sent to %s (subject: %s), status=%d", msg.ToEmail, msg.Subject, resp.StatusCode)
	return nil
}
