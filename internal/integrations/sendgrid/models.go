package sendgrid

import "time"

// Config настройки клиента SendGrid
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	Host      string        // пустая строка означает https://api.sendgrid.com
	Timeout   time.Duration // таймаут одной отправки
}

// Message письмо одному получателю
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}
