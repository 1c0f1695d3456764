package notification

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/sendgrid"
)

// confirmationMessage собирает письмо о принятой брони
func confirmationMessage(res *domain.Reservation) sendgrid.Message {
	date := domain.FormatDate(res.Date)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", res.Name)
	fmt.Fprintf(&b, "your reservation #%d for %d guest(s) on %s at %s has been received.\n",
		res.ID, res.PartySize, date, res.Time)
	b.WriteString("To change or cancel it, use the email address this message was sent to.\n")

	return sendgrid.Message{
		ToEmail:   res.Email,
		ToName:    res.Name,
		Subject:   fmt.Sprintf("Reservation #%d on %s at %s", res.ID, date, res.Time),
		PlainText: b.String(),
	}
}
