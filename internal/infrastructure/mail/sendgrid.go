// Package mail sends purchase order confirmations to suppliers by email.
package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"mminv/internal/domain/reorder"
	"mminv/pkg/logger"
)

// SendGridNotifier implements reorder.Notifier by emailing each order
// summary to the supplier's address. Notification is best-effort: failures
// are logged and never retried.
type SendGridNotifier struct {
	apiKey string
	from   string
	log    *logger.Logger
}

// NewSendGridNotifier creates a notifier sending from the given address.
func NewSendGridNotifier(apiKey, from string, log *logger.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey: apiKey,
		from:   from,
		log:    log.WithComponent("mail"),
	}
}

// OrderPlaced implements reorder.Notifier.
func (n *SendGridNotifier) OrderPlaced(_ context.Context, summary reorder.OrderSummary) {
	if summary.Email == "" {
		n.log.Warnw("order has no supplier email, skipping notification",
			"supplier_id", summary.SupplierID)
		return
	}

	subject := fmt.Sprintf("Purchase order: %s", summary.SupplierName)
	body := summary.Text()

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("Min-Max Inventory", n.from),
		subject,
		sgmail.NewEmail(summary.SupplierName, summary.Email),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	resp, err := sendgrid.NewSendClient(n.apiKey).Send(message)
	if err != nil {
		n.log.Errorw("order notification failed",
			"supplier_id", summary.SupplierID,
			"to", summary.Email,
			"error", err,
		)
		return
	}
	if resp.StatusCode >= 400 {
		n.log.Errorw("order notification rejected",
			"supplier_id", summary.SupplierID,
			"to", summary.Email,
			"status", resp.StatusCode,
			"body", resp.Body,
		)
		return
	}

	n.log.Infow("order notification sent",
		"supplier_id", summary.SupplierID,
		"to", summary.Email,
		"status", resp.StatusCode,
	)
}
