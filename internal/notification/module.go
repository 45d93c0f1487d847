// Package notification turns domain events into outbox records and
// delivers claimed records by email. Domain modules publish events and
// never know about templates or SMTP.
package notification

import (
	"context"
	"fmt"
	"time"

	"estate_sales_backend/internal/email"
	"estate_sales_backend/internal/events"
	"estate_sales_backend/internal/notification/outbox"
	"estate_sales_backend/platform/config"
	"estate_sales_backend/platform/logger"
)

const (
	maxDeliveryAttempts = 5
	retryBaseDelay      = time.Minute
)

// Module handles all notification-related event subscriptions.
type Module struct {
	outbox *outbox.Repository
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates a new notification module.
func New(outboxRepo *outbox.Repository, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{outbox: outboxRepo, sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.EventClientAccountCreated, m)
	bus.Subscribe(events.EventPurchaseApplicationSubmitted, m)
	bus.Subscribe(events.EventSaleApproved, m)
	bus.Subscribe(events.EventPaymentReceived, m)
	bus.Subscribe(events.EventPaymentCompleted, m)
	bus.Subscribe(events.EventPaymentReversed, m)
	bus.Subscribe(events.EventPaymentPlanDue, m)
	bus.Subscribe(events.EventNotificationOutboxDue, m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.ClientAccountCreated:
		return m.handleClientAccountCreated(ctx, e)
	case *events.PurchaseApplicationSubmitted:
		return m.handlePurchaseApplicationSubmitted(ctx, e)
	case *events.SaleApproved:
		return m.handleSaleApproved(ctx, e)
	case *events.PaymentReceived:
		return m.handlePaymentReceived(ctx, e)
	case *events.PaymentCompleted:
		return m.handlePaymentCompleted(ctx, e)
	case *events.PaymentReversed:
		return m.handlePaymentReversed(ctx, e)
	case *events.PaymentPlanDue:
		return m.handlePaymentPlanDue(ctx, e)
	case *events.NotificationOutboxDue:
		return m.handleOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) enqueue(ctx context.Context, category, name, emailAddr, phone, subject, body string) error {
	if emailAddr == "" && phone == "" {
		m.log.Debug("notification skipped, recipient has no contact", "category", category)
		return nil
	}

	id, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Category:       category,
		RecipientName:  name,
		RecipientEmail: emailAddr,
		RecipientPhone: phone,
		Subject:        subject,
		Body:           body,
		Channels:       m.cfg.GetDefaultChannels(),
	})
	if err != nil {
		return err
	}
	m.log.Info("notification enqueued", "outbox_id", id.String(), "category", category)
	return nil
}

func (m *Module) handleClientAccountCreated(ctx context.Context, e *events.ClientAccountCreated) error {
	body, err := renderBody("Welcome", e.ClientName,
		"A client account has been created for you as part of your property purchase.",
		"You can sign in with your registered email address using the initial password shared by your agent. Please change it after your first sign-in.")
	if err != nil {
		return err
	}
	return m.enqueue(ctx, categoryAccountCreated, e.ClientName, e.ClientEmail, e.ClientPhone, subjectAccountCreated, body)
}

func (m *Module) handlePurchaseApplicationSubmitted(ctx context.Context, e *events.PurchaseApplicationSubmitted) error {
	body, err := renderBody("Application received", e.ClientName,
		fmt.Sprintf("We received your purchase application <strong>%s</strong>.", escape(e.SaleCode)),
		fmt.Sprintf("The total payable on this purchase is <strong>%s</strong>. Our team will review the application and contact you shortly.", formatAmount(e.TotalPayable)))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectApplicationSubmittedFmt, e.SaleCode)
	return m.enqueue(ctx, categoryApplicationSubmitted, e.ClientName, e.ClientEmail, e.ClientPhone, subject, body)
}

func (m *Module) handleSaleApproved(ctx context.Context, e *events.SaleApproved) error {
	body, err := renderBody("Purchase approved", e.ClientName,
		fmt.Sprintf("Your purchase application <strong>%s</strong> has been approved.", escape(e.SaleCode)),
		"You will receive payment details and your schedule from your agent.")
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectSaleApprovedFmt, e.SaleCode)
	return m.enqueue(ctx, categorySaleApproved, e.ClientName, e.ClientEmail, e.ClientPhone, subject, body)
}

func (m *Module) handlePaymentReceived(ctx context.Context, e *events.PaymentReceived) error {
	body, err := renderBody("Payment received", e.ClientName,
		fmt.Sprintf("We received your payment of <strong>%s</strong> on purchase <strong>%s</strong>.", formatAmount(e.Amount), escape(e.SaleCode)),
		fmt.Sprintf("Total paid so far: <strong>%s</strong> of <strong>%s</strong>.", formatAmount(e.PaidAmount), formatAmount(e.TotalPayable)))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectPaymentReceivedFmt, e.SaleCode)
	return m.enqueue(ctx, categoryPaymentReceived, e.ClientName, e.ClientEmail, e.ClientPhone, subject, body)
}

func (m *Module) handlePaymentCompleted(ctx context.Context, e *events.PaymentCompleted) error {
	body, err := renderBody("Purchase settled", e.ClientName,
		fmt.Sprintf("Your purchase <strong>%s</strong> is now fully paid. Congratulations!", escape(e.SaleCode)),
		fmt.Sprintf("Total settled: <strong>%s</strong>. Our team will contact you about the handover and documentation.", formatAmount(e.TotalPayable)))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectPaymentCompletedFmt, e.SaleCode)
	return m.enqueue(ctx, categoryPaymentCompleted, e.ClientName, e.ClientEmail, e.ClientPhone, subject, body)
}

func (m *Module) handlePaymentReversed(ctx context.Context, e *events.PaymentReversed) error {
	body, err := renderBody("Payment reversed", e.ClientName,
		fmt.Sprintf("A payment of <strong>%s</strong> on purchase <strong>%s</strong> has been reversed.", formatAmount(e.Amount), escape(e.SaleCode)),
		fmt.Sprintf("Your outstanding balance has been updated; total paid is now <strong>%s</strong>. Contact your agent if this is unexpected.", formatAmount(e.PaidAmount)))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectPaymentReversedFmt, e.SaleCode)
	return m.enqueue(ctx, categoryPaymentReversed, e.ClientName, e.ClientEmail, e.ClientPhone, subject, body)
}

func (m *Module) handlePaymentPlanDue(ctx context.Context, e *events.PaymentPlanDue) error {
	body, err := renderBody("Installment due", e.ClientName,
		fmt.Sprintf("Your installment of <strong>%s</strong> on purchase <strong>%s</strong> was due on %s.", formatAmount(e.Amount), escape(e.SaleCode), escape(e.DueDateISO)),
		"Please make the payment at your earliest convenience to stay on schedule.")
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectPaymentPlanDueFmt, e.SaleCode)
	return m.enqueue(ctx, categoryPaymentPlanDue, e.ClientName, e.ClientEmail, e.ClientPhone, subject, body)
}

// handleOutboxDue delivers one claimed outbox record. Transient failures
// are retried with a linear backoff until maxDeliveryAttempts.
func (m *Module) handleOutboxDue(ctx context.Context, e *events.NotificationOutboxDue) error {
	rec, err := m.outbox.GetByID(ctx, e.OutboxID)
	if err != nil {
		return err
	}
	if rec.Status != outbox.StatusEnqueued {
		m.log.Debug("outbox record not in enqueued state, skipping", "outbox_id", rec.ID.String(), "status", string(rec.Status))
		return nil
	}
	if rec.RecipientEmail == "" {
		return m.outbox.MarkFailed(ctx, rec.ID, "recipient has no email address")
	}

	if err := m.outbox.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	if err := m.sender.Send(ctx, rec.RecipientName, rec.RecipientEmail, rec.Subject, rec.Body); err != nil {
		attempts := rec.Attempts + 1
		if attempts >= maxDeliveryAttempts {
			m.log.Error("notification delivery failed permanently",
				"outbox_id", rec.ID.String(), "category", rec.Category, "attempts", attempts, "error", err)
			return m.outbox.MarkFailed(ctx, rec.ID, err.Error())
		}
		retryAt := time.Now().UTC().Add(time.Duration(attempts) * retryBaseDelay)
		m.log.Warn("notification delivery failed, will retry",
			"outbox_id", rec.ID.String(), "category", rec.Category, "attempts", attempts, "retry_at", retryAt)
		return m.outbox.MarkPending(ctx, rec.ID, err.Error(), retryAt)
	}

	m.log.Info("notification delivered", "outbox_id", rec.ID.String(), "category", rec.Category, "to", rec.RecipientEmail)
	return m.outbox.MarkSucceeded(ctx, rec.ID)
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// Compile-time check that Module is an event handler.
var _ events.Handler = (*Module)(nil)
