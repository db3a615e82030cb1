// Package workers holds the consumers of store events.
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"dropzone/internal/services"

	"github.com/streadway/amqp"
)

// OTPDeliveryQueue is the queue bound to services.EventOTPRequested.
const OTPDeliveryQueue = "otp_delivery"

// SMSSender delivers a text message to a phone.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) error
}

// LogSender writes messages to the log instead of sending them. Real SMS
// delivery is not wired up.
type LogSender struct {
	Log *slog.Logger
}

// Send logs the message.
func (s LogSender) Send(_ context.Context, phone, body string) error {
	s.Log.Info("sms (demo, not sent)", "phone", phone, "body", body)
	return nil
}

// OTPDelivery consumes otp.requested events and hands the code to an
// SMSSender.
type OTPDelivery struct {
	sender SMSSender
	log    *slog.Logger
}

// NewOTPDelivery creates the consumer.
func NewOTPDelivery(sender SMSSender, log *slog.Logger) *OTPDelivery {
	return &OTPDelivery{sender: sender, log: log}
}

// Handle processes one delivery. A returned error makes the client nack
// the message.
func (w *OTPDelivery) Handle(msg amqp.Delivery) error {
	var evt services.OTPRequestedEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", services.EventOTPRequested, err)
	}
	if evt.Phone == "" || evt.Code == "" {
		return errors.New("otp event without phone or code")
	}

	body := fmt.Sprintf("Your Drop Zone code is %s", evt.Code)
	if err := w.sender.Send(context.Background(), evt.Phone, body); err != nil {
		return fmt.Errorf("send otp to %s: %w", evt.Phone, err)
	}
	w.log.Debug("otp delivered", "phone", evt.Phone, "delivery_tag", msg.DeliveryTag)
	return nil
}
