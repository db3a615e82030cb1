package services

// Routing keys of the events published by the services.
const (
	EventOTPRequested    = "otp.requested"
	EventCartItemAdded   = "cart.item_added"
	EventCartItemUpdated = "cart.item_updated"
)

// EventPublisher publishes domain events. Delivery is best effort: the
// services never fail an operation because an event could not be sent.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// OTPRequestedEvent asks the delivery worker to send a code to a phone.
type OTPRequestedEvent struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// CartItemEvent describes a change to one cart line.
type CartItemEvent struct {
	CartID  string `json:"cart_id"`
	Slug    string `json:"slug"`
	Size    string `json:"size"`
	Qty     *int   `json:"qty,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

func publish(p EventPublisher, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	// The publisher logs its own failures.
	_ = p.Publish(routingKey, payload)
}
