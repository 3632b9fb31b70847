// Package events fans domain events out from the business store and payment
// sessions to their listeners (the notification log, mostly).
package events

import (
	"github.com/asaskevich/EventBus"
)

const (
	TopicBusinessCreated       = "business.created"
	TopicBusinessUpdated       = "business.updated"
	TopicBusinessStatusChanged = "business.status_changed"
	TopicBusinessDeleted       = "business.deleted"
	TopicBusinessRestored      = "business.restored"
	TopicBusinessPurged        = "business.purged"
	TopicPaymentSucceeded      = "payment.succeeded"
	TopicPaymentFailed         = "payment.failed"
)

type Event interface{ Type() string }

type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Bus is a thin wrapper so callers depend on our topics instead of the
// library's untyped API.
type Bus struct {
	bus EventBus.Bus
}

var _ Publisher = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Publish delivers synchronously to every subscriber of topic.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}

// Emit publishes e on its own topic.
func Emit(p Publisher, e Event) {
	if p == nil {
		return
	}
	p.Publish(e.Type(), e)
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(string, ...interface{}) {}
