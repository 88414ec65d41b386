// Package notify posts desktop notifications for playback outcomes.
package notify

import "time"

// Urgency is the freedesktop urgency level.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification categories. Servers may group or style by category.
const (
	CategoryFinished = "x-vbplay.finished"
	CategoryFailed   = "x-vbplay.failed"
)

// Notification is one desktop notification.
type Notification struct {
	Summary  string
	Body     string
	Image    string // image file shown with the notification
	Icon     string // themed icon name
	Category string
	Urgency  Urgency

	// Expire is how long the server keeps the notification. Zero lets the
	// server decide; a negative value keeps it until dismissed.
	Expire time.Duration

	// ReplacesID is the ID of a notification to update in place.
	ReplacesID uint32
}

// expireMillis converts Expire to the wire value: -1 for the server
// default, 0 for never.
func (n Notification) expireMillis() int32 {
	switch {
	case n.Expire == 0:
		return -1
	case n.Expire < 0:
		return 0
	}
	return int32(min(n.Expire.Milliseconds(), int64(^uint32(0)>>1)))
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify posts n and returns its server ID, or 0 when notifications
	// are unavailable.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notification) (uint32, error) { return 0, nil }

func (discard) Close(uint32) error { return nil }
