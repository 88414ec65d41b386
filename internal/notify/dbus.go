//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = "/org/freedesktop/Notifications"
	busIface  = "org.freedesktop.Notifications"
	appName   = "vbplay"
	appEntry  = "vbplay"
	hintImage = "image-path"
)

type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without one it returns Discard and no
// error, so callers never need a second code path.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Discard, nil //nolint:nilerr // notifications are optional
	}
	return &busNotifier{obj: conn.Object(busName, busPath)}, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	call := b.obj.Call(busIface+".Notify", 0,
		appName,
		n.ReplacesID,
		n.Icon,
		n.Summary,
		n.Body,
		[]string{},
		hints(n),
		n.expireMillis(),
	)
	if call.Err != nil {
		return 0, call.Err
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Close(id uint32) error {
	return b.obj.Call(busIface+".CloseNotification", 0, id).Err
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appEntry),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	if n.Image != "" {
		h[hintImage] = dbus.MakeVariant(n.Image)
	}
	return h
}
