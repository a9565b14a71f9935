package sensor

import (
	"github.com/godbus/dbus/v5"
)

// NotifyUnavailable best-effort pushes a desktop notification when the
// sensor cannot reach the input layer. Failure to reach a session bus
// is swallowed: this must never block or retry the caller's
// retry-free failure path.
func NotifyUnavailable(summary, body string) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return
	}
	obj := conn.Object("org.freedesktop.Notifications", dbus.ObjectPath("/org/freedesktop/Notifications"))
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"pohwd", uint32(0), "", summary, body, []string{}, map[string]dbus.Variant{}, int32(8000))
	_ = call.Err
}
