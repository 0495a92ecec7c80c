package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers end-of-run notices. Commands depend only on
// this so tests can capture notifications instead of spawning processes.
type NotificationSender interface {
	SendNotification(title, message string)
	SendSuccess(title, message string)
	SendError(title, message string)
}

// Notifier sends desktop notifications for run completion and failures.
// Delivery is best-effort: a missing notification tool never fails a run.
type Notifier struct {
	goos    string
	desktop bool
}

// NewNotifier creates a notifier for the current platform. With desktop
// false it only echoes to the console.
func NewNotifier(desktop bool) *Notifier {
	return &Notifier{goos: runtime.GOOS, desktop: desktop}
}

// command builds the platform notification command, or nil when the
// platform has no supported mechanism
func (n *Notifier) command(title, message string) *exec.Cmd {
	switch n.goos {
	case "linux":
		return exec.Command("notify-send", title, message)
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		return exec.Command("osascript", "-e", script)
	case "windows":
		script := fmt.Sprintf(`
			[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
			[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
			$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
			$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
			$doc.LoadXml($xml)
			$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
			[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igharvest").Show($toast)
		`, title, message)
		return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	default:
		return nil
	}
}

// send delivers the desktop notification, ignoring failures
func (n *Notifier) send(title, message string) {
	if !n.desktop {
		return
	}
	if cmd := n.command(title, message); cmd != nil {
		_ = cmd.Run()
	}
}

// SendNotification sends a desktop notification and prints to console
func (n *Notifier) SendNotification(title, message string) {
	if !quietMode {
		fmt.Printf("\n%s: %s\n", Cyan(title), Yellow(message))
	}
	n.send(title, message)
}

// SendError sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Printf("\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	if !quietMode {
		fmt.Printf("\n%s: %s\n", Green(title), Green(message))
	}
	n.send(title, message)
}
