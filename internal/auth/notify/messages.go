package notify

import "fmt"

// LoginCodeMessage is the second-factor message. Markdown formatted for the
// Telegram transport.
func LoginCodeMessage(code string) string {
	return fmt.Sprintf("🔐 *MotriLog Login*\n\nYour verification code is: `%s`\n\n(Valid for 5 minutes)", code)
}

// SuspensionMessage is sent when an administrator bans an account.
func SuspensionMessage() string {
	return "⛔ *Account Suspended*\n\nYour MotriLog account has been suspended by an administrator.\nYou will no longer be able to log in."
}

// TestAlertMessage confirms a freshly linked handle works.
func TestAlertMessage() string {
	return "✅ *MotriLog Test Alert*\n\nNotifications are set up correctly."
}
