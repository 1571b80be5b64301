package ports

// Notifier delivers user-facing notifications, such as compile errors during watch mode.
//
//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type Notifier interface {
	// Notify shows a notification with the given title and message.
	Notify(title, message string) error
}
