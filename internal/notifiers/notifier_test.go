package notifiers

// Compile-time checks that all notifier types implement the Notifier interface.
var (
	_ Notifier = (*Line)(nil)
)
