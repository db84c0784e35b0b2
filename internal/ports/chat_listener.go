package ports

// ChatListener receives chat events from a platform and feeds them to the
// moderation service and the command handler
type ChatListener interface {
	// Start begins receiving events
	Start() error

	// Stop stops receiving events and waits for in-flight messages
	Stop() error
}
