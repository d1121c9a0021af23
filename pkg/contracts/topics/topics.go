package topics

const (
	// Status de eventos (line-provider -> bet-maker)
	EventStatusUpdates = "event_status_updates"

	// DLQs
	EventStatusUpdatesDLQ = "event_status_updates_dlq"
)
