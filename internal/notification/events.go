package notification

import "fmt"

const (
	EventClassComplete      = "class_complete"
	EventTrainingComplete   = "training_complete"
	EventStalled            = "stalled"
	EventLogError           = "log_error"
	EventInterrupted        = "interrupted"
	EventGenerationComplete = "generation_complete"
)

// Event describes one run milestone.
type Event struct {
	Kind      string
	Project   string
	RunID     string
	Completed int
	Total     int
	// Detail is the class name, error text, or stall duration.
	Detail string
}

// FormatEvent renders e as a one-line chat message.
func FormatEvent(e Event) string {
	tag := fmt.Sprintf("%s [%s]", e.Project, shortID(e.RunID))
	switch e.Kind {
	case EventClassComplete:
		return fmt.Sprintf("✅ %s finished %s (%d/%d)", tag, e.Detail, e.Completed, e.Total)
	case EventTrainingComplete:
		return fmt.Sprintf("🎉 %s training complete: %d classes. Proceed to generate", tag, e.Completed)
	case EventStalled:
		return fmt.Sprintf("⚠️ %s training appears to have stopped (last update %s ago, class %d/%d)", tag, e.Detail, e.Completed+1, e.Total)
	case EventLogError:
		return fmt.Sprintf("❌ %s training log error: %s", tag, e.Detail)
	case EventInterrupted:
		return fmt.Sprintf("⏸️ %s watch interrupted at %d/%d classes. Use --resume", tag, e.Completed, e.Total)
	case EventGenerationComplete:
		return fmt.Sprintf("🖼️ %s generation complete: %d images", tag, e.Completed)
	default:
		return fmt.Sprintf("ℹ️ %s event: %s", tag, e.Kind)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
