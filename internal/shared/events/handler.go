package events

// Handler consumes events from the bus.
type Handler interface {
	// Handles lists the event types the handler subscribes to.
	Handles() []string

	// Handle processes one event. The bus may redeliver after a
	// crash, so handling must be idempotent.
	Handle(event Event) error
}

// HandlerFunc adapts a plain function into a Handler for a fixed set
// of event types.
type HandlerFunc struct {
	eventTypes []string
	fn         func(Event) error
}

// NewHandlerFunc wraps fn as a handler for the given event types.
func NewHandlerFunc(eventTypes []string, fn func(Event) error) *HandlerFunc {
	return &HandlerFunc{eventTypes: eventTypes, fn: fn}
}

func (h *HandlerFunc) Handles() []string {
	return h.eventTypes
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.fn(event)
}
