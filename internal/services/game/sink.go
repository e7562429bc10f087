package game

import "github.com/mcoot/stonecluster/internal/model"

// PresentationSink receives snapshots and discrete events after every
// transition. Implementations must not call back into the Machine.
type PresentationSink interface {
	Publish(event model.Event)
}

// SinkFunc adapts a function to a PresentationSink
type SinkFunc func(event model.Event)

// Publish calls f(event)
func (f SinkFunc) Publish(event model.Event) {
	f(event)
}

// NopSink discards all events
type NopSink struct{}

// Publish does nothing
func (NopSink) Publish(model.Event) {}
