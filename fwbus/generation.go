package fwbus

// GenerationTracker holds the bus generation last observed on a channel.
// Each transaction is stamped with the tracked value immediately before the
// send; a reset event updates the tracker unconditionally, whether or not a
// transaction is in flight.
type GenerationTracker struct {
	generation uint32
}

// Current returns the generation to stamp the next send with.
func (t *GenerationTracker) Current() uint32 {
	return t.generation
}

// ObserveReset records the generation announced by a bus reset event.
func (t *GenerationTracker) ObserveReset(generation uint32) {
	t.generation = generation
}
