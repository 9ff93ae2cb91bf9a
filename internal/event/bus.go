package event

// Bus fans simulation events out to in-process subscribers.
// Dispatch is synchronous and in subscription order, which keeps the
// tick deterministic; subscribers must not block.
type Bus struct {
	subs []func(any)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener for all events. Listeners type-switch
// on the concrete event structs they care about.
// Not safe to call concurrently with Publish; wire subscribers up at
// composition time before the simulation starts.
func (b *Bus) Subscribe(fn func(any)) {
	b.subs = append(b.subs, fn)
}

// Publish delivers ev to every subscriber in order.
func (b *Bus) Publish(ev any) {
	for _, fn := range b.subs {
		fn(ev)
	}
}
