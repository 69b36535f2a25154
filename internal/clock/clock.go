package clock

import (
	"sync/atomic"
	"time"

	"ticket-ledger/internal/model"
)

// Clock supplies the current logical height to services.
type Clock interface {
	Height() model.Height
}

type slotClock struct {
	genesis time.Time
	slot    time.Duration
}

// NewSlot returns a clock whose height is the number of whole slots elapsed
// since genesis. Height is monotonic as long as wall time is.
func NewSlot(genesis time.Time, slot time.Duration) Clock {
	if slot <= 0 {
		slot = time.Second
	}
	return slotClock{genesis: genesis, slot: slot}
}

func (c slotClock) Height() model.Height {
	elapsed := time.Since(c.genesis)
	if elapsed < 0 {
		return 0
	}
	return model.Height(elapsed / c.slot)
}

// Manual is a hand-advanced clock for tests.
type Manual struct {
	height atomic.Uint64
}

func NewManual(start model.Height) *Manual {
	m := &Manual{}
	m.height.Store(uint64(start))
	return m
}

func (m *Manual) Height() model.Height {
	return model.Height(m.height.Load())
}

func (m *Manual) Set(h model.Height) {
	m.height.Store(uint64(h))
}

func (m *Manual) Advance(delta model.Height) {
	m.height.Add(uint64(delta))
}
