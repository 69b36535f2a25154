package clock

import (
	"testing"
	"time"

	"ticket-ledger/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSlotClock(t *testing.T) {
	t.Run("height counts whole slots since genesis", func(t *testing.T) {
		genesis := time.Now().Add(-10 * time.Second)
		clk := NewSlot(genesis, time.Second)

		h := clk.Height()
		assert.GreaterOrEqual(t, h, model.Height(10))
		assert.Less(t, h, model.Height(13))
	})

	t.Run("before genesis clamps to zero", func(t *testing.T) {
		clk := NewSlot(time.Now().Add(time.Hour), time.Second)
		assert.Equal(t, model.Height(0), clk.Height())
	})
}

func TestManual(t *testing.T) {
	clk := NewManual(100)
	assert.Equal(t, model.Height(100), clk.Height())

	clk.Advance(5)
	assert.Equal(t, model.Height(105), clk.Height())

	clk.Set(1)
	assert.Equal(t, model.Height(1), clk.Height())
}
