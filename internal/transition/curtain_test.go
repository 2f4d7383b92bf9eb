package transition

import (
	"testing"
	"time"

	"github.com/nightdrive/showcase/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestFadeOut_RunsCallbackInTheDark(t *testing.T) {
	clk := clock.NewManual()
	c := New(clk)
	c.opacity = 0
	called := false

	c.FadeOut(func() { called = true })
	assert.Equal(t, 1.0, c.Opacity())

	clk.Advance(999 * time.Millisecond)
	assert.Zero(t, c.Update())
	assert.False(t, called)

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, c.Update())
	assert.True(t, called)
	assert.Zero(t, c.Pending())
}

func TestFadeIn(t *testing.T) {
	clk := clock.NewManual()
	c := New(clk)

	c.FadeIn()
	c.Update()
	assert.Equal(t, 1.0, c.Opacity())

	clk.Advance(100 * time.Millisecond)
	c.Update()
	assert.Equal(t, 0.0, c.Opacity())
}

func TestTriggerAndFinishLoading(t *testing.T) {
	clk := clock.NewManual()
	c := New(clk)
	c.opacity = 0

	var loaded bool
	c.Trigger(func() {
		loaded = true
		c.FinishLoading()
	})
	assert.Equal(t, 1.0, c.Opacity())

	clk.Advance(600 * time.Millisecond)
	c.Update()
	assert.True(t, loaded)
	assert.Equal(t, 1.0, c.Opacity(), "stays dark while loading")

	clk.Advance(500 * time.Millisecond)
	c.Update()
	assert.Equal(t, 0.0, c.Opacity())
}

func TestUpdate_RunsInOrder(t *testing.T) {
	clk := clock.NewManual()
	c := New(clk)
	var order []string

	c.After(300*time.Millisecond, func() { order = append(order, "c") })
	c.After(100*time.Millisecond, func() { order = append(order, "a") })
	c.After(100*time.Millisecond, func() { order = append(order, "b") })
	c.After(0, func() {
		order = append(order, "now")
		c.After(0, func() { order = append(order, "chained") })
	})

	clk.Advance(time.Second)
	assert.Equal(t, 5, c.Update())
	assert.Equal(t, []string{"now", "a", "b", "c", "chained"}, order)
}

func TestCancel(t *testing.T) {
	clk := clock.NewManual()
	c := New(clk)
	c.FadeOut(func() { t.Fatal("cancelled callback ran") })
	c.Cancel()

	clk.Advance(2 * time.Second)
	assert.Zero(t, c.Update())
	assert.Equal(t, 1.0, c.Opacity())
}
