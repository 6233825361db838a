package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{width: 800, height: 600, cursorCaptured: true}
	for _, opt := range []WindowBuilderOption{
		WithTitle("salon"),
		WithSize(1024, 0),
		WithSizeLimits(320, 240, DontCare, DontCare),
		WithCursorCaptured(false),
	} {
		opt(w)
	}

	assert.Equal(t, "salon", w.title)
	assert.Equal(t, 1024, w.width)
	assert.Equal(t, 600, w.height)
	assert.Equal(t, [4]int{320, 240, DontCare, DontCare}, [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
	assert.False(t, w.cursorCaptured)
}

func TestResizedUpdatesSizeAndForwards(t *testing.T) {
	w := &engineWindow{input: newInputState()}
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.resized(0, 0)
	assert.Equal(t, 0, w.Width())

	w.resized(1280, 720)
	assert.Equal(t, [2]int{1280, 720}, got)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
}

func TestUnopenedWindow(t *testing.T) {
	w := &engineWindow{input: newInputState()}
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	assert.NotPanics(t, func() {
		w.RequestClose()
		w.SetCursorCaptured(false)
		w.ProcessMessages()
	})
}
