package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	w, h := c.Pixels()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)

	c.Set(0, 0)
	c.Set(1, 3)
	assert.Equal(t, rune(0x2800|0x1|0x80), c.Grid[0][0])
	assert.True(t, c.IsSet(1, 3))
	assert.False(t, c.IsSet(2, 0))

	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	assert.Equal(t, string([]rune{0x2800, 0x2800})+"\n", c.String())
}

func TestCanvasColors(t *testing.T) {
	c := NewCanvas(3, 1)
	c.SetColor(0, 0, "#ff0000")
	c.SetColor(1, 1, "#00ff00")
	c.Set(4, 0)

	assert.Equal(t, "#00ff00", c.Colors[0][0], "last color wins")
	assert.Equal(t, "", c.Colors[0][2])
	assert.Equal(t, 1, strings.Count(c.String(), "\n"))
	assert.Contains(t, c.Render(), string(c.Grid[0][2]))
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11, "")
	assert.True(t, c.IsSet(0, 0))
	assert.True(t, c.IsSet(19, 11))

	c.Clear()
	c.DrawLine(3, 5, 3, 5, "")
	assert.True(t, c.IsSet(3, 5))
}

func TestFillDisc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillDisc(10, 10, 0, "")
	assert.True(t, c.IsSet(10, 10))
	assert.False(t, c.IsSet(11, 10))

	c.Clear()
	c.FillDisc(10, 10, 3, "#ffffff")
	assert.True(t, c.IsSet(13, 10))
	assert.True(t, c.IsSet(10, 7))
	assert.False(t, c.IsSet(13, 13))
}
