package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat_DecorateText(t *testing.T) {
	s := DecorateText("done", SuccessMessage)
	assert.True(t, strings.HasPrefix(s, SuccessColor))
	assert.True(t, strings.HasSuffix(s, DefaultColor))
	assert.Equal(t, "plain", DecorateText("plain", MessageType(42)))
}

func TestFormat_FormatTime(t *testing.T) {
	assert.Equal(t, "1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal(t, "2m 5.00s", FormatTime(125*time.Second))
	assert.Equal(t, "1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
}

func TestFormat_FormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(-5))
	assert.Equal(t, "1.1 kB", FormatSize(1088))
}

func TestMath_Generics(t *testing.T) {
	assert.Equal(t, 2, Min(2, 5))
	assert.Equal(t, 2, Min(5, 2))
	assert.Equal(t, 5, Max(2, 5))
	assert.Equal(t, 3.5, Abs(-3.5))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, 0, Clamp(-1, 0, 10))
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]int{1, 2}, 3))
}
