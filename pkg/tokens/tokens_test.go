package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	counter, err := NewCounter("gpt-4o")
	require.NoError(t, err)

	assert.Zero(t, counter.Count(""))
	assert.Positive(t, counter.Count("hello world"))

	// Longer text gets more tokens.
	short := counter.Count("one two three")
	long := counter.Count("one two three four five six seven eight nine ten")
	assert.Greater(t, long, short)
}

func TestNilCounterFallsBack(t *testing.T) {
	var c *Counter
	assert.Equal(t, 3, c.Count("twelve chars"))
}

func TestEstimate(t *testing.T) {
	// Reported usage stays as-is.
	p, c := Estimate(100, 200, "prompt", "completion")
	assert.Equal(t, 100, p)
	assert.Equal(t, 200, c)

	// Zero usage is estimated from text.
	p, c = Estimate(0, 0, "some prompt text here", "a completion")
	assert.Positive(t, p)
	assert.Positive(t, c)

	// Empty text stays zero.
	p, c = Estimate(0, 0, "", "")
	assert.Zero(t, p)
	assert.Zero(t, c)
}
