package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	c, err := New[int](100, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	c.Set("a", 7)
	c.Wait()
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestMissingKey(t *testing.T) {
	c, err := New[string](0, 0)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}
