package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	c.Set("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(Config{DefaultTTL: time.Millisecond})
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_ClosedRejectsWrites(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	c.Close()
	c.Set("a", 1)

	_, ok := c.Get("a")
	assert.False(t, ok)
}
