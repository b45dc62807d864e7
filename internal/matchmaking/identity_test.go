package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnRegistryAddRemove(t *testing.T) {
	reg := NewConnRegistry()
	c1 := newFakeConn()
	c2 := newFakeConn()

	reg.Add("u1", c1)
	reg.Add("u1", c2)

	assert.True(t, reg.Alive("u1"))
	assert.Len(t, reg.Handles("u1"), 2)

	reg.Remove("u1", c1)
	assert.True(t, reg.Alive("u1"))
	assert.Len(t, reg.Handles("u1"), 1)

	// Removing the last handle removes the mapping entry entirely.
	reg.Remove("u1", c2)
	assert.False(t, reg.Alive("u1"))
	assert.Nil(t, reg.Handles("u1"))
}

func TestConnRegistryEmptyUserID(t *testing.T) {
	reg := NewConnRegistry()
	reg.Add("", newFakeConn())

	assert.False(t, reg.Alive(""))
	assert.Nil(t, reg.Handles(""))
}

func TestConnRegistryDefensiveNoOps(t *testing.T) {
	reg := NewConnRegistry()

	// Unknown users and handles must not panic or create entries.
	reg.Remove("missing", newFakeConn())
	assert.Nil(t, reg.Handles("missing"))

	c := newFakeConn()
	reg.Add("u1", c)
	reg.Remove("u1", newFakeConn())
	assert.Len(t, reg.Handles("u1"), 1)
}
