package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedMap(t *testing.T) {
	m := NewOrderedMap[uint32, string]()
	m.Put(3, "c")
	m.Put(1, "a")
	m.Put(2, "b")
	assert.Equal(t, 3, m.Len())

	value, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", value)

	// iteration follows insertion order, not key order
	assert.Equal(t, []string{"c", "a", "b"}, m.Values())

	// replacing a value keeps its position
	m.Put(3, "c2")
	assert.Equal(t, []string{"c2", "a", "b"}, m.Values())
	assert.Equal(t, 3, m.Len())

	m.Delete(1)
	_, ok = m.Get(1)
	assert.False(t, ok)
	assert.Equal(t, []string{"c2", "b"}, m.Values())

	// deleting an absent key is a no-op
	m.Delete(99)
	assert.Equal(t, 2, m.Len())
}

func TestOrderedMap_Range(t *testing.T) {
	m := NewOrderedMap[uint32, int]()
	for i := 1; i <= 5; i++ {
		m.Put(uint32(i), i*10)
	}
	var keys []uint32
	m.Range(func(key uint32, value int) bool {
		keys = append(keys, key)
		return key < 3
	})
	assert.Equal(t, []uint32{1, 2, 3}, keys)
}
