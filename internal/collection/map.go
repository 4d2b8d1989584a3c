package collection

import "container/list"

// OrderedMap is an id-indexed collection that iterates in insertion order.
// Not safe for concurrent use; the owner synchronizes access.
type OrderedMap[K comparable, V any] struct {
	index map[K]*list.Element
	order *list.List
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{index: make(map[K]*list.Element), order: list.New()}
}

func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	if element, ok := m.index[k]; ok {
		return element.Value.(entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts k at the back of the iteration order; re-putting an existing
// key replaces the value but keeps its original position.
func (m *OrderedMap[K, V]) Put(k K, v V) {
	if element, ok := m.index[k]; ok {
		element.Value = entry[K, V]{key: k, value: v}
		return
	}
	m.index[k] = m.order.PushBack(entry[K, V]{key: k, value: v})
}

func (m *OrderedMap[K, V]) Delete(k K) {
	if element, ok := m.index[k]; ok {
		m.order.Remove(element)
		delete(m.index, k)
	}
}

// Range iterates in insertion order until f returns false.
func (m *OrderedMap[K, V]) Range(f func(key K, value V) bool) {
	for element := m.order.Front(); element != nil; element = element.Next() {
		item := element.Value.(entry[K, V])
		if !f(item.key, item.value) {
			return
		}
	}
}

// Values snapshots the values in insertion order.
func (m *OrderedMap[K, V]) Values() []V {
	values := make([]V, 0, m.order.Len())
	for element := m.order.Front(); element != nil; element = element.Next() {
		values = append(values, element.Value.(entry[K, V]).value)
	}
	return values
}

func (m *OrderedMap[K, V]) Len() int {
	return len(m.index)
}
