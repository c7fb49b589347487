package linked_hashmap

import "container/list"

// LinkedHashmap provides a basic linked hashmap container. It maintains insertion order
// via a linked list. This gives O(1) runtime to push a new element to the back of the list
// and O(1) to remove the first element in the list. The additional hashmap allows O(1) lookup or
// removal of any element by key.
//
// Put keeps the position of an existing key, which is what the sql clause
// accumulators rely on: re-adding a fragment never reorders a clause.
// Not threadsafe.
type LinkedHashmap[V any] struct {
	linkedList *list.List
	hashMap    map[string]*list.Element
}

func NewLinkedHashmap[V any](sizeEst int) *LinkedHashmap[V] {
	return &LinkedHashmap[V]{
		linkedList: list.New(),
		hashMap:    make(map[string]*list.Element, sizeEst),
	}
}

// We store both the key and value in the linked list so we have the key for PopFront/Back.
type kv[V any] struct {
	key   string
	value V
}

func (l *LinkedHashmap[V]) entry(elem *list.Element) *kv[V] {
	return elem.Value.(*kv[V])
}

// Returns the first value, and false if the list is empty.
func (l *LinkedHashmap[V]) Front() (V, bool) {
	head := l.linkedList.Front()
	if head == nil {
		var zero V
		return zero, false
	}
	return l.entry(head).value, true
}

// Note: Panics if remove is called with a key not in the hashmap.
func (l *LinkedHashmap[V]) Remove(key string) {
	listElem := l.hashMap[key]
	delete(l.hashMap, key)
	l.linkedList.Remove(listElem)
}

func (l *LinkedHashmap[V]) PushBack(key string, val V) {
	elem := l.linkedList.PushBack(&kv[V]{key: key, value: val})
	l.hashMap[key] = elem
}

// Put inserts key at the back, or replaces the value of an existing key in
// place.  Returns true if the key was not present before.
func (l *LinkedHashmap[V]) Put(key string, val V) bool {
	if elem, ok := l.hashMap[key]; ok {
		l.entry(elem).value = val
		return false
	}
	l.PushBack(key, val)
	return true
}

// Same as Put, but an existing key keeps its current value.
func (l *LinkedHashmap[V]) PutIfAbsent(key string, val V) bool {
	if _, ok := l.hashMap[key]; ok {
		return false
	}
	l.PushBack(key, val)
	return true
}

func (l *LinkedHashmap[V]) PopFront() (key string, val V) {
	elem := l.linkedList.Front()
	keyVal := l.entry(elem)
	l.Remove(keyVal.key)
	return keyVal.key, keyVal.value
}

func (l *LinkedHashmap[V]) Len() int {
	return len(l.hashMap)
}

// Same semantics as the golang map -- returns the element + true if the key exists
// in the map and the zero value, false otherwise.
func (l *LinkedHashmap[V]) Get(key string) (V, bool) {
	elem, ok := l.hashMap[key]
	if !ok {
		var zero V
		return zero, false
	}
	return l.entry(elem).value, true
}

// Keys returns the keys in insertion order.
func (l *LinkedHashmap[V]) Keys() []string {
	keys := make([]string, 0, l.Len())
	for e := l.linkedList.Front(); e != nil; e = e.Next() {
		keys = append(keys, l.entry(e).key)
	}
	return keys
}

// Do calls f for every entry in insertion order.  f must not mutate the map.
func (l *LinkedHashmap[V]) Do(f func(key string, val V)) {
	for e := l.linkedList.Front(); e != nil; e = e.Next() {
		keyVal := l.entry(e)
		f(keyVal.key, keyVal.value)
	}
}

// Copy returns a shallow copy which preserves insertion order.
func (l *LinkedHashmap[V]) Copy() *LinkedHashmap[V] {
	res := NewLinkedHashmap[V](l.Len())
	l.Do(res.PushBack)
	return res
}
