package eviction

import "container/list"

// lru keeps keys in strict access order. The front of the list is the least
// recently used key; accesses move keys to the back.
type lru struct {
	order    *list.List
	elements map[string]*list.Element
}

func newLRU() *lru {
	return &lru{
		order:    list.New(),
		elements: make(map[string]*list.Element),
	}
}

func (l *lru) OnAccess(key string) {
	if el, ok := l.elements[key]; ok {
		l.order.MoveToBack(el)
	}
}

// OnAdd inserts at the tail. Re-adding a tracked key refreshes its
// position; a value replacement counts as a use.
func (l *lru) OnAdd(key string) {
	if el, ok := l.elements[key]; ok {
		l.order.MoveToBack(el)
		return
	}
	l.elements[key] = l.order.PushBack(key)
}

func (l *lru) OnRemove(key string) {
	if el, ok := l.elements[key]; ok {
		l.order.Remove(el)
		delete(l.elements, key)
	}
}

func (l *lru) EvictionCandidate() (string, bool) {
	front := l.order.Front()
	if front == nil {
		return "", false
	}
	return front.Value.(string), true
}

func (l *lru) Clear() {
	l.order.Init()
	l.elements = make(map[string]*list.Element)
}

func (l *lru) Len() int {
	return len(l.elements)
}
