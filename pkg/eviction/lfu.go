package eviction

import "container/list"

// lfu tracks per-key access frequencies in buckets. Each bucket is an
// insertion-ordered list of the keys at that frequency, so ties evict the
// oldest key first. minFreq always names the smallest populated bucket
// (zero when empty).
type lfu struct {
	frequencies map[string]int
	buckets     map[int]*list.List
	elements    map[string]*list.Element
	minFreq     int
}

func newLFU() *lfu {
	return &lfu{
		frequencies: make(map[string]int),
		buckets:     make(map[int]*list.List),
		elements:    make(map[string]*list.Element),
	}
}

func (l *lfu) OnAccess(key string) {
	freq, ok := l.frequencies[key]
	if !ok {
		return
	}
	l.detach(key, freq)
	next := freq + 1
	l.attach(key, next)
	if l.minFreq == freq && l.bucketEmpty(freq) {
		// The accessed key now populates freq+1 and nothing sits below it.
		l.minFreq = next
	}
}

// OnAdd starts (or restarts) the key at frequency 1.
func (l *lfu) OnAdd(key string) {
	if freq, ok := l.frequencies[key]; ok {
		l.detach(key, freq)
	}
	l.attach(key, 1)
	l.minFreq = 1
}

func (l *lfu) OnRemove(key string) {
	freq, ok := l.frequencies[key]
	if !ok {
		return
	}
	l.detach(key, freq)
	delete(l.frequencies, key)
	delete(l.elements, key)
	if freq == l.minFreq && l.bucketEmpty(freq) {
		l.recomputeMinFreq()
	}
}

func (l *lfu) EvictionCandidate() (string, bool) {
	bucket, ok := l.buckets[l.minFreq]
	if !ok || bucket.Len() == 0 {
		return "", false
	}
	return bucket.Front().Value.(string), true
}

func (l *lfu) Clear() {
	l.frequencies = make(map[string]int)
	l.buckets = make(map[int]*list.List)
	l.elements = make(map[string]*list.Element)
	l.minFreq = 0
}

func (l *lfu) Len() int {
	return len(l.frequencies)
}

func (l *lfu) attach(key string, freq int) {
	bucket, ok := l.buckets[freq]
	if !ok {
		bucket = list.New()
		l.buckets[freq] = bucket
	}
	l.elements[key] = bucket.PushBack(key)
	l.frequencies[key] = freq
}

func (l *lfu) detach(key string, freq int) {
	if bucket, ok := l.buckets[freq]; ok {
		if el, ok := l.elements[key]; ok {
			bucket.Remove(el)
		}
		if bucket.Len() == 0 {
			delete(l.buckets, freq)
		}
	}
}

func (l *lfu) bucketEmpty(freq int) bool {
	bucket, ok := l.buckets[freq]
	return !ok || bucket.Len() == 0
}

func (l *lfu) recomputeMinFreq() {
	if len(l.frequencies) == 0 {
		l.minFreq = 0
		return
	}
	min := 0
	for freq := range l.buckets {
		if min == 0 || freq < min {
			min = freq
		}
	}
	l.minFreq = min
}
