package eviction

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		policyType PolicyType
		wantErr    bool
	}{
		{policyType: LRU},
		{policyType: LFU},
		{policyType: FIFO},
		{policyType: None},
		{policyType: ""},
		{policyType: "weighted", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.policyType), func(t *testing.T) {
			p, err := New(tt.policyType)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q) expected error", tt.policyType)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) unexpected error: %v", tt.policyType, err)
			}
			if p == nil {
				t.Fatalf("New(%q) returned nil policy", tt.policyType)
			}
		})
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"LRU", " lfu ", "Fifo", "none", ""} {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := Parse("arc"); err == nil {
		t.Error("Parse(arc) expected error")
	}
}

func candidate(t *testing.T, p Policy) string {
	t.Helper()
	key, ok := p.EvictionCandidate()
	if !ok {
		t.Fatal("expected an eviction candidate")
	}
	return key
}

func TestLRUOrder(t *testing.T) {
	p := newLRU()
	p.OnAdd("a")
	p.OnAdd("b")
	p.OnAdd("c")

	if got := candidate(t, p); got != "a" {
		t.Errorf("expected oldest key a, got %s", got)
	}

	// Accessing a makes b the least recently used.
	p.OnAccess("a")
	if got := candidate(t, p); got != "b" {
		t.Errorf("expected b after access to a, got %s", got)
	}

	// Re-adding b (a value replacement) refreshes its position.
	p.OnAdd("b")
	if got := candidate(t, p); got != "c" {
		t.Errorf("expected c after re-adding b, got %s", got)
	}

	p.OnRemove("c")
	if got := candidate(t, p); got != "a" {
		t.Errorf("expected a after removing c, got %s", got)
	}

	if p.Len() != 2 {
		t.Errorf("expected 2 tracked keys, got %d", p.Len())
	}
}

func TestLRUAccessUnknownKey(t *testing.T) {
	p := newLRU()
	p.OnAccess("ghost")
	if _, ok := p.EvictionCandidate(); ok {
		t.Error("empty policy should have no candidate")
	}
}

func TestLFUEvictsLowestFrequency(t *testing.T) {
	p := newLFU()
	p.OnAdd("a")
	p.OnAdd("b")
	p.OnAdd("c")

	p.OnAccess("a")
	p.OnAccess("a")
	p.OnAccess("b")

	// c has frequency 1 and is the only key in the minimum bucket.
	if got := candidate(t, p); got != "c" {
		t.Errorf("expected c, got %s", got)
	}
}

func TestLFUTiesBrokenByInsertionOrder(t *testing.T) {
	p := newLFU()
	p.OnAdd("first")
	p.OnAdd("second")

	if got := candidate(t, p); got != "first" {
		t.Errorf("expected oldest of tied keys, got %s", got)
	}
}

func TestLFUMinFrequencyAdvances(t *testing.T) {
	p := newLFU()
	p.OnAdd("a")
	p.OnAccess("a") // a alone at freq 2; min bucket 1 emptied

	if p.minFreq != 2 {
		t.Errorf("expected minFreq 2, got %d", p.minFreq)
	}
	if got := candidate(t, p); got != "a" {
		t.Errorf("expected a, got %s", got)
	}
}

func TestLFUMinFrequencyRecomputedOnRemove(t *testing.T) {
	p := newLFU()
	p.OnAdd("hot")
	p.OnAccess("hot")
	p.OnAccess("hot") // freq 3
	p.OnAdd("cold")   // freq 1, minFreq 1

	p.OnRemove("cold")
	if p.minFreq != 3 {
		t.Errorf("expected minFreq recomputed to 3, got %d", p.minFreq)
	}

	p.OnRemove("hot")
	if p.minFreq != 0 {
		t.Errorf("expected minFreq 0 for empty policy, got %d", p.minFreq)
	}
	if _, ok := p.EvictionCandidate(); ok {
		t.Error("empty policy should have no candidate")
	}
}

func TestLFUReAddResetsFrequency(t *testing.T) {
	p := newLFU()
	p.OnAdd("a")
	p.OnAccess("a")
	p.OnAccess("a")
	p.OnAdd("b")
	p.OnAccess("b")

	// Re-adding a sends it back to frequency 1.
	p.OnAdd("a")
	if got := candidate(t, p); got != "a" {
		t.Errorf("expected re-added a at frequency 1, got %s", got)
	}
}

func TestFIFOIgnoresAccess(t *testing.T) {
	p := newFIFO()
	p.OnAdd("a")
	p.OnAdd("b")
	p.OnAccess("a")
	p.OnAccess("a")

	if got := candidate(t, p); got != "a" {
		t.Errorf("FIFO must ignore accesses, got %s", got)
	}
}

func TestFIFOSecondInsertKeepsPosition(t *testing.T) {
	p := newFIFO()
	p.OnAdd("a")
	p.OnAdd("b")
	p.OnAdd("a")

	if got := candidate(t, p); got != "a" {
		t.Errorf("expected a, got %s", got)
	}
}

func TestFIFOSkipsStaleQueueEntries(t *testing.T) {
	p := newFIFO()
	p.OnAdd("a")
	p.OnAdd("b")
	p.OnAdd("c")
	p.OnRemove("a")
	p.OnRemove("b")

	if got := candidate(t, p); got != "c" {
		t.Errorf("expected c after removing a and b, got %s", got)
	}
	if p.Len() != 1 {
		t.Errorf("expected 1 member, got %d", p.Len())
	}

	p.OnRemove("c")
	if _, ok := p.EvictionCandidate(); ok {
		t.Error("expected no candidate once all members removed")
	}
}

func TestNonePolicy(t *testing.T) {
	p := newNone()
	p.OnAdd("a")
	p.OnAccess("a")
	if _, ok := p.EvictionCandidate(); ok {
		t.Error("none policy must never nominate a candidate")
	}
	if p.Len() != 0 {
		t.Errorf("none policy tracks nothing, got %d", p.Len())
	}
}

func TestClearResetsAllPolicies(t *testing.T) {
	for _, pt := range []PolicyType{LRU, LFU, FIFO} {
		p, err := New(pt)
		if err != nil {
			t.Fatal(err)
		}
		p.OnAdd("a")
		p.OnAdd("b")
		p.Clear()
		if p.Len() != 0 {
			t.Errorf("%s: expected empty policy after Clear", pt)
		}
		if _, ok := p.EvictionCandidate(); ok {
			t.Errorf("%s: expected no candidate after Clear", pt)
		}
	}
}
