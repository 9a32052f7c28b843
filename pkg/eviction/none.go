package eviction

// none disables eviction: it tracks nothing and never nominates a victim.
type none struct{}

func newNone() none { return none{} }

func (none) OnAccess(string)                 {}
func (none) OnAdd(string)                    {}
func (none) OnRemove(string)                 {}
func (none) EvictionCandidate() (string, bool) { return "", false }
func (none) Clear()                          {}
func (none) Len() int                        { return 0 }
