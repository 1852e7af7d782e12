package intern

// Loose is an interner that never checks for duplicates: every Intern call
// appends a fresh entry, even if the string was already stored. It is used
// for literals and task code, where repetition across a workflow is
// unlikely and the cost of hashing on every insert without ever probing
// would outweigh the dedup savings.
type Loose[K Key] struct {
	kts  *keyToStr
	bits uint
}

// NewLoose creates an empty Loose interner for handle type K.
func NewLoose[K Key](bits uint, capCount, avgLen int) *Loose[K] {
	return &Loose[K]{
		kts:  newKeyToStr(capCount, capCount*avgLen),
		bits: bits,
	}
}

func (l *Loose[K]) maxCount() uint64 {
	if l.bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << l.bits
}

// Intern unconditionally appends s and returns its new handle.
func (l *Loose[K]) Intern(s string) (K, error) {
	if uint64(l.kts.len()) >= l.maxCount() {
		var zero K
		return zero, outOfKeySpace(l.maxCount(), l.bits)
	}
	idx, err := l.kts.push(s)
	if err != nil {
		var zero K
		return zero, err
	}
	return K(idx), nil
}

// Get returns the string stored at handle k.
func (l *Loose[K]) Get(k K) (string, error) {
	return l.kts.get(int(k))
}

// Len returns the number of strings interned (including duplicates).
func (l *Loose[K]) Len() int { return l.kts.len() }

// Freeze drops nothing extra (Loose never built a dedup map) but is offered
// for symmetry with Interner.Freeze so call sites can treat both uniformly.
func (l *Loose[K]) Freeze() *Frozen[K] {
	return &Frozen[K]{kts: l.kts}
}
