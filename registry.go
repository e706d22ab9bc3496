package goselect

// watcherSet is the per-channel registry of tokens from Selects currently
// observing that channel. It is guarded by the owning channel's mutex; only
// snapshots escape the lock so fan-out never holds it.
//
// Token identity doubles as the registration id: the same Select never
// registers twice with one channel, and independent Selects always hold
// distinct tokens.
type watcherSet struct {
	tokens map[*Token]struct{}
}

func (w *watcherSet) addLocked(t *Token) {
	if w.tokens == nil {
		w.tokens = make(map[*Token]struct{})
	}
	w.tokens[t] = struct{}{}
}

// removeLocked reports whether the token was present.
func (w *watcherSet) removeLocked(t *Token) bool {
	if _, ok := w.tokens[t]; !ok {
		return false
	}
	delete(w.tokens, t)
	return true
}

// snapshotLocked copies the live tokens for fan-out outside the lock,
// pruning any the owning Select has dropped since the last pass.
func (w *watcherSet) snapshotLocked() []*Token {
	if len(w.tokens) == 0 {
		return nil
	}
	out := make([]*Token, 0, len(w.tokens))
	for t := range w.tokens {
		if t.Dropped() {
			delete(w.tokens, t)
			continue
		}
		out = append(out, t)
	}
	return out
}

// notifyAll signals every token in a snapshot. Dropped tokens are ignored
// here and pruned on the next snapshot.
func notifyAll(toks []*Token) {
	for _, t := range toks {
		t.Signal()
	}
}
