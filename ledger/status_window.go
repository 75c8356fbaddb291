package ledger

import (
	"sync"

	"github.com/canopy-network/poh/lib"
)

/*
	The status window is the replay protection window: the last MaxEntryIds tick ids, each with the height
	and time it was registered and the signatures of the transactions that referenced it. A transaction is
	valid only if its LastId is resident, and a signature is rejected as a replay only while its id is resident.
	Because heights are registered contiguously the window doubles as the tick height -> timestamp map
*/

// status is one resident tick id
type status struct {
	id          []byte
	tickHeight  uint64
	timestampMS uint64
	signatures  map[string]struct{}
}

// StatusWindow is a fixed capacity FIFO of recent tick ids, safe for concurrent use
type StatusWindow struct {
	mu     sync.RWMutex
	ring   *lib.Ring[*status]
	lookup map[string]*status // id -> status for resident ids
}

// NewStatusWindow() creates a window holding the genesis id at tick height 0
func NewStatusWindow(capacity int, genesisId []byte, genesisMS uint64) *StatusWindow {
	w := &StatusWindow{ring: lib.NewRing[*status](capacity), lookup: make(map[string]*status)}
	w.push(&status{id: lib.CopyBytes(genesisId), timestampMS: genesisMS})
	return w
}

// RegisterTick() makes the id resident at the next tick height, evicting the oldest id if full
func (w *StatusWindow) RegisterTick(id []byte, timestampMS uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	newest, _ := w.ring.Newest()
	w.push(&status{id: lib.CopyBytes(id), tickHeight: newest.tickHeight + 1, timestampMS: timestampMS})
}

// push() appends the status and unindexes the evicted one
func (w *StatusWindow) push(s *status) {
	s.signatures = make(map[string]struct{})
	if evicted, ok := w.ring.Push(s); ok {
		delete(w.lookup, string(evicted.id))
	}
	w.lookup[string(s.id)] = s
}

// LastId() returns the most recently registered id
func (w *StatusWindow) LastId() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()
	newest, _ := w.ring.Newest()
	return lib.CopyBytes(newest.id)
}

// TickHeight() returns the height of the most recently registered id
func (w *StatusWindow) TickHeight() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	newest, _ := w.ring.Newest()
	return newest.tickHeight
}

// TickTimestamp() returns when the tick height was registered, if it's still resident
func (w *StatusWindow) TickTimestamp(tickHeight uint64) (uint64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	oldest, _ := w.ring.Oldest()
	if tickHeight < oldest.tickHeight {
		return 0, false
	}
	s, ok := w.ring.Get(int(tickHeight - oldest.tickHeight))
	if !ok {
		return 0, false
	}
	return s.timestampMS, true
}

// ReserveSignature() records the signature against a resident id, rejecting replays
func (w *StatusWindow) ReserveSignature(lastId, signature []byte) lib.ErrorI {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.lookup[string(lastId)]
	if !ok {
		return ErrUnknownLastId()
	}
	if _, found := s.signatures[string(signature)]; found {
		return ErrDuplicateSignature()
	}
	s.signatures[string(signature)] = struct{}{}
	return nil
}

// Len() returns the number of resident ids
func (w *StatusWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ring.Len()
}
