package lib

import (
	"bytes"

	"github.com/canopy-network/poh/lib/crypto"
)

/*
	An Entry is a point on the proof of history chain:
	- a tick carries no transactions and its Id is NumHashes plain hash iterations of the previous Id
	- a record entry's Id is NumHashes-1 plain iterations followed by one iteration mixing in HashTransactions()
	Given the Id of the entry before a batch, any observer can replay the hashing to verify the batch
*/

// Entry is one link of the proof of history chain
type Entry struct {
	Id           HexBytes       `json:"id"`                     // the chain state after this entry
	NumHashes    uint64         `json:"numHashes"`              // hashes since the previous entry, including this one
	Transactions []*Transaction `json:"transactions,omitempty"` // empty for ticks
}

// IsTick() returns true if the entry carries no transactions
func (e *Entry) IsTick() bool { return len(e.Transactions) == 0 }

// Verify() returns true if the entry extends prevId
func (e *Entry) Verify(prevId []byte) bool {
	if e.NumHashes == 0 {
		return false
	}
	if e.IsTick() {
		return bytes.Equal(e.Id, crypto.HashIterations(prevId, e.NumHashes))
	}
	id := crypto.HashIterations(prevId, e.NumHashes-1)
	return bytes.Equal(e.Id, crypto.ExtendHash(id, HashTransactions(e.Transactions)))
}

// Entries is an ordered batch of entries, as delivered once per tick
type Entries []*Entry

// Verify() checks that each entry extends the previous one, starting from startId
func (e Entries) Verify(startId []byte) ErrorI {
	prev := startId
	for i, entry := range e {
		if entry == nil || len(entry.Id) != crypto.HashSize {
			return ErrInvalidEntry(i)
		}
		if !entry.Verify(prev) {
			return ErrEntryChain(i)
		}
		prev = entry.Id
	}
	return nil
}

// LastId() returns the id of the final entry or nil if empty
func (e Entries) LastId() []byte {
	if len(e) == 0 {
		return nil
	}
	return e[len(e)-1].Id
}

// NumTransactions() counts the transactions across all entries
func (e Entries) NumTransactions() (n int) {
	for _, entry := range e {
		n += len(entry.Transactions)
	}
	return
}
