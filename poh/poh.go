package poh

import (
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
)

/*
	Poh is the hash chain itself. It is not safe for concurrent use; the Recorder serializes access to it.
	Every operation counts as one hash:
	- Hash()   id = H(id)
	- Record() id = H(id || mixin), closes an entry
	- Tick()   id = H(id), closes an entry and increments the tick height
	NumHashes of a closed entry is the number of hashes since the previous entry, including its own
*/

// Poh is the proof of history hash chain
type Poh struct {
	id         []byte // current chain state
	numHashes  uint64 // hashes since the last entry
	tickHeight uint64 // number of ticks since genesis
}

// NewPoh() continues a chain from a known id and tick height
func NewPoh(startId []byte, tickHeight uint64) *Poh {
	return &Poh{id: lib.CopyBytes(startId), tickHeight: tickHeight}
}

// Hash() advances the chain once with no input, representing idle elapsed time
func (p *Poh) Hash() {
	p.id = crypto.Hash(p.id)
	p.numHashes++
}

// Record() mixes the data into the chain and closes an entry
func (p *Poh) Record(mixin []byte) *lib.Entry {
	p.id = crypto.ExtendHash(p.id, mixin)
	return p.closeEntry()
}

// Tick() advances the chain once, closes an entry and increments the tick height
// NumHashes is the idle hashes since the previous entry plus the tick's own hash, so a
// cadence of N hashes per tick yields N-1 idle hashes and NumHashes == N
func (p *Poh) Tick() *lib.Entry {
	p.id = crypto.Hash(p.id)
	p.tickHeight++
	return p.closeEntry()
}

// closeEntry() returns the entry header, counting the closing hash, and resets the hash counter
func (p *Poh) closeEntry() *lib.Entry {
	e := &lib.Entry{Id: lib.CopyBytes(p.id), NumHashes: p.numHashes + 1}
	p.numHashes = 0
	return e
}

// Id() returns a copy of the current chain state
func (p *Poh) Id() []byte { return lib.CopyBytes(p.id) }

// TickHeight() returns the number of ticks since genesis
func (p *Poh) TickHeight() uint64 { return p.tickHeight }
