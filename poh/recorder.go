package poh

import (
	"bytes"
	"sync"

	"github.com/canopy-network/poh/lib"
)

// LedgerI is the part of the ledger the recorder checkpoints ticks into
type LedgerI interface {
	// RegisterTick() makes the tick id a valid LastId and timestamps the new tick height
	RegisterTick(id []byte)
	// LastId() returns the most recently registered tick id
	LastId() []byte
	// TickHeight() returns the height of the most recently registered tick
	TickHeight() uint64
}

// Recorder serializes every mutation of the chain: idle hashes from the cadence thread, records from the
// transaction path and ticks. Entries recorded between two ticks are buffered and delivered together with
// the closing tick, in chain order, as one batch
// Batches are queued without bound and handed to the channel by a delivery goroutine, so a slow consumer
// never holds the chain lock
type Recorder struct {
	poh     *Poh               // the chain, only touched under mu
	lastId  []byte             // the id of the last tick registered with the ledger
	pending lib.Entries        // entries recorded since the last tick
	outbox  []lib.Entries      // closed batches awaiting delivery, oldest first
	ready   *sync.Cond         // signals the delivery goroutine, uses mu
	ledger  LedgerI            // tick checkpoints
	sender  chan<- lib.Entries // delivery to the banking stage
	closed  bool               // once closed every operation fails
	metrics lib.MetricsSinkI   // telemetry
	log     lib.LoggerI        // logger
	mu      sync.Mutex
}

// NewRecorder() continues the chain from the ledger's last registered tick
func NewRecorder(ledger LedgerI, sender chan<- lib.Entries, metrics lib.MetricsSinkI, log lib.LoggerI) *Recorder {
	lastId := ledger.LastId()
	r := &Recorder{
		poh:     NewPoh(lastId, ledger.TickHeight()),
		lastId:  lib.CopyBytes(lastId),
		ledger:  ledger,
		sender:  sender,
		metrics: metrics,
		log:     log,
	}
	r.ready = sync.NewCond(&r.mu)
	go r.deliver()
	return r
}

// deliver() sends queued batches in order and closes the channel once the recorder is closed and drained
func (r *Recorder) deliver() {
	for {
		r.mu.Lock()
		for len(r.outbox) == 0 && !r.closed {
			r.ready.Wait()
		}
		if len(r.outbox) == 0 {
			r.mu.Unlock()
			close(r.sender)
			return
		}
		batch := r.outbox[0]
		r.outbox[0] = nil
		r.outbox = r.outbox[1:]
		r.mu.Unlock()
		r.sender <- batch
	}
}

// Hash() advances the chain once, representing idle elapsed time
func (r *Recorder) Hash() lib.ErrorI {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed()
	}
	r.poh.Hash()
	return nil
}

// Record() mixes the transactions into the chain if the caller's view of the last id is current
// On ErrConflict a tick was registered after the caller read LastId; retry with the fresh id
func (r *Recorder) Record(expectedPriorId []byte, txs []*lib.Transaction) lib.ErrorI {
	if len(txs) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed()
	}
	if !bytes.Equal(expectedPriorId, r.lastId) {
		return ErrConflict()
	}
	entry := r.poh.Record(lib.HashTransactions(txs))
	entry.Transactions = txs
	r.pending = append(r.pending, entry)
	return nil
}

// Tick() closes a tick entry, registers it with the ledger and queues the batch for delivery
// It never waits on the consumer
func (r *Recorder) Tick() lib.ErrorI {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed()
	}
	tick := r.poh.Tick()
	r.ledger.RegisterTick(tick.Id)
	r.lastId = tick.Id
	batch := append(r.pending, tick)
	r.pending = nil
	r.outbox = append(r.outbox, batch)
	r.ready.Signal()
	r.metrics.Submit(lib.MeasurementPoHTick, map[string]int64{
		"tick_height": int64(r.poh.TickHeight()),
		"num_hashes":  int64(tick.NumHashes),
	})
	return nil
}

// LastId() returns the id of the last tick registered with the ledger
func (r *Recorder) LastId() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lib.CopyBytes(r.lastId)
}

// TickHeight() returns the number of ticks since genesis
func (r *Recorder) TickHeight() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poh.TickHeight()
}

// Close() fails every later operation; the delivery channel is closed after the queued batches are sent
// Entries recorded after the last tick are dropped
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if len(r.pending) != 0 {
		r.log.Warnf("Dropping %d entries recorded after the last tick", len(r.pending))
		r.pending = nil
	}
	r.ready.Signal()
}
