package controller

import (
	"time"

	"github.com/canopy-network/poh/lib"
	"github.com/cenkalti/backoff/v4"
)

const (
	recordRetryInterval = time.Millisecond
	maxRecordRetries    = 10
)

// BankingStats summarizes what the banking stage consumed
type BankingStats struct {
	Batches       uint64       `json:"batches"`       // tick batches received
	Entries       uint64       `json:"entries"`       // entries received
	Transactions  uint64       `json:"transactions"`  // transactions received in entries
	InvalidChains uint64       `json:"invalidChains"` // batches that failed verification
	LastId        lib.HexBytes `json:"lastId"`        // id of the last entry received
}

// SubmitTransactions() executes the transactions against the ledger and mixes the accepted ones into the clock
// The results are per transaction; the error reports a failure to record the accepted batch
func (c *Controller) SubmitTransactions(txs []*lib.Transaction) (results []lib.ErrorI, err lib.ErrorI) {
	results = c.Ledger.ProcessTransactions(txs)
	accepted := make([]*lib.Transaction, 0, len(txs))
	for i, tx := range txs {
		if results[i] != nil {
			c.log.Debugf("Rejected tx %s: %s", lib.BytesToTruncatedString(tx.Hash()), results[i].Error())
			continue
		}
		accepted = append(accepted, tx)
	}
	if len(accepted) == 0 {
		return
	}
	// a tick between reading the last id and recording is a conflict: retry with the fresh id
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(recordRetryInterval), maxRecordRetries)
	if e := backoff.Retry(func() error {
		if err = c.Recorder.Record(c.Ledger.LastId(), accepted); err == nil {
			return nil
		}
		if lib.IsCode(err, lib.PoHModule, lib.CodeConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, policy); e != nil {
		c.log.Errorf("Recording %d txs failed with err: %s", len(accepted), err.Error())
		return
	}
	return results, nil
}

// bankingStage() drains the delivery channel, checking each batch continues the chain, until the recorder closes it
func (c *Controller) bankingStage(prevId []byte) {
	defer close(c.bankingDone)
	defer lib.CatchPanic(c.log)
	log := c.log.With("banking")
	for batch := range c.entries {
		numTxs := batch.NumTransactions()
		valid := true
		if err := batch.Verify(prevId); err != nil {
			log.Errorf("Invalid entry batch: %s", err.Error())
			valid = false
		}
		if len(batch) != 0 {
			prevId = batch.LastId()
		}
		c.statsMux.Lock()
		c.stats.Batches++
		c.stats.Entries += uint64(len(batch))
		c.stats.Transactions += uint64(numTxs)
		c.stats.LastId = prevId
		if !valid {
			c.stats.InvalidChains++
		}
		c.statsMux.Unlock()
		c.Metrics.Submit(lib.MeasurementBanking, map[string]int64{"entries": int64(len(batch)), "transactions": int64(numTxs)})
		if numTxs != 0 {
			log.Debugf("Received %d entries with %d txs", len(batch), numTxs)
		}
	}
}

// BankingStats() returns a copy of the banking stage counters
func (c *Controller) BankingStats() BankingStats {
	c.statsMux.RLock()
	defer c.statsMux.RUnlock()
	s := c.stats
	s.LastId = lib.CopyBytes(s.LastId)
	return s
}
