package cli

import (
	"context"
	"time"

	"github.com/canopy-network/poh/ledger"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/canopy-network/poh/poh"
	"github.com/canopy-network/poh/store"
	"github.com/canopy-network/poh/vote"
	"github.com/spf13/cobra"
)

var (
	verifyTicks, verifyHashesPerTick, verifyTxsPerTick = uint64(0), uint64(0), 0
)

func init() {
	verifyCmd.Flags().Uint64Var(&verifyTicks, "ticks", lib.NumTicksPerSecond, "number of ticks to produce")
	verifyCmd.Flags().Uint64Var(&verifyHashesPerTick, "hashes-per-tick", 12500, "hashes in each tick entry")
	verifyCmd.Flags().IntVar(&verifyTxsPerTick, "txs-per-tick", 1, "transactions recorded after each tick")
}

var verifyCmd = &cobra.Command{
	Use:   "verify --ticks=10 --hashes-per-tick=12500",
	Short: "run a short in memory clock at full speed and verify the entries it produced",
	Run: func(cmd *cobra.Command, args []string) {
		writeToConsole(runVerify(verifyTicks, verifyHashesPerTick, verifyTxsPerTick, l))
	},
}

// VerifyResult summarizes a verification run
type VerifyResult struct {
	Ticks           uint64       `json:"ticks"`
	Entries         uint64       `json:"entries"`
	Transactions    uint64       `json:"transactions"`
	Hashes          uint64       `json:"hashes"`
	ElapsedMS       uint64       `json:"elapsedMS"`
	HashesPerSecond uint64       `json:"hashesPerSecond"`
	LastId          lib.HexBytes `json:"lastId"`
	Verified        bool         `json:"verified"`
}

// runVerify() produces at least numTicks ticks in 'tick' mode, recording txsPerTick transactions after each,
// then verifies the whole chain from the genesis id
func runVerify(numTicks, hashesPerTick uint64, txsPerTick int, log lib.LoggerI) (*VerifyResult, lib.ErrorI) {
	db, err := store.NewStoreInMemory(log)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	genesisId := crypto.Hash([]byte("verify"))
	ledg := ledger.New(lib.DefaultLedgerConfig(), db, genesisId, lib.NullSink{}, log)
	delivery := make(chan lib.Entries, 1)
	recorder := poh.NewRecorder(ledg, delivery, lib.NullSink{}, log)
	service, err := poh.NewService(lib.PoHConfig{Mode: lib.PoHModeTick, HashesPerTick: hashesPerTick}, recorder, log)
	if err != nil {
		return nil, err
	}
	signer, e := crypto.NewEd25519PrivateKey()
	if e != nil {
		return nil, lib.ErrInvalidArgument()
	}
	start := time.Now()
	if err = service.Start(context.Background()); err != nil {
		return nil, err
	}
	var (
		all      lib.Entries
		ticks    uint64
		stopping bool
	)
	for batch := range delivery {
		all = append(all, batch...)
		ticks++
		if ticks >= numTicks && !stopping {
			stopping = true
			// the recorder closes the delivery channel once the service exits
			go func() {
				if er := service.Close(); er != nil {
					log.Error(er.Error())
				}
				recorder.Close()
			}()
			continue
		}
		if stopping || txsPerTick == 0 {
			continue
		}
		lastId := ledg.LastId()
		txs := make([]*lib.Transaction, txsPerTick)
		for i := range txs {
			txs[i] = vote.NewVoteTx(signer, ticks*uint64(txsPerTick)+uint64(i), lastId)
		}
		// a conflict only means the next tick won the race
		if er := recorder.Record(lastId, txs); er != nil {
			log.Debugf("Record skipped: %s", er.Error())
		}
	}
	elapsed := time.Since(start)
	result := &VerifyResult{
		Ticks:        ticks,
		Entries:      uint64(len(all)),
		Transactions: uint64(all.NumTransactions()),
		ElapsedMS:    uint64(elapsed.Milliseconds()),
		LastId:       all.LastId(),
	}
	for _, entry := range all {
		result.Hashes += entry.NumHashes
	}
	if s := elapsed.Seconds(); s > 0 {
		result.HashesPerSecond = uint64(float64(result.Hashes) / s)
	}
	if err = all.Verify(genesisId); err != nil {
		log.Errorf("Entry chain failed verification: %s", err.Error())
		return result, nil
	}
	result.Verified = true
	return result, nil
}
