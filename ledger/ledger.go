package ledger

import (
	"bytes"
	"sync"

	"github.com/canopy-network/poh/finality"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/poh"
	"github.com/canopy-network/poh/vote"
)

var (
	_ poh.LedgerI      = &Ledger{}
	_ finality.LedgerI = &Ledger{}
)

// Ledger is the bank the core depends on: the account table, the status window of recent tick ids and the
// published leader finality. The recorder registers ticks into it, the transaction path executes against it and
// the finality service reads its accounts and publishes back into it
type Ledger struct {
	store   lib.StoreI       // the account table
	window  *StatusWindow    // replay protection and tick timestamps
	metrics lib.MetricsSinkI // handed to programs
	log     lib.LoggerI      // logger

	finality lib.FinalityState // written only by the finality service
	mu       sync.RWMutex      // guards finality
}

// New() creates a ledger over the account table whose chain starts at the genesis id
func New(config lib.LedgerConfig, store lib.StoreI, genesisId []byte, metrics lib.MetricsSinkI, log lib.LoggerI) *Ledger {
	return &Ledger{
		store:   store,
		window:  NewStatusWindow(config.MaxEntryIds, genesisId, lib.NowMS()),
		metrics: metrics,
		log:     log,
	}
}

// RegisterTick() makes the tick id a valid LastId and timestamps the new tick height
func (l *Ledger) RegisterTick(id []byte) { l.window.RegisterTick(id, lib.NowMS()) }

// LastId() returns the most recently registered tick id
func (l *Ledger) LastId() []byte { return l.window.LastId() }

// TickHeight() returns the height of the most recently registered tick
func (l *Ledger) TickHeight() uint64 { return l.window.TickHeight() }

// TickTimestamp() returns when the tick height was registered, if it's still in the status window
func (l *Ledger) TickTimestamp(tickHeight uint64) (uint64, bool) {
	return l.window.TickTimestamp(tickHeight)
}

// GetAccount() returns the account under the key or nil if it doesn't exist
func (l *Ledger) GetAccount(key []byte) (account *lib.Account, err lib.ErrorI) {
	err = l.store.View(func(r lib.AccountReaderI) (e lib.ErrorI) {
		account, e = r.GetAccount(key)
		return
	})
	return
}

// GetStake() returns the balance of the validator's account
func (l *Ledger) GetStake(nodeId []byte) uint64 {
	account, err := l.GetAccount(nodeId)
	if err != nil {
		l.log.Errorf("GetStake() failed with err: %s", err.Error())
		return 0
	}
	if account == nil {
		return 0
	}
	return account.Balance
}

// ViewAccounts() runs the callback in a read only transaction that never blocks the transaction path
func (l *Ledger) ViewAccounts(cb func(r lib.AccountReaderI) lib.ErrorI) lib.ErrorI {
	return l.store.View(cb)
}

// Credit() adds to the balance of an account, creating it if needed
func (l *Ledger) Credit(key []byte, amount uint64) lib.ErrorI {
	return l.store.Update(func(w lib.AccountWriterI) lib.ErrorI {
		account, err := w.GetAccount(key)
		if err != nil {
			return err
		}
		if account == nil {
			account = lib.NewAccount(0, nil)
		}
		account.Balance += amount
		return w.SetAccount(key, account)
	})
}

// CreateVoteAccount() creates an empty account owned by the vote program, ready to be registered
func (l *Ledger) CreateVoteAccount(key []byte) lib.ErrorI {
	return l.store.Update(func(w lib.AccountWriterI) lib.ErrorI {
		account, err := w.GetAccount(key)
		if err != nil {
			return err
		}
		if account != nil {
			return ErrAccountExists()
		}
		return w.SetAccount(key, lib.NewAccount(0, vote.ProgramId))
	})
}

// ProcessTransactions() executes each transaction independently, returning a result per transaction
func (l *Ledger) ProcessTransactions(txs []*lib.Transaction) []lib.ErrorI {
	results := make([]lib.ErrorI, len(txs))
	for i, tx := range txs {
		results[i] = l.ProcessTransaction(tx)
	}
	return results
}

// ProcessTransaction() checks the transaction against the status window then executes its program atomically
// The signature stays reserved even if execution fails
func (l *Ledger) ProcessTransaction(tx *lib.Transaction) lib.ErrorI {
	if len(tx.Signature) == 0 {
		return ErrEmptySignature()
	}
	if len(tx.AccountKeys) == 0 {
		return ErrNoAccountKeys()
	}
	if err := l.window.ReserveSignature(tx.LastId, tx.Signature); err != nil {
		return err
	}
	if !bytes.Equal(tx.ProgramId, vote.ProgramId) {
		return ErrUnknownProgram()
	}
	return l.store.Update(func(w lib.AccountWriterI) lib.ErrorI {
		// load working copies of the accounts, missing accounts are empty system accounts
		accounts := make([]*lib.KeyedAccount, len(tx.AccountKeys))
		originals := make([][]byte, len(tx.AccountKeys))
		for i, key := range tx.AccountKeys {
			account, err := w.GetAccount(key)
			if err != nil {
				return err
			}
			if account == nil {
				account = lib.NewAccount(0, nil)
			}
			originals[i] = account.Bytes()
			accounts[i] = &lib.KeyedAccount{Key: key, Signer: i == 0, Account: account}
		}
		if err := vote.ProcessInstruction(accounts, tx.Userdata, l.metrics); err != nil {
			return err
		}
		// persist only what changed
		for i, a := range accounts {
			if !bytes.Equal(a.Account.Bytes(), originals[i]) {
				if err := w.SetAccount(a.Key, a.Account); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetFinalityTimestamp() maps the supermajority tick height to the time its tick was registered
func (l *Ledger) GetFinalityTimestamp(pairs []finality.TickStake, threshold uint64) (tickHeight, timestampMS uint64, ok bool) {
	if tickHeight, ok = finality.SupermajorityTickHeight(pairs, threshold); !ok {
		return
	}
	timestampMS, ok = l.window.TickTimestamp(tickHeight)
	return
}

// SetFinality() publishes a confirmation
func (l *Ledger) SetFinality(tickHeight, timestampMS, durationMS uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finality = lib.FinalityState{
		Confirmed:                true,
		LastConfirmedTickHeight:  tickHeight,
		LastConfirmedTimestampMS: timestampMS,
		DurationMS:               durationMS,
	}
}

// Finality() returns the most recent confirmation
func (l *Ledger) Finality() lib.FinalityState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.finality
}

// FinalityMS() returns the confirmation lag or MaxUint64 if nothing was ever confirmed
func (l *Ledger) FinalityMS() uint64 { return l.Finality().FinalityMS() }
