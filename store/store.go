package store

import (
	"bytes"
	"errors"
	"path/filepath"

	"github.com/canopy-network/poh/lib"
	"github.com/dgraph-io/badger/v4"
)

/*
The store package persists the account table in BadgerDB. Badger is a multi-version store: every read runs
against a consistent snapshot taken when its transaction began, so read only transactions (View) never block
the writer (Update) and a writer never observes a half applied write. Accounts are stored under a length
prefixed key space to keep room for other tables in the same database.
*/

const maxKeyBytes = 255 // single byte length prefix

var (
	accountPrefix = lib.JoinLenPrefix([]byte("a/")) // prefix designated for accounts
)

var _ lib.StoreI = &Store{}

// Store is the badger backed account table
type Store struct {
	db  *badger.DB  // underlying database
	log lib.LoggerI // logger
}

// New() creates a new instance of a StoreI either in memory or an actual disk DB
func New(config lib.Config, l lib.LoggerI) (*Store, lib.ErrorI) {
	if config.StoreConfig.InMemory {
		return NewStoreInMemory(l)
	}
	path := filepath.Join(config.DataDirPath, config.DBName)
	db, err := badger.Open(badger.DefaultOptions(path).
		WithMemTableSize(config.MemTableSize).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return NewStoreWithDB(db, l), nil
}

// NewStoreInMemory() creates a new instance of a mem DB
func NewStoreInMemory(l lib.LoggerI) (*Store, lib.ErrorI) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return NewStoreWithDB(db, l), nil
}

// NewStoreWithDB() wraps an open badger database
func NewStoreWithDB(db *badger.DB, l lib.LoggerI) *Store {
	return &Store{db: db, log: l}
}

// View() runs the callback against a read only snapshot
func (s *Store) View(cb func(r lib.AccountReaderI) lib.ErrorI) lib.ErrorI {
	return s.wrap(s.db.View(func(txn *badger.Txn) error {
		if e := cb(&reader{txn: txn}); e != nil {
			return e
		}
		return nil
	}), ErrStoreGet)
}

// Update() runs the callback in a read-write transaction that commits only if the callback succeeds
func (s *Store) Update(cb func(w lib.AccountWriterI) lib.ErrorI) lib.ErrorI {
	return s.wrap(s.db.Update(func(txn *badger.Txn) error {
		if e := cb(&writer{reader{txn: txn}}); e != nil {
			return e
		}
		return nil
	}), ErrCommitDB)
}

// Close() gracefully stops the database
func (s *Store) Close() lib.ErrorI {
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// wrap() passes callback errors through and converts badger errors
func (s *Store) wrap(err error, convert func(error) lib.ErrorI) lib.ErrorI {
	if err == nil {
		return nil
	}
	var e lib.ErrorI
	if errors.As(err, &e) {
		return e
	}
	return convert(err)
}

// reader implements lib.AccountReaderI over a badger transaction
type reader struct {
	txn *badger.Txn
}

// GetAccount() returns the account under the key or nil if it doesn't exist
func (r *reader) GetAccount(key []byte) (*lib.Account, lib.ErrorI) {
	k, err := accountKey(key)
	if err != nil {
		return nil, err
	}
	item, e := r.txn.Get(k)
	if e != nil {
		if errors.Is(e, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, ErrStoreGet(e)
	}
	bz, e := item.ValueCopy(nil)
	if e != nil {
		return nil, ErrStoreGet(e)
	}
	return lib.NewAccountFromBytes(bz)
}

// IterateAccounts() visits every account in lexicographical key order
func (r *reader) IterateAccounts(cb func(key []byte, account *lib.Account) lib.ErrorI) lib.ErrorI {
	it := r.txn.NewIterator(badger.IteratorOptions{Prefix: accountPrefix, PrefetchValues: true, PrefetchSize: 100})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		bz, e := item.ValueCopy(nil)
		if e != nil {
			return ErrStoreGet(e)
		}
		account, err := lib.NewAccountFromBytes(bz)
		if err != nil {
			return err
		}
		key, err := keyFromAccountKey(item.KeyCopy(nil))
		if err != nil {
			return err
		}
		if err = cb(key, account); err != nil {
			return err
		}
	}
	return nil
}

// writer implements lib.AccountWriterI over a badger read-write transaction
type writer struct {
	reader
}

// SetAccount() upserts the account under the key
func (w *writer) SetAccount(key []byte, account *lib.Account) lib.ErrorI {
	k, err := accountKey(key)
	if err != nil {
		return err
	}
	if e := w.txn.Set(k, account.Bytes()); e != nil {
		return ErrStoreSet(e)
	}
	return nil
}

// accountKey() prefixes the public key into the account key space
func accountKey(key []byte) ([]byte, lib.ErrorI) {
	if len(key) == 0 || len(key) > maxKeyBytes {
		return nil, ErrInvalidKey()
	}
	return append(bytes.Clone(accountPrefix), lib.JoinLenPrefix(key)...), nil
}

// keyFromAccountKey() strips the account prefix from a stored key
func keyFromAccountKey(k []byte) ([]byte, lib.ErrorI) {
	if !bytes.HasPrefix(k, accountPrefix) {
		return nil, ErrInvalidKey()
	}
	segments := lib.DecodeLengthPrefixed(k[len(accountPrefix):])
	if len(segments) != 1 {
		return nil, ErrInvalidKey()
	}
	return segments[0], nil
}
