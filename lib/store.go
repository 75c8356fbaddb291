package lib

/* This file contains persistence module interfaces that are used throughout the app */

// StoreI is the account table: a key value store of accounts with isolated read and write transactions
type StoreI interface {
	// View() runs the callback in a read only transaction that never blocks writers
	View(cb func(r AccountReaderI) ErrorI) ErrorI
	// Update() runs the callback in a read-write transaction; if the callback errors nothing is written
	Update(cb func(w AccountWriterI) ErrorI) ErrorI
	// Close() gracefully stops the database
	Close() ErrorI
}

// AccountReaderI defines the read operations on the account table
type AccountReaderI interface {
	// GetAccount() returns the account under the key or nil if it doesn't exist
	GetAccount(key []byte) (*Account, ErrorI)
	// IterateAccounts() visits every account in lexicographical key order until the callback errors
	IterateAccounts(cb func(key []byte, account *Account) ErrorI) ErrorI
}

// AccountWriterI defines the read-write operations on the account table
type AccountWriterI interface {
	AccountReaderI
	// SetAccount() upserts the account under the key
	SetAccount(key []byte, account *Account) ErrorI
}
