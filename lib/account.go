package lib

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// SystemProgramId owns every account that hasn't been assigned to a program
var SystemProgramId = make([]byte, 32)

// Account is a balance plus program owned data stored under a public key
// The balance of the account under a validator's node id is that validator's stake
type Account struct {
	Owner   HexBytes `json:"owner"`   // the program allowed to modify Data
	Balance uint64   `json:"balance"` // tokens, used as stake
	Data    HexBytes `json:"data"`    // program specific state
}

const (
	accountFieldOwner protowire.Number = iota + 1
	accountFieldBalance
	accountFieldData
)

// NewAccount() returns an account with a balance owned by the program
func NewAccount(balance uint64, owner []byte) *Account {
	return &Account{Owner: CopyBytes(owner), Balance: balance}
}

// IsOwnedBy() returns true if the program owns the account
func (x *Account) IsOwnedBy(programId []byte) bool {
	owner := x.Owner
	if len(owner) == 0 {
		owner = SystemProgramId
	}
	return bytes.Equal(owner, programId)
}

// Copy() returns a deep copy of the account
func (x *Account) Copy() *Account {
	return &Account{Owner: CopyBytes(x.Owner), Balance: x.Balance, Data: CopyBytes(x.Data)}
}

// Bytes() encodes the account in the protobuf wire format
func (x *Account) Bytes() (bz []byte) {
	bz = AppendBytesField(bz, accountFieldOwner, x.Owner)
	bz = AppendVarintField(bz, accountFieldBalance, x.Balance)
	return AppendBytesField(bz, accountFieldData, x.Data)
}

// NewAccountFromBytes() decodes an account from the protobuf wire format
func NewAccountFromBytes(bz []byte) (*Account, ErrorI) {
	x := new(Account)
	err := ReadFields(bz, func(f ProtoField) ErrorI {
		switch f.Num {
		case accountFieldOwner:
			x.Owner = CopyBytes(f.Bytes)
		case accountFieldBalance:
			if f.Type != protowire.VarintType {
				return ErrWrongWireType(f)
			}
			x.Balance = f.Varint
		case accountFieldData:
			x.Data = CopyBytes(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}

// KeyedAccount is an account as handed to a program: its key and whether the key signed the transaction
type KeyedAccount struct {
	Key     HexBytes
	Signer  bool
	Account *Account
}
