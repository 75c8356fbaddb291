package lib

import (
	"github.com/canopy-network/poh/lib/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

/* This file defines the transaction: the unit the ledger executes and the recorder mixes into the chain */

// Transaction is an instruction to a program along with the accounts it operates on
// AccountKeys[0] is the signer when the transaction carries a Signature
type Transaction struct {
	Signature   HexBytes   `json:"signature"`   // signature over SignBytes() by AccountKeys[0]
	AccountKeys []HexBytes `json:"accountKeys"` // keys of the accounts the program reads and writes
	LastId      HexBytes   `json:"lastId"`      // a recent tick id, for replay protection
	ProgramId   HexBytes   `json:"programId"`   // the program that executes Userdata
	Userdata    HexBytes   `json:"userdata"`    // the serialized program instruction
}

const (
	txFieldSignature protowire.Number = iota + 1
	txFieldAccountKeys
	txFieldLastId
	txFieldProgramId
	txFieldUserdata
)

// Bytes() encodes the full transaction in the protobuf wire format
func (x *Transaction) Bytes() []byte {
	return AppendBytesField(x.SignBytes(), txFieldSignature, x.Signature)
}

// SignBytes() encodes the transaction without the signature
func (x *Transaction) SignBytes() (bz []byte) {
	for _, key := range x.AccountKeys {
		// repeated fields keep empty entries to preserve account indices
		bz = protowire.AppendTag(bz, txFieldAccountKeys, protowire.BytesType)
		bz = protowire.AppendBytes(bz, key)
	}
	bz = AppendBytesField(bz, txFieldLastId, x.LastId)
	bz = AppendBytesField(bz, txFieldProgramId, x.ProgramId)
	return AppendBytesField(bz, txFieldUserdata, x.Userdata)
}

// Hash() is the hash of the encoded transaction
func (x *Transaction) Hash() []byte { return crypto.Hash(x.Bytes()) }

// Sign() signs the transaction with the private key of AccountKeys[0]
func (x *Transaction) Sign(pk crypto.PrivateKeyI) {
	x.Signature = pk.Sign(x.SignBytes())
}

// NewTransactionFromBytes() decodes a transaction from the protobuf wire format
func NewTransactionFromBytes(bz []byte) (*Transaction, ErrorI) {
	x := new(Transaction)
	err := ReadFields(bz, func(f ProtoField) ErrorI {
		if f.Type != protowire.BytesType {
			return ErrWrongWireType(f)
		}
		switch f.Num {
		case txFieldSignature:
			x.Signature = CopyBytes(f.Bytes)
		case txFieldAccountKeys:
			x.AccountKeys = append(x.AccountKeys, CopyBytes(f.Bytes))
		case txFieldLastId:
			x.LastId = CopyBytes(f.Bytes)
		case txFieldProgramId:
			x.ProgramId = CopyBytes(f.Bytes)
		case txFieldUserdata:
			x.Userdata = CopyBytes(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}

// HashTransactions() is the digest mixed into the chain when a batch is recorded: the merkle root of the encoded transactions
func HashTransactions(txs []*Transaction) []byte {
	items := make([][]byte, len(txs))
	for i, tx := range txs {
		items[i] = tx.Bytes()
	}
	root, _ := crypto.MerkleTree(items)
	return root
}
