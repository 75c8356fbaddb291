package crypto

import (
	"crypto/sha256"
	"hash"
)

const (
	HashSize = sha256.Size
)

/*
	Hash is the one-way function that drives the proof of history chain: every idle 'hash' of the clock is
	id = H(id), and every recorded batch of transactions is mixed in with id = H(id || mixin)
	Since each iteration depends on the output of the previous one, the chain can't be computed in parallel
	and the number of iterations between two ids is evidence of elapsed time
*/

// Hasher() returns the global hashing algorithm used
func Hasher() hash.Hash { return sha256.New() }

// Hash() executes the global hashing algorithm on input bytes
func Hash(msg []byte) []byte {
	h := sha256.Sum256(msg)
	return h[:]
}

// ExtendHash() mixes data into a previous hash: H(prev || mixin)
func ExtendHash(prev, mixin []byte) []byte {
	h := Hasher()
	h.Write(prev)
	h.Write(mixin)
	return h.Sum(nil)
}

// HashIterations() applies the hash function n times to the seed
func HashIterations(seed []byte, n uint64) []byte {
	out := seed
	for i := uint64(0); i < n; i++ {
		out = Hash(out)
	}
	return out
}

// MerkleTree creates a merkle tree from a slice of bytes. A
// linear slice was chosen since it uses about half as much memory as a tree
// example: items = {a, b, c, d} -> store = {H(a), H(b), H(c), H(d), H(H(a),H(b)), H(H(c),H(d)), H(H(H(a),H(b)),H(H(c),H(d))) }
func MerkleTree(items [][]byte) (root []byte, store [][]byte) {
	if len(items) == 0 {
		return []byte{}, [][]byte{}
	}
	// a single leaf is its own root
	if len(items) == 1 {
		leaf := Hash(items[0])
		return leaf, [][]byte{leaf}
	}
	offset := nextPowerOfTwo(len(items))
	size := offset*2 - 1
	store = make([][]byte, size)
	for i, item := range items {
		store[i] = Hash(item)
	}
	for i := 0; i < size-1; i += 2 {
		switch {
		default:
			store[offset] = ExtendHash(store[i], store[i+1])
		case store[i] == nil:
			store[offset] = nil
		case store[i+1] == nil:
			store[offset] = ExtendHash(store[i], store[i])
		}
		offset++
	}
	return store[size-1], store
}

// nextPowerOfTwo() calculates the smallest power of 2 that is greater than or equal to the input value
func nextPowerOfTwo(v int) int {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
