package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Format names the hash function used to derive object ids. It is fixed when
// a repository is initialized and recorded in its config.
type Format string

const (
	FormatSHA256  Format = "sha256"
	FormatBLAKE2b Format = "blake2b"
)

// HexLen is the length of a hex-encoded id for every supported format.
const HexLen = 64

// Valid reports whether f names a supported hash function.
func (f Format) Valid() bool {
	return f == FormatSHA256 || f == FormatBLAKE2b
}

func (f Format) newHash() hash.Hash {
	if f == FormatBLAKE2b {
		// New256 only fails for keys longer than 64 bytes.
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
	return sha256.New()
}

// HashObject computes the id of an object as the digest of the envelope
// "type len\0content" under the given format.
func HashObject(f Format, objType ObjectType, data []byte) Hash {
	h := f.newHash()
	fmt.Fprintf(h, "%s %d\x00", objType, len(data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
