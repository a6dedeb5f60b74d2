// Package delta implements the incremental change-detection protocol:
// canonical content hashing, source-side diff computation (spec
// §4.8.1), and derived-component group merge rules (spec §4.8.2).
package delta

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a 128-bit canonical content hash. Two fingerprints are
// equal iff the corresponding contents are considered equal for
// change-detection purposes (spec §4.8.1).
type Fingerprint [16]byte

// seedLo and seedHi are distinct seeds used to widen a single 64-bit
// xxhash digest into a 128-bit fingerprint. The corpus has no 128-bit
// hash import; xxhash (cespare/xxhash/v2) is the fast non-cryptographic
// hash the corpus already reaches for, so it is applied twice with
// distinct seeds rather than switching to crypto/sha256.
const (
	seedLo uint64 = 0x9e3779b97f4a7c15
	seedHi uint64 = 0xc6a4a7935bd1e995
)

// Hash computes the canonical fingerprint of content. Serialization
// sorts map keys recursively — encoding/json already sorts the keys of
// any map[string]T value it marshals, which is exactly the "recursively
// sorting map keys" canonicalization spec §4.8.1 calls for.
func Hash(content any) (Fingerprint, error) {
	canonical, err := json.Marshal(content)
	if err != nil {
		return Fingerprint{}, err
	}

	lo := xxhash.NewWithSeed(seedLo)
	lo.Write(canonical)
	hi := xxhash.NewWithSeed(seedHi)
	hi.Write(canonical)

	var fp Fingerprint
	putUint64(fp[0:8], lo.Sum64())
	putUint64(fp[8:16], hi.Sum64())
	return fp, nil
}

// MustHash is Hash but panics on marshal failure; used where content is
// known-serializable (tests, in-process callers that already validated it).
func MustHash(content any) Fingerprint {
	fp, err := Hash(content)
	if err != nil {
		panic(err)
	}
	return fp
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}
