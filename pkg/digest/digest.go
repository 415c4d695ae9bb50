// Package digest computes content hashes of bencode values.
//
// Sum hashes the canonical encoding with dictionary keys sorted, so two
// values that differ only in key order share a digest. InfoHash instead
// hashes the "info" dictionary exactly as stored, which is how BitTorrent
// identifies a torrent.
package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names a supported hash function.
type Algorithm int

const (
	SHA1 Algorithm = iota + 1
	SHA256
	BLAKE2b256
	BLAKE3
)

// Algorithms lists every supported algorithm in a stable order.
var Algorithms = []Algorithm{SHA1, SHA256, BLAKE2b256, BLAKE3}

func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case SHA256:
		return "sha256"
	case BLAKE2b256:
		return "blake2b-256"
	case BLAKE3:
		return "blake3"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm looks up an algorithm by name, ignoring case.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(name, a.String()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown digest algorithm %q", name)
}

// New returns a fresh hash for the algorithm.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case BLAKE2b256:
		return blake2b.New256(nil)
	case BLAKE3:
		return blake3.New(), nil
	}
	return nil, fmt.Errorf("unknown digest algorithm %s", a)
}

// Sum returns the digest of v's canonical encoding with sorted keys.
func Sum(alg Algorithm, v bencode.Value) ([]byte, error) {
	h, err := alg.New()
	if err != nil {
		return nil, err
	}
	if err := bencode.NewEncoder(h, bencode.SortKeys()).Encode(v); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// ErrNoInfo is returned by InfoHash when v is not a dictionary with a
// dictionary-valued "info" entry.
var ErrNoInfo = errors.New("digest: no info dictionary")

// InfoHash returns the SHA-1 of the "info" dictionary encoded in its
// stored order.
func InfoHash(v bencode.Value) ([20]byte, error) {
	var sum [20]byte

	info, ok := v.Get("info")
	if !ok || info.Kind() != bencode.KindDictionary {
		return sum, ErrNoInfo
	}

	h := sha1.New()
	if err := bencode.NewEncoder(h).Encode(info); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
