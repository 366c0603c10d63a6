package contentref

import (
	"errors"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

var (
	ErrEmptyContent = errors.New("content is empty")
	ErrInvalidRef   = errors.New("invalid content reference")
	ErrNotFound     = errors.New("content not found")
)

// Store is the opaque content-reference service. The custody engines never
// interpret reference contents; they carry the reference string through
// state transitions. Off-core callers mint references here and resolve them
// after reveal.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Put stores a blob and returns its CIDv1 (raw codec, sha2-256) reference.
func (s *Store) Put(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}
	digest, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	ref := cid.NewCidV1(uint64(multicodec.Raw), digest).String()

	s.mu.Lock()
	s.blobs[ref] = append([]byte(nil), data...)
	s.mu.Unlock()
	return ref, nil
}

// Resolve returns the blob a reference points at.
func (s *Store) Resolve(ref string) ([]byte, error) {
	if err := Validate(ref); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Validate checks that a reference is a well-formed CID.
func Validate(ref string) error {
	if ref == "" {
		return ErrInvalidRef
	}
	if _, err := cid.Decode(ref); err != nil {
		return ErrInvalidRef
	}
	return nil
}
