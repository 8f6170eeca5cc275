package abundle

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// TypeCache persists the verbatim byte range consumed when decoding an
// inline type-tree, keyed by (persistent_type_id, type_hash), so files
// that strip their type-trees can still be decoded against a
// previously seen copy. Writes are atomic (write-to-temp, rename on
// close); reads race safely against a finished file.
type TypeCache struct {
	dir string
}

// NewTypeCache returns a TypeCache rooted at dir. The directory is
// created on first write if it doesn't already exist.
func NewTypeCache(dir string) *TypeCache {
	return &TypeCache{dir: dir}
}

func (c *TypeCache) path(persistentTypeID int32, typeHash [16]byte) string {
	name := fmt.Sprintf("%d_%s.type", persistentTypeID, hex.EncodeToString(typeHash[:]))
	return filepath.Join(c.dir, name)
}

// Put writes the raw bytes for a (persistentTypeID, typeHash) pair.
// Safe for concurrent callers: each writer targets its own temp file
// and renameio.WriteFile performs the atomic rename.
func (c *TypeCache) Put(persistentTypeID int32, typeHash [16]byte, raw []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("type cache mkdir: %w", err)
	}
	return renameio.WriteFile(c.path(persistentTypeID, typeHash), raw, 0o644)
}

// Get reads back a previously cached byte range, or (nil, false) if
// none exists.
func (c *TypeCache) Get(persistentTypeID int32, typeHash [16]byte) ([]byte, bool) {
	raw, err := os.ReadFile(c.path(persistentTypeID, typeHash))
	if err != nil {
		return nil, false
	}
	return raw, true
}
