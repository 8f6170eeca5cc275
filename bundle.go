package abundle

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Options configures a Bundle's construction.
type Options struct {
	// Logger receives structured warnings (e.g. a skipped object due to
	// a missing type tree) and debug traces. Defaults to a no-op logger.
	Logger zerolog.Logger

	// TypeCacheDir, when non-empty, backs a TypeCache used to persist
	// inline type-trees and rehydrate stripped ones across opens.
	TypeCacheDir string
}

// Bundle describes an open archive bundle and provides access to its
// directory of serialized files.
type Bundle struct {
	file    *os.File // optional source file
	archive *Archive
	cache   *TypeCache
	opts    Options
}

// NewFromFile opens an archive bundle from a file path. The returned
// Bundle must be closed with Close.
func NewFromFile(name string, opts *Options) (*Bundle, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	b, err := newBundle(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	b.file = f
	return b, nil
}

// New opens an archive bundle from an in-memory or otherwise seekable
// source. The returned Bundle must be closed with Close.
func New(r io.ReadSeeker, opts *Options) (*Bundle, error) {
	return newBundle(r, opts)
}

func newBundle(r io.ReadSeeker, opts *Options) (*Bundle, error) {
	var o Options
	if opts != nil {
		o = *opts
	}

	b := &Bundle{opts: o}
	if o.TypeCacheDir != "" {
		b.cache = NewTypeCache(o.TypeCacheDir)
	}

	archive, err := OpenArchive(NewStream(r), o.Logger)
	if err != nil {
		return nil, err
	}
	b.archive = archive
	return b, nil
}

// Directory returns the archive's table of FileNodes.
func (b *Bundle) Directory() DirectoryInfo {
	return b.archive.Directory
}

// OpenSerializedFile parses the serialized file located at node.
func (b *Bundle) OpenSerializedFile(node FileNode) (*SerializedFile, error) {
	return ReadSerializedFile(b.archive.Logical, node, b.cache, b.opts.Logger)
}

// SerializedFileByPath finds the first directory node with the given
// path and parses it as a serialized file. Returns (nil, nil) if no
// node matches.
func (b *Bundle) SerializedFileByPath(path string) (*SerializedFile, error) {
	for _, n := range b.archive.Directory.Nodes {
		if n.Path == path {
			return b.OpenSerializedFile(n)
		}
	}
	return nil, nil
}

// Close releases the Bundle's resources.
func (b *Bundle) Close() error {
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}
