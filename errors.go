package abundle

import "errors"

// Sentinel errors for the error kinds described in the format's error
// handling design. Wrap these with fmt.Errorf("...: %w", ErrX) so
// callers can still errors.Is against the kind.
var (
	// ErrFormatError indicates a signature or version mismatch, or a
	// negative length-prefixed string length or array count.
	ErrFormatError = errors.New("abundle: format error")

	// ErrEndOfStream indicates fewer bytes remained than a read required.
	ErrEndOfStream = errors.New("abundle: end of stream")

	// ErrCorruptArchive indicates a decompression size mismatch, residual
	// bytes after block reassembly, or a violated archive invariant.
	ErrCorruptArchive = errors.New("abundle: corrupt archive")

	// ErrUnknownType indicates a composite field referenced a type-tree
	// node index absent from the registered class map.
	ErrUnknownType = errors.New("abundle: unknown type index")

	// ErrDecodeDesync indicates the post-decode stream position didn't
	// land on data_offset+byte_start+byte_size for an object.
	ErrDecodeDesync = errors.New("abundle: decode desync")

	// ErrMissingTypeTree indicates a type-tree was stripped from the
	// stream and no cached copy could be found. This kind is NOT fatal:
	// callers decoding a whole file should skip the affected object and
	// continue with the next one.
	ErrMissingTypeTree = errors.New("abundle: missing type tree")

	// ErrUnsupportedCompression indicates a StorageBlock compression kind
	// with no available decoder (currently LZHAM).
	ErrUnsupportedCompression = errors.New("abundle: unsupported compression kind")
)
