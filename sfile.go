package abundle

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SerializedFileHeader is the fixed leading structure of a serialized
// file, always read in little-endian regardless of the body's
// declared endianess.
type SerializedFileHeader struct {
	MetadataSize int32
	FileSize     int32
	Version      int32
	DataOffset   int32
	Endianess    uint8
}

func readSerializedFileHeader(s *Stream) (SerializedFileHeader, error) {
	var h SerializedFileHeader
	var err error
	if h.MetadataSize, err = s.S32(); err != nil {
		return h, err
	}
	if h.FileSize, err = s.S32(); err != nil {
		return h, err
	}
	if h.Version, err = s.S32(); err != nil {
		return h, err
	}
	if h.DataOffset, err = s.S32(); err != nil {
		return h, err
	}
	if h.Endianess, err = s.U8(); err != nil {
		return h, err
	}
	if _, err = s.Read(3); err != nil { // reserved
		return h, err
	}
	return h, nil
}

// SerializedFile is the decoded metadata of one inner file within an
// archive: its type-trees, object table, script-type table, and
// external reference table.
type SerializedFile struct {
	Header       SerializedFileHeader
	UnityVersion string
	Platform     uint32
	TypeTreeOn   bool

	Types      []*TypeTree
	Objects    []ObjectInfo
	Scripts    []ScriptTypeInfo
	Externals  []ExternalInfo

	stream *Stream
}

// ReadSerializedFile parses a serialized file located at node within
// the archive's logical stream. The type cache (may be nil) is used to
// persist freshly-seen inline type-trees and to recover stripped ones.
func ReadSerializedFile(logical *Stream, node FileNode, cache *TypeCache, log zerolog.Logger) (*SerializedFile, error) {
	if _, err := logical.Seek(node.Offset, SeekSet); err != nil {
		return nil, fmt.Errorf("seek to node %q: %w", node.Path, err)
	}

	// The header is little-endian whatever order a previously opened
	// file left on the shared stream.
	logical.SetEndian(false)
	header, err := readSerializedFileHeader(logical)
	if err != nil {
		return nil, fmt.Errorf("serialized file header: %w", err)
	}
	if int64(header.FileSize) != node.Size {
		return nil, fmt.Errorf("file_size %d != node.size %d: %w", header.FileSize, node.Size, ErrCorruptArchive)
	}
	logical.SetEndian(header.Endianess != 0)

	sf := &SerializedFile{Header: header, stream: logical}

	if sf.UnityVersion, err = logical.ReadCString(); err != nil {
		return nil, err
	}
	if sf.Platform, err = logical.U32(); err != nil {
		return nil, err
	}
	typeTreeOn, err := logical.Bool()
	if err != nil {
		return nil, err
	}
	sf.TypeTreeOn = typeTreeOn

	typeCount, err := logical.U32()
	if err != nil {
		return nil, err
	}
	sf.Types = make([]*TypeTree, typeCount)
	for i := uint32(0); i < typeCount; i++ {
		start := logical.Position()
		tt, err := decodeTypeTree(logical, sf.TypeTreeOn)
		if err != nil {
			return nil, fmt.Errorf("type tree %d: %w", i, err)
		}

		if sf.TypeTreeOn && cache != nil {
			raw := make([]byte, logical.Position()-start)
			if _, serr := logical.Seek(start, SeekSet); serr == nil {
				raw, _ = logical.Read(int(len(raw)))
			}
			if err := cache.Put(tt.PersistentTypeID, tt.TypeHash, raw); err != nil {
				log.Warn().Err(err).Msg("failed to persist type tree to cache")
			}
		} else if !sf.TypeTreeOn && cache != nil && len(tt.Fields) == 0 {
			if raw, ok := cache.Get(tt.PersistentTypeID, tt.TypeHash); ok {
				cached := NewStreamBytes(raw)
				cached.SetEndian(header.Endianess != 0)
				if rehydrated, err := decodeTypeTree(cached, true); err == nil {
					tt = rehydrated
				} else {
					log.Warn().Err(err).Msg("failed to rehydrate cached type tree")
				}
			}
		}

		if len(tt.Fields) > 0 {
			RegisterTypeTree(tt)
		}
		sf.Types[i] = tt
	}

	objectCount, err := logical.S32()
	if err != nil {
		return nil, err
	}
	sf.Objects = make([]ObjectInfo, objectCount)
	for i := int32(0); i < objectCount; i++ {
		if err := logical.Align(4); err != nil {
			return nil, err
		}
		o, err := readObjectInfo(logical)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if int(o.TypeID) < len(sf.Types) {
			o.Type = sf.Types[o.TypeID].Name
		}
		sf.Objects[i] = o
	}

	scriptCount, err := logical.S32()
	if err != nil {
		return nil, err
	}
	sf.Scripts = make([]ScriptTypeInfo, scriptCount)
	for i := int32(0); i < scriptCount; i++ {
		sc, err := readScriptTypeInfo(logical)
		if err != nil {
			return nil, fmt.Errorf("script type %d: %w", i, err)
		}
		sf.Scripts[i] = sc
	}

	externalCount, err := logical.S32()
	if err != nil {
		return nil, err
	}
	sf.Externals = make([]ExternalInfo, externalCount)
	for i := int32(0); i < externalCount; i++ {
		e, err := readExternalInfo(logical)
		if err != nil {
			return nil, fmt.Errorf("external %d: %w", i, err)
		}
		sf.Externals[i] = e
	}

	if _, err := logical.ReadCString(); err != nil { // trailing user info, ignored
		return nil, err
	}

	return sf, nil
}

// Deserialize decodes one object's bytes into a structured Value. The
// caller is responsible for having seeked the stream to
// header.DataOffset+o.ByteStart first (DeserializeAll does this).
func (sf *SerializedFile) Deserialize(o ObjectInfo) (Value, error) {
	if int(o.TypeID) >= len(sf.Types) {
		return Value{}, fmt.Errorf("object type id %d out of range: %w", o.TypeID, ErrUnknownType)
	}
	tt := sf.Types[o.TypeID]
	root, ok := tt.ClassMap[0]
	if !ok {
		return Value{}, fmt.Errorf("type %q: %w", tt.Name, ErrMissingTypeTree)
	}

	end := int64(sf.Header.DataOffset) + int64(o.ByteStart) + int64(o.ByteSize)
	v, err := Deserialize(sf.stream, root)
	if err != nil {
		return Value{}, err
	}
	if sf.stream.Position() != end {
		return Value{}, fmt.Errorf("post-decode position %d != expected %d: %w", sf.stream.Position(), end, ErrDecodeDesync)
	}
	return v, nil
}

// DeserializeAll walks every object in declaration order, seeking to
// each one's start first. Objects whose type-tree couldn't be resolved
// (ErrMissingTypeTree) are logged and skipped rather than aborting the
// whole file, since that kind is explicitly non-fatal; any other error
// aborts immediately.
func (sf *SerializedFile) DeserializeAll(log zerolog.Logger) (map[int64]Value, error) {
	out := make(map[int64]Value, len(sf.Objects))
	for i, o := range sf.Objects {
		start := int64(sf.Header.DataOffset) + int64(o.ByteStart)
		if _, err := sf.stream.Seek(start, SeekSet); err != nil {
			return nil, fmt.Errorf("seek object %d: %w", i, err)
		}

		v, err := sf.Deserialize(o)
		if err != nil {
			if errors.Is(err, ErrMissingTypeTree) {
				log.Warn().Int("object", i).Int64("id", o.LocalIdentifier).Msg("skipping object: missing type tree")
				continue
			}
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		out[o.LocalIdentifier] = v
	}
	return out, nil
}
