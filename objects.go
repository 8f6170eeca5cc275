package abundle

// ObjectInfo locates one object's serialized bytes within a serialized
// file's data region, and names the type-tree entry describing it.
type ObjectInfo struct {
	LocalIdentifier int64
	ByteStart       uint32
	ByteSize        uint32
	TypeID          uint32

	// Type is the resolved type-tree name for TypeID, filled in by the
	// serialized-file reader once all type-trees are known.
	Type string
}

func readObjectInfo(s *Stream) (ObjectInfo, error) {
	var o ObjectInfo
	var err error
	if o.LocalIdentifier, err = s.S64(); err != nil {
		return o, err
	}
	if o.ByteStart, err = s.U32(); err != nil {
		return o, err
	}
	if o.ByteSize, err = s.U32(); err != nil {
		return o, err
	}
	if o.TypeID, err = s.U32(); err != nil {
		return o, err
	}
	return o, nil
}

// ScriptTypeInfo binds a MonoScript-backed object to the serialized
// file it's defined in.
type ScriptTypeInfo struct {
	LocalSerializedFileIndex int32
	LocalIdentifier          int64
}

func readScriptTypeInfo(s *Stream) (ScriptTypeInfo, error) {
	var sc ScriptTypeInfo
	var err error
	if sc.LocalSerializedFileIndex, err = s.S32(); err != nil {
		return sc, err
	}
	if err := s.Align(4); err != nil {
		return sc, err
	}
	if sc.LocalIdentifier, err = s.S64(); err != nil {
		return sc, err
	}
	return sc, nil
}

// ExternalInfo references an object defined in another serialized file.
type ExternalInfo struct {
	GUID [16]byte
	Type int32
	Path string
}

func readExternalInfo(s *Stream) (ExternalInfo, error) {
	var e ExternalInfo
	if _, err := s.ReadCString(); err != nil { // discarded per format
		return e, err
	}
	guid, err := s.Read(16)
	if err != nil {
		return e, err
	}
	copy(e.GUID[:], guid)
	if e.Type, err = s.S32(); err != nil {
		return e, err
	}
	if e.Path, err = s.ReadCString(); err != nil {
		return e, err
	}
	return e, nil
}
