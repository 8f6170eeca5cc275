package abundle

import "fmt"

// MonoBehaviourPersistentID is the engine-assigned persistent type id
// that denotes MonoBehaviour and carries an extra 16-byte script hash.
const MonoBehaviourPersistentID = 114

// TypeTree is the structural description of one class: its identity,
// the flat pre-order field list, and (after RegisterTypeTree) the
// index-keyed class map the deserializer walks.
type TypeTree struct {
	PersistentTypeID int32
	IsStripped       bool
	ScriptTypeIndex  int16
	ScriptTypeHash   [16]byte // only meaningful when PersistentTypeID == MonoBehaviourPersistentID
	TypeHash         [16]byte

	Fields  []TypeField
	strings map[uint32]string

	// Name is the root field's type string, i.e. the class name.
	Name string

	// ClassMap maps a field's Index to its ClassView, built by
	// RegisterTypeTree. Nil until registration runs.
	ClassMap map[int32]*ClassView
}

// ClassView is a field plus its direct (not transitive) children, used
// by the deserializer to walk one level of the object tree at a time.
type ClassView struct {
	Name     string
	Index    int32
	Fields   []*TypeField
	TypeTree *TypeTree
}

// decodeTypeTree reads one type-tree entry: the common header, then
// either the inline node list + string region (when typeTreeEnabled),
// or nothing (the caller falls back to the external cache).
func decodeTypeTree(s *Stream, typeTreeEnabled bool) (*TypeTree, error) {
	t := &TypeTree{}

	var err error
	if t.PersistentTypeID, err = s.S32(); err != nil {
		return nil, err
	}
	if t.IsStripped, err = s.Bool(); err != nil {
		return nil, err
	}
	var scriptIdx int16
	if scriptIdx, err = s.S16(); err != nil {
		return nil, err
	}
	t.ScriptTypeIndex = scriptIdx

	if t.PersistentTypeID == MonoBehaviourPersistentID {
		h, err := s.Read(16)
		if err != nil {
			return nil, err
		}
		copy(t.ScriptTypeHash[:], h)
	}

	h, err := s.Read(16)
	if err != nil {
		return nil, err
	}
	copy(t.TypeHash[:], h)

	if !typeTreeEnabled {
		return t, nil
	}

	if err := decodeTypeTreeBody(s, t); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeTypeTreeBody(s *Stream, t *TypeTree) error {
	nodeCount, err := s.U32()
	if err != nil {
		return err
	}
	charCount, err := s.U32()
	if err != nil {
		return err
	}

	t.Fields = make([]TypeField, 0, nodeCount)
	var prevIndex int32 = -1
	for i := uint32(0); i < nodeCount; i++ {
		f, err := readTypeField(s)
		if err != nil {
			return err
		}
		if prevIndex >= 0 && f.Index != prevIndex+1 {
			return fmt.Errorf("type field index %d does not follow %d: %w", f.Index, prevIndex, ErrCorruptArchive)
		}
		prevIndex = f.Index
		t.Fields = append(t.Fields, f)
	}

	t.strings = map[uint32]string{}
	if charCount > 0 {
		regionStart := s.Position()
		size := int64(0)
		for size+1 < int64(charCount) {
			offset := uint32(s.Position() - regionStart)
			before := s.Position()
			str, err := s.ReadCString()
			if err != nil {
				return err
			}
			t.strings[offset] = str
			size += s.Position() - before
		}
		if s.Position()-regionStart != int64(charCount) {
			return fmt.Errorf("string region consumed %d bytes, expected %d: %w", s.Position()-regionStart, charCount, ErrCorruptArchive)
		}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		f.Name = resolveString(f.NameStrOffset, t.strings)
		f.Type = resolveString(f.TypeStrOffset, t.strings)
	}

	if len(t.Fields) > 0 {
		t.Name = t.Fields[0].Type
	}
	return nil
}

// frame is one level of the registrar's parent stack: the field that
// owns this level, and the direct children accumulated for it so far.
type frame struct {
	parent   *TypeField
	children []*TypeField
}

// RegisterTypeTree builds TypeTree.ClassMap from the tree's flat field
// list: a single pass with a stack of frames, one per nesting level.
func RegisterTypeTree(t *TypeTree) {
	t.ClassMap = map[int32]*ClassView{}
	if len(t.Fields) == 0 {
		return
	}

	materialize := func(fr frame) {
		t.ClassMap[fr.parent.Index] = &ClassView{
			Name:     fr.parent.Type,
			Index:    fr.parent.Index,
			Fields:   fr.children,
			TypeTree: t,
		}
	}

	var stack []frame
	var cursor *TypeField
	for i := range t.Fields {
		node := &t.Fields[i]
		if cursor == nil {
			cursor = node
			continue
		}
		switch {
		case cursor.Level == node.Level:
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, node)
		case cursor.Level < node.Level:
			stack = append(stack, frame{parent: cursor, children: []*TypeField{node}})
		default: // cursor.Level > node.Level
			for d := 0; d < int(cursor.Level-node.Level); d++ {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				materialize(top)
			}
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, node)
		}
		cursor = node
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		materialize(top)
	}

	// The root is always present, even for a fieldless single-node tree.
	root := &t.Fields[0]
	if _, ok := t.ClassMap[root.Index]; !ok {
		t.ClassMap[root.Index] = &ClassView{Name: root.Type, Index: root.Index, TypeTree: t}
	}
}
