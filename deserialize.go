package abundle

import "fmt"

// primitiveNames is the set of type-tree primitive type names that
// readPrimitive decodes. "Type*" reads as an unsigned 32-bit engine
// type-id.
var primitiveNames = map[string]bool{
	"bool": true, "SInt8": true, "UInt8": true, "char": true,
	"SInt16": true, "short": true, "UInt16": true, "unsigned short": true,
	"SInt32": true, "int": true, "Type*": true,
	"UInt32": true, "unsigned int": true,
	"SInt64": true, "long": true,
	"UInt64": true, "unsigned long": true,
	"float": true, "double": true,
}

func readPrimitive(s *Stream, typeName string) (Value, error) {
	switch typeName {
	case "bool":
		v, err := s.Bool()
		return Value{Kind: KindBool, Bool: v}, err
	case "SInt8":
		v, err := s.S8()
		return Value{Kind: KindI8, I8: v}, err
	case "UInt8", "char":
		v, err := s.U8()
		return Value{Kind: KindU8, U8: v}, err
	case "SInt16", "short":
		v, err := s.S16()
		return Value{Kind: KindI16, I16: v}, err
	case "UInt16", "unsigned short":
		v, err := s.U16()
		return Value{Kind: KindU16, U16: v}, err
	case "SInt32", "int":
		v, err := s.S32()
		return Value{Kind: KindI32, I32: v}, err
	case "Type*":
		v, err := s.U32()
		return Value{Kind: KindU32, U32: v}, err
	case "UInt32", "unsigned int":
		v, err := s.U32()
		return Value{Kind: KindU32, U32: v}, err
	case "SInt64", "long":
		v, err := s.S64()
		return Value{Kind: KindI64, I64: v}, err
	case "UInt64", "unsigned long":
		v, err := s.U64()
		return Value{Kind: KindU64, U64: v}, err
	case "float":
		v, err := s.F32()
		return Value{Kind: KindF32, F32: v}, err
	case "double":
		v, err := s.F64()
		return Value{Kind: KindF64, F64: v}, err
	default:
		return Value{}, fmt.Errorf("not a primitive type %q", typeName)
	}
}

// readLengthPrefixedString reads an s32 length then that many bytes. A
// negative length is rejected as a format error rather than treated as
// an empty string.
func readLengthPrefixedString(s *Stream) (string, error) {
	n, err := s.S32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("negative string length %d: %w", n, ErrFormatError)
	}
	if n == 0 {
		return "", nil
	}
	b, err := s.Read(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Deserialize walks class against stream, in field order, and produces
// the structured Value the object's bytes encode. class must belong to
// a TypeTree that has already run through RegisterTypeTree.
func Deserialize(s *Stream, class *ClassView) (Value, error) {
	entries := make([]MapEntry, 0, len(class.Fields))
	for _, f := range class.Fields {
		v, err := deserializeField(s, class, f)
		if err != nil {
			return Value{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if v == nil {
			continue // zero-size sentinel field: contributes nothing
		}
		entries = append(entries, MapEntry{Name: f.Name, Value: *v})
	}
	return newMap(entries), nil
}

// deserializeField decodes a single field, returning nil (not an
// error) for the zero-size-sentinel case.
func deserializeField(s *Stream, class *ClassView, f *TypeField) (*Value, error) {
	tt := class.TypeTree

	switch {
	case f.IsArray:
		v, err := deserializeArray(s, tt, f)
		if err != nil {
			return nil, err
		}
		return &v, nil

	case f.Type == "string":
		str, err := readLengthPrefixedString(s)
		if err != nil {
			return nil, err
		}
		if err := s.Align(4); err != nil {
			return nil, err
		}
		v := newString(str)
		return &v, nil

	case primitiveNames[f.Type]:
		v, err := readPrimitive(s, f.Type)
		if err != nil {
			return nil, err
		}
		if f.AlignAfter() {
			if err := s.Align(4); err != nil {
				return nil, err
			}
		}
		return &v, nil

	case f.ByteSize == 0:
		// Base-class marker / sentinel: contributes nothing, advances
		// nothing.
		return nil, nil

	default:
		child, ok := tt.ClassMap[f.Index]
		if !ok {
			return nil, fmt.Errorf("field index %d: %w", f.Index, ErrUnknownType)
		}
		v, err := Deserialize(s, child)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// deserializeArray decodes an array field: the synthetic size:int node
// at f.Index+1 is implicit (we just read the s32 count); the element
// descriptor lives at f.Index+2. Result is always a map with "size"
// and "data" entries.
func deserializeArray(s *Stream, tt *TypeTree, f *TypeField) (Value, error) {
	elemIdx := int(f.Index) + 2
	if elemIdx >= len(tt.Fields) {
		return Value{}, fmt.Errorf("array element descriptor index %d out of range: %w", elemIdx, ErrCorruptArchive)
	}
	elem := &tt.Fields[elemIdx]

	count, err := s.S32()
	if err != nil {
		return Value{}, err
	}
	if count < 0 {
		return Value{}, fmt.Errorf("negative array count %d: %w", count, ErrFormatError)
	}

	var data Value
	switch {
	case elem.ByteSize == 1:
		var blob []byte
		if count > 0 {
			blob, err = s.Read(int(count))
			if err != nil {
				return Value{}, err
			}
		}
		if err := s.Align(4); err != nil {
			return Value{}, err
		}
		data = newBytes(blob)

	case primitiveNames[elem.Type]:
		items := make([]Value, count)
		for i := int32(0); i < count; i++ {
			v, err := readPrimitive(s, elem.Type)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		if err := s.Align(4); err != nil {
			return Value{}, err
		}
		data = newSeq(items)

	case elem.Type == "string":
		items := make([]Value, count)
		for i := int32(0); i < count; i++ {
			str, err := readLengthPrefixedString(s)
			if err != nil {
				return Value{}, err
			}
			if err := s.Align(4); err != nil {
				return Value{}, err
			}
			items[i] = newString(str)
		}
		if err := s.Align(4); err != nil {
			return Value{}, err
		}
		data = newSeq(items)

	default:
		elemClass, ok := tt.ClassMap[elem.Index]
		if !ok {
			return Value{}, fmt.Errorf("array element index %d: %w", elem.Index, ErrUnknownType)
		}
		items := make([]Value, count)
		for i := int32(0); i < count; i++ {
			v, err := Deserialize(s, elemClass)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		if err := s.Align(4); err != nil {
			return Value{}, err
		}
		data = newSeq(items)
	}

	return newMap([]MapEntry{
		{Name: "size", Value: Value{Kind: KindI32, I32: count}},
		{Name: "data", Value: data},
	}), nil
}
