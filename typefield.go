package abundle

// builtinStrings is the static table of interned engine primitive-type
// and common field names, indexed by the offset a TypeField stores
// with its high bit (0x80000000) set, masked off.
//
// The table mirrors the fixed string bank every type-tree decoder
// built against this format ships; offsets are the byte positions the
// engine's own encoder happens to assign in that bank, not something
// we're free to renumber.
var builtinStrings = map[uint32]string{
	0:    "AABB",
	5:    "AnimationClip",
	19:   "AnimationCurve",
	34:   "AnimationState",
	49:   "Array",
	55:   "Base",
	60:   "BitField",
	69:   "bitset",
	76:   "bool",
	81:   "char",
	86:   "ColorRGBA",
	96:   "Component",
	106:  "data",
	111:  "deque",
	117:  "double",
	124:  "dynamic_array",
	138:  "FastPropertyName",
	155:  "first",
	161:  "float",
	167:  "Font",
	172:  "GameObject",
	183:  "Generic Mono",
	196:  "GradientNEW",
	208:  "GUID",
	213:  "GUIStyle",
	222:  "int",
	226:  "list",
	231:  "long long",
	241:  "map",
	245:  "Matrix4x4f",
	256:  "MdFour",
	263:  "MonoBehaviour",
	277:  "MonoScript",
	288:  "m_ByteSize",
	299:  "m_Curve",
	307:  "m_EditorClassIdentifier",
	331:  "m_EditorHideFlags",
	349:  "m_Enabled",
	359:  "m_ExtensionPtr",
	374:  "m_GameObject",
	387:  "m_Index",
	395:  "m_IsArray",
	405:  "m_IsStatic",
	416:  "m_MetaFlag",
	427:  "m_Name",
	434:  "m_ObjectHideFlags",
	452:  "m_PrefabInternal",
	469:  "m_PrefabParentObject",
	490:  "m_Script",
	499:  "m_StaticEditorFlags",
	519:  "m_Type",
	526:  "m_Version",
	536:  "Object",
	543:  "pair",
	548:  "PPtr<Component>",
	564:  "PPtr<GameObject>",
	581:  "PPtr<Material>",
	596:  "PPtr<MonoBehaviour>",
	616:  "PPtr<MonoScript>",
	633:  "PPtr<Object>",
	646:  "PPtr<Prefab>",
	659:  "PPtr<Sprite>",
	672:  "PPtr<TextAsset>",
	688:  "PPtr<Texture>",
	702:  "PPtr<Texture2D>",
	718:  "PPtr<Transform>",
	734:  "Prefab",
	741:  "Quaternionf",
	753:  "Rectf",
	759:  "RectInt",
	767:  "RectOffset",
	778:  "second",
	785:  "set",
	789:  "short",
	795:  "size",
	800:  "SInt16",
	807:  "SInt32",
	814:  "SInt64",
	821:  "SInt8",
	827:  "staticvector",
	840:  "string",
	847:  "TextAsset",
	857:  "TextMesh",
	866:  "Texture",
	874:  "Texture2D",
	884:  "Transform",
	894:  "TypelessData",
	907:  "UInt16",
	914:  "UInt32",
	921:  "UInt64",
	928:  "UInt8",
	934:  "unsigned int",
	947:  "unsigned long long",
	967:  "unsigned short",
	982:  "vector",
	989:  "Vector2f",
	998:  "Vector3f",
	1007: "Vector4f",
	1016: "m_ScriptingClassIdentifier",
	1043: "Gradient",
	1052: "Type*",
	1058: "int2_storage",
	1071: "int3_storage",
	1084: "BoundsInt",
	1094: "m_CorrespondingSourceObject",
	1122: "m_PrefabInstance",
	1139: "m_PrefabAsset",
	1153: "FileSize",
	1162: "Hash128",
}

// highBit flags an offset as residing in the static builtin table
// rather than a type-tree's own per-tree string region.
const highBit uint32 = 0x80000000

// resolveString resolves a (name or type) string from its stored
// offset: the high bit selects the static builtin table, otherwise the
// offset is looked up in this tree's own interned string region.
func resolveString(offset uint32, perTree map[uint32]string) string {
	if offset&highBit != 0 {
		if s, ok := builtinStrings[offset&^highBit]; ok {
			return s
		}
		return ""
	}
	return perTree[offset]
}

// TypeField is one pre-order node of a type-tree's flat field list.
type TypeField struct {
	Version       int16
	Level         uint8
	IsArray       bool
	TypeStrOffset uint32
	NameStrOffset uint32
	ByteSize      int32
	Index         int32
	MetaFlags     uint32

	// Name and Type are resolved from their *StrOffset fields via
	// resolveString once the tree's string region has been read.
	Name string
	Type string
}

// AlignAfter reports whether the "align after field" meta flag is set.
func (f TypeField) AlignAfter() bool {
	return f.MetaFlags&0x4000 != 0
}

func readTypeField(s *Stream) (TypeField, error) {
	var f TypeField
	var err error
	if f.Version, err = s.S16(); err != nil {
		return f, err
	}
	if f.Level, err = s.U8(); err != nil {
		return f, err
	}
	if f.IsArray, err = s.Bool(); err != nil {
		return f, err
	}
	if f.TypeStrOffset, err = s.U32(); err != nil {
		return f, err
	}
	if f.NameStrOffset, err = s.U32(); err != nil {
		return f, err
	}
	if f.ByteSize, err = s.S32(); err != nil {
		return f, err
	}
	if f.Index, err = s.S32(); err != nil {
		return f, err
	}
	if f.MetaFlags, err = s.U32(); err != nil {
		return f, err
	}
	return f, nil
}
