package abundle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func field(level uint8, index int32, typ, name string) TypeField {
	return TypeField{Level: level, Index: index, Type: typ, Name: name}
}

func TestRegisterTypeTree_FlatSiblings(t *testing.T) {
	// root(0) -> a(1), b(2) : two direct children, no nesting.
	tt := &TypeTree{Fields: []TypeField{
		field(0, 0, "GameObject", "Base"),
		field(1, 1, "int", "m_Layer"),
		field(1, 2, "string", "m_Name"),
	}}

	RegisterTypeTree(tt)

	root, ok := tt.ClassMap[0]
	require.True(t, ok)
	require.Len(t, root.Fields, 2)
	require.Equal(t, "m_Layer", root.Fields[0].Name)
	require.Equal(t, "m_Name", root.Fields[1].Name)
}

func TestRegisterTypeTree_NestedComposite(t *testing.T) {
	// root(0) -> child(1) -> grandchild(2); child has one nested field.
	tt := &TypeTree{Fields: []TypeField{
		field(0, 0, "Transform", "Base"),
		field(1, 1, "Vector3f", "m_LocalPosition"),
		field(2, 2, "float", "x"),
	}}

	RegisterTypeTree(tt)

	root, ok := tt.ClassMap[0]
	require.True(t, ok)
	require.Len(t, root.Fields, 1)
	require.Equal(t, "m_LocalPosition", root.Fields[0].Name)

	child, ok := tt.ClassMap[1]
	require.True(t, ok)
	require.Len(t, child.Fields, 1)
	require.Equal(t, "x", child.Fields[0].Name)
}

func TestRegisterTypeTree_SiblingAfterNestedPopsFrame(t *testing.T) {
	// root(0) -> a(1) -> deep(2); then back to root level -> b(3).
	tt := &TypeTree{Fields: []TypeField{
		field(0, 0, "Obj", "Base"),
		field(1, 1, "Vector3f", "m_Pos"),
		field(2, 2, "float", "x"),
		field(1, 3, "int", "m_Flags"),
	}}

	RegisterTypeTree(tt)

	root := tt.ClassMap[0]
	require.Len(t, root.Fields, 2)
	require.Equal(t, "m_Pos", root.Fields[0].Name)
	require.Equal(t, "m_Flags", root.Fields[1].Name)

	a := tt.ClassMap[1]
	require.Len(t, a.Fields, 1)
	require.Equal(t, "x", a.Fields[0].Name)
}

func TestRegisterTypeTree_RootAlwaysPresentWhenLeaf(t *testing.T) {
	// A single-node, childless tree must still register its root.
	tt := &TypeTree{Fields: []TypeField{
		field(0, 0, "int", "Base"),
	}}

	RegisterTypeTree(tt)

	root, ok := tt.ClassMap[0]
	require.True(t, ok)
	require.Empty(t, root.Fields)
}

func TestRegisterTypeTree_EmptyFieldsProducesEmptyMap(t *testing.T) {
	tt := &TypeTree{}
	RegisterTypeTree(tt)
	require.Empty(t, tt.ClassMap)
}
