/*

Package abundle is a decoder/parser for game-engine asset-container
bundles: an outer, possibly LZ4/LZMA-compressed, blocked archive
("UnityFS") that wraps one or more serialized files full of
type-tree-described objects.

This is not a full implementation of the engine's runtime; it covers
the container, the serialized-file metadata, and a generic
type-tree-driven deserializer that turns raw object bytes into a
structured Value tree. Writing/serializing the format back out,
interpreting asset semantics beyond the decoded field dictionaries, and
any CLI/formatting layer are out of scope.

Information sources:

- Format notes reconstructed from a reference Python implementation
  (stream/header/type-tree decoding).

- The general shape of "signature, blocks-info, concatenated
  decompressed blocks, directory of named sub-streams" is the same one
  used by other block-compressed container formats (MPQ, SquashFS).

Type-tree nodes are a flat, pre-order, depth-annotated field list; see
typetree.go for the registrar that turns that list into per-node
ClassViews, and deserialize.go for the walker that consumes a ClassView
against a byte stream.

*/
package abundle
