// Package prefixset implements the ordered string -> token-id dictionary
// spec.md §6 calls "PrefixSet": exact lookup, prefix-range lookup (returning
// a numeric ID interval), and ordered streaming. It is a byte-edged trie
// flattened to a binary header plus node/edge arrays and mmap'd at open,
// the same shape as the teacher analyzer's DAWG (analyzer/analyzer.go's
// Header/FlatNode/FlatEdge/bytesToSlice), generalized from rune-keyed edges
// to byte-keyed edges: byte order is what makes ID order equal lexicographic
// string order (spec.md invariant 1).
package prefixset

// magic identifies a prefix.fst file.
var magic = [4]byte{'P', 'F', 'X', '1'}

// Header is the on-disk file map: offsets and counts for the node and edge
// arrays that follow it, mirroring the teacher's Header struct.
type Header struct {
	Magic       [4]byte
	NodesOffset int64
	NodesCount  int64
	EdgesOffset int64
	EdgesCount  int64
}

// FlatNode is a node's "pointer-free" representation: an index range into
// the global edge array, plus whether this node ends a stored string and,
// if so, its assigned token ID.
type FlatNode struct {
	EdgesIdx uint32
	EdgesLen uint32
	ID       uint32 // valid only when IsFinal
	IsFinal  bool
}

// FlatEdge is one outgoing transition: the byte consumed and the index of
// the node reached. Edges belonging to one node are stored contiguously and
// sorted ascending by Byte, so child lookup is a binary search, exactly like
// the teacher's findChildGeneral.
type FlatEdge struct {
	Byte   byte
	NodeID uint32
}
