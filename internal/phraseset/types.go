// Package phraseset implements the ordered uint32-sequence dictionary
// spec.md §6 calls "PhraseSet": a trie over token-ID sequences rather than
// byte strings, used to recognize which ID sequences correspond to an
// actually-indexed phrase and to walk all combinations reachable from a
// frontier of per-position token-ID candidates (compose.go). Its on-disk
// shape is the same flattened node/edge arrays as internal/prefixset,
// generalized from byte-keyed edges to uint32-keyed edges, grounded on the
// teacher analyzer's Header/FlatNode/FlatEdge/bytesToSlice design.
package phraseset

// magic identifies a phrase.fst file.
var magic = [4]byte{'P', 'H', 'R', '1'}

// Header is the on-disk file map.
type Header struct {
	Magic       [4]byte
	NodesOffset int64
	NodesCount  int64
	EdgesOffset int64
	EdgesCount  int64
}

// FlatNode mirrors prefixset.FlatNode; IsFinal marks the end of a stored
// token-ID sequence (a complete phrase).
type FlatNode struct {
	EdgesIdx uint32
	EdgesLen uint32
	IsFinal  bool
}

// FlatEdge is one outgoing transition keyed by a token ID rather than a
// byte. Edges belonging to one node are stored contiguously and sorted
// ascending by TokenID.
type FlatEdge struct {
	TokenID uint32
	NodeID  uint32
}
