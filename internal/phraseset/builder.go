package phraseset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"unsafe"

	"github.com/Guo-astro/fuzzy-phrase/internal/flatstore"
)

// trieNode is the in-memory build-time representation, keyed by token ID
// instead of byte, generalizing prefixset's trieNode.
type trieNode struct {
	children map[uint32]*trieNode
	isFinal  bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[uint32]*trieNode)}
}

// sequenceLess reports whether a sorts strictly before b in lexicographic
// order over the token-ID alphabet (shorter sequences that are a prefix of
// a longer one sort first, matching string-prefix ordering).
func sequenceLess(a, b []uint32) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Builder accumulates token-ID sequences in strictly ascending order.
type Builder struct {
	root    *trieNode
	last    []uint32
	hasLast bool
	count   uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{root: newTrieNode()}
}

// Insert adds the token-ID sequence ids as a phrase. Sequences must be
// inserted in strictly ascending lexicographic order.
func (b *Builder) Insert(ids []uint32) error {
	if b.hasLast && !sequenceLess(b.last, ids) {
		return fmt.Errorf("phraseset: sequence %v is not strictly greater than previous sequence %v", ids, b.last)
	}
	node := b.root
	for _, id := range ids {
		child, ok := node.children[id]
		if !ok {
			child = newTrieNode()
			node.children[id] = child
		}
		node = child
	}
	node.isFinal = true
	b.last = append([]uint32(nil), ids...)
	b.hasLast = true
	b.count++
	return nil
}

// Len reports how many phrases have been inserted so far.
func (b *Builder) Len() int {
	return int(b.count)
}

// flattener mirrors prefixset's flattener, generalized to uint32-keyed
// edges: reserve a node's slot before recursing into children so the root
// lands at index 0, then append the node's own contiguous edge block after
// every child has been assigned.
type flattener struct {
	nodes []FlatNode
	edges []FlatEdge
}

func (f *flattener) assign(n *trieNode) uint32 {
	idx := uint32(len(f.nodes))
	f.nodes = append(f.nodes, FlatNode{})

	keys := make([]uint32, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	childIdxs := make([]uint32, len(keys))
	for i, k := range keys {
		childIdxs[i] = f.assign(n.children[k])
	}

	edgesIdx := uint32(len(f.edges))
	for i, k := range keys {
		f.edges = append(f.edges, FlatEdge{TokenID: k, NodeID: childIdxs[i]})
	}

	f.nodes[idx] = FlatNode{
		EdgesIdx: edgesIdx,
		EdgesLen: uint32(len(keys)),
		IsFinal:  n.isFinal,
	}
	return idx
}

// Finish flattens the trie and writes a complete phrase.fst image.
func (b *Builder) Finish(w io.Writer) error {
	f := &flattener{}
	f.assign(b.root)

	hdr := Header{
		Magic:       magic,
		NodesOffset: int64(binary.Size(Header{})),
		NodesCount:  int64(len(f.nodes)),
	}
	hdr.EdgesOffset = hdr.NodesOffset + int64(len(f.nodes))*int64(unsafe.Sizeof(FlatNode{}))
	hdr.EdgesCount = int64(len(f.edges))

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("phraseset: writing header: %w", err)
	}
	if _, err := bw.Write(flatstore.SliceToBytes(f.nodes)); err != nil {
		return fmt.Errorf("phraseset: writing nodes: %w", err)
	}
	if _, err := bw.Write(flatstore.SliceToBytes(f.edges)); err != nil {
		return fmt.Errorf("phraseset: writing edges: %w", err)
	}
	return bw.Flush()
}
