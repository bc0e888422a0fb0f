package prefixset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"unsafe"

	"github.com/Guo-astro/fuzzy-phrase/internal/flatstore"
)

// trieNode is the in-memory build-time representation: a plain map-keyed
// trie, generalizing the teacher's in-memory Node (map[rune]*Node) from
// runes to bytes.
type trieNode struct {
	children map[byte]*trieNode
	isFinal  bool
	id       uint32
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// Builder accumulates keys in strictly ascending order and flattens them
// into a prefix.fst image on Finish, mirroring the write side the teacher
// analyzer only reads (LoadMorphAnalyzer's flat arrays have no builder
// counterpart there; the flatten logic here is new, grounded on the shape
// the teacher's loader expects).
type Builder struct {
	root    *trieNode
	lastKey string
	hasLast bool
	count   uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{root: newTrieNode()}
}

// Insert adds key with the given id. Keys must be inserted in strictly
// ascending byte order (spec.md §6); a key equal to or less than the
// previous insertion is rejected.
func (b *Builder) Insert(key string, id uint32) error {
	if b.hasLast && key <= b.lastKey {
		return fmt.Errorf("prefixset: key %q is not strictly greater than previous key %q", key, b.lastKey)
	}
	node := b.root
	for i := 0; i < len(key); i++ {
		c := key[i]
		child, ok := node.children[c]
		if !ok {
			child = newTrieNode()
			node.children[c] = child
		}
		node = child
	}
	node.isFinal = true
	node.id = id
	b.lastKey = key
	b.hasLast = true
	b.count++
	return nil
}

// Len reports how many keys have been inserted so far.
func (b *Builder) Len() int {
	return int(b.count)
}

// flattener walks the in-memory trie in preorder, reserving each node's
// slot before descending into its children so the root always lands at
// index 0, then appending that node's own edge block only after every
// child has been assigned an index. The result is that each node's edges
// are stored contiguously (satisfying EdgesIdx/EdgesLen), even though a
// node's edge block is written to the shared array strictly after all of
// its descendants' blocks.
type flattener struct {
	nodes []FlatNode
	edges []FlatEdge
}

func (f *flattener) assign(n *trieNode) uint32 {
	idx := uint32(len(f.nodes))
	f.nodes = append(f.nodes, FlatNode{})

	keys := make([]byte, 0, len(n.children))
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
		f.edges = append(f.edges, FlatEdge{Byte: k, NodeID: childIdxs[i]})
	}

	f.nodes[idx] = FlatNode{
		EdgesIdx: edgesIdx,
		EdgesLen: uint32(len(keys)),
		ID:       n.id,
		IsFinal:  n.isFinal,
	}
	return idx
}

// Finish flattens the trie and writes a complete prefix.fst image: a fixed
// Header followed by the node array and edge array, in the same
// header-then-flat-arrays layout as the teacher's DAWG file.
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
		return fmt.Errorf("prefixset: writing header: %w", err)
	}
	if _, err := bw.Write(flatstore.SliceToBytes(f.nodes)); err != nil {
		return fmt.Errorf("prefixset: writing nodes: %w", err)
	}
	if _, err := bw.Write(flatstore.SliceToBytes(f.edges)); err != nil {
		return fmt.Errorf("prefixset: writing edges: %w", err)
	}
	return bw.Flush()
}
