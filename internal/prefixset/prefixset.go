package prefixset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/Guo-astro/fuzzy-phrase/internal/flatstore"
)

// PrefixSet is a read-only, mmap-backed ordered dictionary of strings to
// dense uint32 ids, loaded the way the teacher analyzer loads its DAWG:
// map the whole file, parse a fixed header off the front, then reinterpret
// the remaining byte ranges as typed slices with no copy.
type PrefixSet struct {
	nodes []FlatNode
	edges []FlatEdge
	data  mmap.MMap
}

// Open maps path and validates it as a prefix.fst image.
func Open(path string) (*PrefixSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("prefixset: opening %s: %w", path, err)
	}
	defer file.Close()

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("prefixset: mmap %s: %w", path, err)
	}

	var hdr Header
	hdrSize := int(unsafe.Sizeof(hdr))
	if len(data) < hdrSize {
		_ = data.Unmap()
		return nil, fmt.Errorf("prefixset: %s is too small for a header", path)
	}
	if err := binary.Read(bytes.NewReader(data[:hdrSize]), binary.LittleEndian, &hdr); err != nil {
		_ = data.Unmap()
		return nil, fmt.Errorf("prefixset: reading header of %s: %w", path, err)
	}
	if hdr.Magic != magic {
		_ = data.Unmap()
		return nil, fmt.Errorf("prefixset: %s has an invalid signature", path)
	}

	nodes := flatstore.BytesToSlice[FlatNode](data[hdr.NodesOffset : hdr.NodesOffset+hdr.NodesCount*int64(unsafe.Sizeof(FlatNode{}))])
	edges := flatstore.BytesToSlice[FlatEdge](data[hdr.EdgesOffset : hdr.EdgesOffset+hdr.EdgesCount*int64(unsafe.Sizeof(FlatEdge{}))])

	return &PrefixSet{nodes: nodes, edges: edges, data: data}, nil
}

// Close unmaps the backing file. The PrefixSet must not be used afterward.
func (p *PrefixSet) Close() error {
	if p.data == nil {
		return nil
	}
	return p.data.Unmap()
}

// Len reports how many keys the set holds.
func (p *PrefixSet) Len() int {
	count := 0
	for _, n := range p.nodes {
		if n.IsFinal {
			count++
		}
	}
	return count
}

// findChild performs a binary search over nodeIdx's contiguous, sorted
// edge block for the edge labeled by c, mirroring the teacher's
// findChildGeneral.
func (p *PrefixSet) findChild(nodeIdx uint32, c byte) (uint32, bool) {
	node := p.nodes[nodeIdx]
	if node.EdgesLen == 0 {
		return 0, false
	}
	window := p.edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
	i := sort.Search(len(window), func(i int) bool { return window[i].Byte >= c })
	if i < len(window) && window[i].Byte == c {
		return window[i].NodeID, true
	}
	return 0, false
}

// walk follows key from the root, returning the index of the node reached
// and whether the full key was consumable.
func (p *PrefixSet) walk(key string) (uint32, bool) {
	node := uint32(0)
	for i := 0; i < len(key); i++ {
		next, ok := p.findChild(node, key[i])
		if !ok {
			return 0, false
		}
		node = next
	}
	return node, true
}

// Get returns the id assigned to key, if key was inserted.
func (p *PrefixSet) Get(key string) (uint32, bool) {
	if len(p.nodes) == 0 {
		return 0, false
	}
	node, ok := p.walk(key)
	if !ok {
		return 0, false
	}
	n := p.nodes[node]
	if !n.IsFinal {
		return 0, false
	}
	return n.ID, true
}

// ContainsPrefix reports whether any stored key has prefix as a prefix
// (including prefix itself).
func (p *PrefixSet) ContainsPrefix(prefix string) bool {
	if len(p.nodes) == 0 {
		return prefix == ""
	}
	_, ok := p.walk(prefix)
	return ok
}

// GetPrefixRange returns the inclusive [lo, hi] id range of every key that
// has prefix as a prefix, since ids are assigned in the same ascending
// order as keys. ok is false if no stored key has this prefix. The bounds
// are handed straight to phraseset.TokenVariant.RangeLo/RangeHi, which are
// themselves inclusive.
func (p *PrefixSet) GetPrefixRange(prefix string) (lo, hi uint32, ok bool) {
	if len(p.nodes) == 0 {
		return 0, 0, false
	}
	node, reached := p.walk(prefix)
	if !reached {
		return 0, 0, false
	}

	found := false
	min := uint32(0)
	max := uint32(0)
	p.collectIDRange(node, &found, &min, &max)
	if !found {
		return 0, 0, false
	}
	return min, max, true
}

// collectIDRange performs a depth-first walk of the subtree rooted at
// nodeIdx to find the minimum and maximum assigned id beneath it. Because
// ids are assigned in the strictly ascending key order every subtree's ids
// form a contiguous range, so min/max fully describes it.
func (p *PrefixSet) collectIDRange(nodeIdx uint32, found *bool, min, max *uint32) {
	node := p.nodes[nodeIdx]
	if node.IsFinal {
		if !*found {
			*min, *max = node.ID, node.ID
			*found = true
		} else {
			if node.ID < *min {
				*min = node.ID
			}
			if node.ID > *max {
				*max = node.ID
			}
		}
	}
	window := p.edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
	for _, e := range window {
		p.collectIDRange(e.NodeID, found, min, max)
	}
}

// Entry is one (key, id) pair produced by Stream.
type Entry struct {
	Key string
	ID  uint32
}

// Stream reconstructs every stored key in ascending order, the flattened
// equivalent of the teacher's dfsGenerate, used to rebuild a word list from
// a prefix.fst image without a side index.
func (p *PrefixSet) Stream() []Entry {
	var out []Entry
	if len(p.nodes) == 0 {
		return out
	}
	var walk func(nodeIdx uint32, prefix []byte)
	walk = func(nodeIdx uint32, prefix []byte) {
		node := p.nodes[nodeIdx]
		if node.IsFinal {
			out = append(out, Entry{Key: string(prefix), ID: node.ID})
		}
		window := p.edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
		for _, e := range window {
			walk(e.NodeID, append(prefix, e.Byte))
		}
	}
	walk(0, nil)
	return out
}
