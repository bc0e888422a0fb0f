package phraseset

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

// PhraseSet is a read-only, mmap-backed set of token-ID sequences.
type PhraseSet struct {
	nodes []FlatNode
	edges []FlatEdge
	data  mmap.MMap
}

// Open maps path and validates it as a phrase.fst image.
func Open(path string) (*PhraseSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("phraseset: opening %s: %w", path, err)
	}
	defer file.Close()

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("phraseset: mmap %s: %w", path, err)
	}

	var hdr Header
	hdrSize := int(unsafe.Sizeof(hdr))
	if len(data) < hdrSize {
		_ = data.Unmap()
		return nil, fmt.Errorf("phraseset: %s is too small for a header", path)
	}
	if err := binary.Read(bytes.NewReader(data[:hdrSize]), binary.LittleEndian, &hdr); err != nil {
		_ = data.Unmap()
		return nil, fmt.Errorf("phraseset: reading header of %s: %w", path, err)
	}
	if hdr.Magic != magic {
		_ = data.Unmap()
		return nil, fmt.Errorf("phraseset: %s has an invalid signature", path)
	}

	nodes := flatstore.BytesToSlice[FlatNode](data[hdr.NodesOffset : hdr.NodesOffset+hdr.NodesCount*int64(unsafe.Sizeof(FlatNode{}))])
	edges := flatstore.BytesToSlice[FlatEdge](data[hdr.EdgesOffset : hdr.EdgesOffset+hdr.EdgesCount*int64(unsafe.Sizeof(FlatEdge{}))])

	return &PhraseSet{nodes: nodes, edges: edges, data: data}, nil
}

// Close unmaps the backing file.
func (p *PhraseSet) Close() error {
	if p.data == nil {
		return nil
	}
	return p.data.Unmap()
}

// Root returns the index of the root node (always 0), the starting point
// for a combination walk in compose.go.
func (p *PhraseSet) Root() uint32 {
	return 0
}

// IsFinal reports whether nodeIdx ends a stored phrase.
func (p *PhraseSet) IsFinal(nodeIdx uint32) bool {
	return p.nodes[nodeIdx].IsFinal
}

// Child performs a binary search over nodeIdx's contiguous, sorted edge
// block for the edge labeled by tokenID, mirroring prefixset.findChild.
func (p *PhraseSet) Child(nodeIdx, tokenID uint32) (uint32, bool) {
	node := p.nodes[nodeIdx]
	if node.EdgesLen == 0 {
		return 0, false
	}
	window := p.edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
	i := sort.Search(len(window), func(i int) bool { return window[i].TokenID >= tokenID })
	if i < len(window) && window[i].TokenID == tokenID {
		return window[i].NodeID, true
	}
	return 0, false
}

// Contains reports whether ids is a stored phrase.
func (p *PhraseSet) Contains(ids []uint32) bool {
	if len(p.nodes) == 0 {
		return false
	}
	node := p.Root()
	for _, id := range ids {
		next, ok := p.Child(node, id)
		if !ok {
			return false
		}
		node = next
	}
	return p.IsFinal(node)
}
