package storage

import (
	"chunkgen/internal/block"
)

const wordBits = 64

// Palette stores a chunk as a table of distinct block ids plus a packed array of
// table indices. Entries are bits wide and never straddle a word; the width starts
// at zero for a uniform chunk and doubles whenever the table outgrows it.
type Palette struct {
	bits   uint
	words  []uint64
	values []block.ID
	counts []int32
	lookup map[block.ID]int
}

// NewPalette returns a palette where every block is fill.
func NewPalette(fill block.ID) *Palette {
	return &Palette{
		values: []block.ID{fill},
		counts: []int32{Volume},
		lookup: map[block.ID]int{fill: 0},
	}
}

// PaletteFromBuffer builds a palette from a flat buffer in Index order.
func PaletteFromBuffer(buf []block.ID) *Palette {
	p := NewPalette(buf[0])
	for i := 1; i < Volume; i++ {
		p.setIndex(i, buf[i])
	}
	return p
}

// Bits returns the current entry width.
func (p *Palette) Bits() uint {
	return p.bits
}

// Distinct returns the number of table entries still referenced.
func (p *Palette) Distinct() int {
	n := 0
	for _, c := range p.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

func (p *Palette) Kind() Kind {
	return KindPalette
}

func (p *Palette) Get(x, y, z int) block.ID {
	return p.values[p.entry(Index(x, y, z))]
}

func (p *Palette) Set(x, y, z int, id block.ID) {
	p.setIndex(Index(x, y, z), id)
}

func (p *Palette) IsUniform() bool {
	for _, c := range p.counts {
		if c == Volume {
			return true
		}
	}
	return false
}

func (p *Palette) UniformValue() block.ID {
	for e, c := range p.counts {
		if c == Volume {
			return p.values[e]
		}
	}
	return block.NullID
}

func (p *Palette) CopyTo(dst []block.ID) {
	if p.bits == 0 {
		v := p.values[0]
		for i := range dst[:Volume] {
			dst[i] = v
		}
		return
	}
	for i := 0; i < Volume; i++ {
		dst[i] = p.values[p.entry(i)]
	}
}

func (p *Palette) setIndex(i int, id block.ID) {
	old := p.entry(i)
	if p.values[old] == id {
		return
	}
	p.counts[old]--

	e, ok := p.lookup[id]
	if !ok {
		e = p.allocate(id)
	}
	p.setEntry(i, e)
	p.counts[e]++
}

// allocate returns a table slot for id, reusing an unreferenced slot when one
// exists and widening the packed array otherwise.
func (p *Palette) allocate(id block.ID) int {
	for e, c := range p.counts {
		if c == 0 {
			delete(p.lookup, p.values[e])
			p.values[e] = id
			p.lookup[id] = e
			return e
		}
	}

	e := len(p.values)
	p.values = append(p.values, id)
	p.counts = append(p.counts, 0)
	p.lookup[id] = e
	if len(p.values) > 1<<p.bits {
		p.grow()
	}
	return e
}

// grow doubles the entry width until the table fits and repacks every entry.
func (p *Palette) grow() {
	newBits := p.bits * 2
	if newBits == 0 {
		newBits = 1
	}
	for len(p.values) > 1<<newBits {
		newBits *= 2
	}

	perWord := wordBits / int(newBits)
	words := make([]uint64, (Volume+perWord-1)/perWord)
	for i := 0; i < Volume; i++ {
		e := uint64(p.entry(i))
		words[i/perWord] |= e << (uint(i%perWord) * newBits)
	}

	p.bits = newBits
	p.words = words
}

func (p *Palette) entry(i int) int {
	if p.bits == 0 {
		return 0
	}
	perWord := wordBits / int(p.bits)
	shift := uint(i%perWord) * p.bits
	mask := uint64(1)<<p.bits - 1
	return int((p.words[i/perWord] >> shift) & mask)
}

func (p *Palette) setEntry(i int, e int) {
	if p.bits == 0 {
		return
	}
	perWord := wordBits / int(p.bits)
	shift := uint(i%perWord) * p.bits
	mask := uint64(1)<<p.bits - 1
	w := &p.words[i/perWord]
	*w = (*w &^ (mask << shift)) | (uint64(e)&mask)<<shift
}
