// Package vlc builds and walks the canonical-Huffman lookup tables the
// WMV2 and WMA bitstreams use for entropy-coded symbols: a direct port
// of the FFmpeg-style sparse/from-lengths table builder and its
// two-level subtable walk.
package vlc

import (
	"fmt"
	"sort"

	"github.com/rfvp-go/vnengine/internal/bitstream"
)

const (
	InitUseStatic     = 1
	InitStaticOverlong = 2 | InitUseStatic
	InitInputLE       = 4
	InitOutputLE      = 8
)

// Elem is one lookup-table slot: a positive Len means Sym is the
// decoded symbol; a negative Len means Sym is the index of a subtable
// keyed by -Len further bits.
type Elem struct {
	Sym int16
	Len int16
}

// Table is a built VLC lookup table, ready for GetVLC2.
type Table struct {
	Bits           int32
	entries        []Elem
	tableSize      int32
	tableAllocated int32
}

type code struct {
	bits   uint8
	symbol int16
	code   uint32
}

func bitswap32(x uint32) uint32 {
	var out uint32
	for i := 0; i < 32; i++ {
		out = (out << 1) | (x & 1)
		x >>= 1
	}
	return out
}

func (t *Table) allocTable(size int32, useStatic bool) (int32, error) {
	index := t.tableSize
	t.tableSize += size
	if t.tableSize > t.tableAllocated {
		if useStatic {
			return 0, fmt.Errorf("vlc: static table too small")
		}
		t.tableAllocated += 1 << t.Bits
		if int(t.tableAllocated) > len(t.entries) {
			grown := make([]Elem, t.tableAllocated)
			copy(grown, t.entries)
			t.entries = grown
		}
	}
	return index, nil
}

func (t *Table) build(tableNbBits int32, codes []code, flags int32) (int32, error) {
	if tableNbBits > 30 {
		return 0, fmt.Errorf("vlc: table_nb_bits > 30")
	}
	tableSize := int32(1) << uint(tableNbBits)
	tableIndex, err := t.allocTable(tableSize, flags&InitUseStatic != 0)
	if err != nil {
		return 0, err
	}

	i := 0
	for i < len(codes) {
		n := int32(codes[i].bits)
		cw := codes[i].code
		symbol := codes[i].symbol
		base := tableIndex

		if n <= tableNbBits {
			j := int32(cw >> uint(32-tableNbBits))
			nb := int32(1) << uint(tableNbBits-n)
			inc := int32(1)
			if flags&InitOutputLE != 0 {
				j = int32(bitswap32(cw) >> uint(32-tableNbBits))
				inc = int32(1) << uint(n)
			}
			for k := int32(0); k < nb; k++ {
				idx := base + j
				bits := t.entries[idx].Len
				oldsym := t.entries[idx].Sym
				if (bits != 0 || oldsym != 0) && (bits != int16(n) || oldsym != symbol) {
					return 0, fmt.Errorf("vlc: incorrect codes")
				}
				t.entries[idx].Len = int16(n)
				t.entries[idx].Sym = symbol
				j += inc
			}
			i++
			continue
		}

		// Subtable.
		n -= tableNbBits
		codePrefix := cw >> uint(32-tableNbBits)
		subtableBits := n
		codes[i].bits = uint8(n)
		codes[i].code = cw << uint(tableNbBits)

		k := i + 1
		for k < len(codes) {
			nn := int32(codes[k].bits) - tableNbBits
			if nn <= 0 {
				break
			}
			cc := codes[k].code
			if cc>>uint(32-tableNbBits) != codePrefix {
				break
			}
			codes[k].bits = uint8(nn)
			codes[k].code = cc << uint(tableNbBits)
			if nn > subtableBits {
				subtableBits = nn
			}
			k++
		}
		if subtableBits > tableNbBits {
			subtableBits = tableNbBits
		}

		var j int32
		if flags&InitOutputLE != 0 {
			j = int32(bitswap32(codePrefix) >> uint(32-tableNbBits))
		} else {
			j = int32(codePrefix)
		}

		idx := base + j
		t.entries[idx].Len = -int16(subtableBits)

		subIndex, err := t.build(subtableBits, codes[i:k], flags)
		if err != nil {
			return 0, err
		}
		t.entries[tableIndex+j].Sym = int16(subIndex)

		i = k
	}

	for k := int32(0); k < tableSize; k++ {
		idx := tableIndex + k
		if t.entries[idx].Len == 0 {
			t.entries[idx].Sym = -1
		}
	}

	return tableIndex, nil
}

// InitFromLengths builds a table from a codeword-length-per-symbol
// array, mirroring ff_vlc_init_from_lengths: canonical codes are
// assigned in symbol order by incrementing a running MSB-aligned
// accumulator.
func InitFromLengths(nbBits int32, lens []int8, symbols []int16, offset int32, flags int32) (*Table, error) {
	t := &Table{Bits: nbBits}

	var buf []code
	var accum uint64
	lenMax := int32(32)
	if 3*nbBits < lenMax {
		lenMax = 3 * nbBits
	}

	for i, lenI8 := range lens {
		length := int32(lenI8)
		if length > 0 {
			var sym int32
			if symbols != nil {
				sym = int32(symbols[i])
			} else {
				sym = int32(i)
			}
			buf = append(buf, code{bits: uint8(length), symbol: int16(sym + offset), code: uint32(accum)})
		}

		absLen := length
		if absLen < 0 {
			absLen = -absLen
		}
		if absLen == 0 {
			continue
		}
		if absLen > lenMax || (accum&((uint64(1)<<uint(32-absLen))-1)) != 0 {
			return nil, fmt.Errorf("vlc: invalid code length %d", absLen)
		}
		accum += uint64(1) << uint(32-absLen)
		if accum > uint64(^uint32(0))+1 {
			return nil, fmt.Errorf("vlc: overdetermined tree")
		}
	}

	if _, err := t.build(nbBits, buf, flags); err != nil {
		return nil, err
	}
	return t, nil
}

// InitSparse builds a table from explicit (length, code[, symbol])
// triples rather than a canonical length array, mirroring
// ff_vlc_init_sparse. Entries with len > nbBits go through the
// two-pass ordering upstream relies on (long codes first, grouped by
// shared prefix).
func InitSparse(nbBits int32, bitsArr []uint32, codesArr []uint32, symbolsArr []int16, flags int32) (*Table, error) {
	t := &Table{Bits: nbBits}
	nbCodes := len(bitsArr)

	var buf []code
	for pass := 0; pass < 2; pass++ {
		for i := 0; i < nbCodes; i++ {
			length := bitsArr[i]
			var cond bool
			if pass == 0 {
				cond = length > uint32(nbBits)
			} else {
				cond = length != 0 && length <= uint32(nbBits)
			}
			if !cond {
				continue
			}
			if length > uint32(3*nbBits) || length > 32 {
				return nil, fmt.Errorf("vlc: too long VLC (%d)", length)
			}
			cw := codesArr[i]
			if uint64(cw) >= (uint64(1) << length) {
				return nil, fmt.Errorf("vlc: invalid code %x for %d", cw, i)
			}
			if flags&InitInputLE != 0 {
				cw = bitswap32(cw)
			} else {
				cw <<= 32 - length
			}
			sym := int16(i)
			if symbolsArr != nil {
				sym = symbolsArr[i]
			}
			buf = append(buf, code{bits: uint8(length), symbol: sym, code: cw})
		}
		if pass == 0 {
			sort.Slice(buf, func(a, b int) bool { return buf[a].code>>1 < buf[b].code>>1 })
		}
	}

	if _, err := t.build(nbBits, buf, flags); err != nil {
		return nil, err
	}
	return t, nil
}

// GetVLC2 decodes one symbol from gb using table, descending through
// up to maxDepth subtable levels (mirrors get_vlc2()).
func GetVLC2(gb *bitstream.Reader, table *Table, bits, maxDepth int32) (int32, error) {
	index, err := gb.ShowBits(int(bits))
	if err != nil {
		return 0, err
	}
	n := int32(table.entries[index].Len)
	sym := int32(table.entries[index].Sym)

	if maxDepth > 1 && n < 0 {
		if err := gb.SkipBits(int(bits)); err != nil {
			return 0, err
		}
		nbBits := -n
		v, err := gb.ShowBits(int(nbBits))
		if err != nil {
			return 0, err
		}
		index = uint32(int32(v) + sym)
		n = int32(table.entries[index].Len)
		sym = int32(table.entries[index].Sym)

		if maxDepth > 2 && n < 0 {
			if err := gb.SkipBits(int(nbBits)); err != nil {
				return 0, err
			}
			nbBits = -n
			v, err := gb.ShowBits(int(nbBits))
			if err != nil {
				return 0, err
			}
			index = uint32(int32(v) + sym)
			n = int32(table.entries[index].Len)
			sym = int32(table.entries[index].Sym)
		}
	}

	if err := gb.SkipBits(int(n)); err != nil {
		return 0, err
	}
	return sym, nil
}
