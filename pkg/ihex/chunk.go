// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ihex implements Intel-HEX and Motorola S-record encoding and
// decoding for raw address-space images, as consumed by pkg/smartboot's
// DATA segments and the imxsd/imxsb command-line tools.
package ihex

import "sort"

// Chunk is a contiguous span of the target address space, ported from
// unixdj-ihex__data.go's Chunk with the same field names and merge
// semantics.
type Chunk struct {
	Addr uint32
	Data []byte
}

func (c Chunk) end() int64 {
	return int64(c.Addr) + int64(len(c.Data))
}

func (c Chunk) overlaps(cc Chunk) bool {
	return int64(c.Addr) <= cc.end() && int64(cc.Addr) <= c.end()
}

// over merges two adjacent or overlapping chunks, with the receiver's data
// taking precedence over under's in the overlap.
func (over Chunk) over(under Chunk) Chunk {
	switch {
	case over.Addr <= under.Addr && over.end() >= under.end():
		return over
	case over.Addr < under.Addr:
		over.Data = append(over.Data, under.Data[over.end()-int64(under.Addr):]...)
		return over
	case over.end() > under.end():
		under.Data = append(append([]byte(nil), under.Data[:int64(over.Addr)-int64(under.Addr)]...), over.Data...)
		return under
	default:
		out := append([]byte(nil), under.Data...)
		copy(out[int64(over.Addr)-int64(under.Addr):], over.Data)
		under.Data = out
		return under
	}
}

// ChunkList is a slice of Chunks, kept sorted and non-overlapping once
// Normalize has run.
type ChunkList []Chunk

func (cl ChunkList) find(addr int64) int {
	return sort.Search(len(cl), func(i int) bool { return cl[i].end() >= addr })
}

func (cl *ChunkList) add(c Chunk) {
	if len(c.Data) == 0 {
		return
	}
	if i := cl.find(int64(c.Addr)); i == len(*cl) {
		*cl = append(*cl, c)
	} else if (*cl)[i].overlaps(c) {
		(*cl)[i] = c.over((*cl)[i])
		for i < len(*cl)-1 && (*cl)[i].overlaps((*cl)[i+1]) {
			(*cl)[i] = (*cl)[i].over((*cl)[i+1])
			*cl = append((*cl)[:i+1], (*cl)[i+2:]...)
		}
	} else {
		*cl = append((*cl)[:i+1], (*cl)[i:]...)
		(*cl)[i] = c
	}
}

func (cl ChunkList) normal() bool {
	for i := 0; i < len(cl)-1; i++ {
		if len(cl[i].Data) == 0 || cl[i].end() >= int64(cl[i+1].Addr) {
			return false
		}
	}
	return len(cl) == 0 || len(cl[len(cl)-1].Data) != 0
}

// Normalize reduces cl to a sorted list of non-adjacent, non-empty Chunks
// as if every Chunk in cl had been written to the address space in order.
func (cl *ChunkList) Normalize() {
	if cl.normal() {
		return
	}
	sorted := make(ChunkList, 0, len(*cl))
	for _, v := range *cl {
		sorted.add(v)
	}
	*cl = sorted
}

// Flatten merges a normalized ChunkList into one contiguous []byte starting
// at the lowest address, returning ErrLengthMismatch if a gap separates two
// chunks and allowGaps is false. When allowGaps is true, gaps are filled
// with zero bytes.
func (cl ChunkList) Flatten(allowGaps bool) (base uint32, data []byte, err error) {
	cl.Normalize()
	if len(cl) == 0 {
		return 0, nil, nil
	}
	base = cl[0].Addr
	end := cl[len(cl)-1].end()
	data = make([]byte, end-int64(base))
	for _, c := range cl {
		off := int64(c.Addr) - int64(base)
		copy(data[off:], c.Data)
	}
	if len(cl) > 1 && !allowGaps {
		for i := 0; i < len(cl)-1; i++ {
			if cl[i].end() != int64(cl[i+1].Addr) {
				return 0, nil, ErrLengthMismatch
			}
		}
	}
	return base, data, nil
}
