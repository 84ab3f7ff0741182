// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"encoding/binary"
	"math"
)

// rbuf is a cursor over an in-memory byte buffer. Reads are fixed-width,
// little-endian (the WFM format is little-endian throughout) and advance
// the cursor by exactly the type's width. The first read to run past the
// end of the buffer latches ErrOutOfBounds; every subsequent read is a
// no-op returning the zero value.
type rbuf struct {
	p   []byte
	c   int
	err error
}

func newRBuf(p []byte) *rbuf {
	return &rbuf{p: p}
}

func (r *rbuf) remaining() int {
	return len(r.p) - r.c
}

func (r *rbuf) load(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.remaining() < n {
		r.err = ErrOutOfBounds
		return nil
	}
	p := r.p[r.c : r.c+n]
	r.c += n
	return p
}

func (r *rbuf) skip(n int) {
	_ = r.load(n)
}

func (r *rbuf) seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.p) {
		r.err = ErrOutOfBounds
		return
	}
	r.c = off
}

// bytes returns the next n bytes of the buffer without copying.
func (r *rbuf) bytes(n int) []byte {
	return r.load(n)
}

// str returns the next n bytes as a fixed-length string.
func (r *rbuf) str(n int) string {
	return string(r.load(n))
}

func (r *rbuf) readU8() uint8 {
	p := r.load(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (r *rbuf) readI8() int8 {
	return int8(r.readU8())
}

func (r *rbuf) readU16() uint16 {
	p := r.load(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

func (r *rbuf) readI16() int16 {
	return int16(r.readU16())
}

func (r *rbuf) readU32() uint32 {
	p := r.load(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (r *rbuf) readI32() int32 {
	return int32(r.readU32())
}

func (r *rbuf) readU64() uint64 {
	p := r.load(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

func (r *rbuf) readI64() int64 {
	return int64(r.readU64())
}

func (r *rbuf) readF32() float32 {
	return math.Float32frombits(r.readU32())
}

func (r *rbuf) readF64() float64 {
	return math.Float64frombits(r.readU64())
}
