// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wfmtest builds synthetic WFM file images for tests.
package wfmtest // import "github.com/go-daq/rigol/internal/wfmtest"

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Trig is one raw trigger record.
type Trig struct {
	Mode     uint8
	Source   uint8
	Coupling uint8
	Sweep    uint8
	Sens     float32
	Holdoff  float32
	Level    float32
	Direct   uint8
	Pulse    uint8
	PulseWid float32
	Slope    uint8
	Lower    float32
	SlopeWid float32
	VideoPol uint8
	VideoSyn uint8
	VideoStd uint8
}

// Channel is one raw channel header plus its sample payload.
type Channel struct {
	Scale   int32 // µV/div
	Shift   int16 // 1/250 of a vertical scale
	Probe   float32
	Invert  bool
	Written bool
	Data    []byte
}

// Timebase is one raw timebase block.
type Timebase struct {
	Scale int64 // ps/div
	Delay int64 // ps
	Rate  float32
}

// File describes a synthetic WFM capture. Zero values are written
// as-is, so tests control every stored field.
type File struct {
	Magic    uint16
	Points1  uint32
	Points2  int32
	Active   uint8
	TrigMode uint8
	Chan     [2]Channel
	Time     [2]Timebase
	Trig     [2]Trig
	Rate     float32
}

// New returns a file with a valid magic and CH1 selected.
func New() *File {
	return &File{Magic: 0xa5a5, Active: 1}
}

// Bytes assembles the file image.
func (f *File) Bytes() []byte {
	w := &wbuf{}
	w.u16(f.Magic)
	w.pad(26)
	w.u32(f.Points1)
	w.u8(f.Active)
	w.pad(3)
	for _, ch := range f.Chan {
		w.i32(ch.Scale)
		w.i16(ch.Shift)
		w.pad(2)
		w.f32(ch.Probe)
		w.u8(b2u(ch.Invert))
		w.u8(b2u(ch.Written))
		w.u8(b2u(ch.Invert))
		w.pad(1)
		w.i32(ch.Scale)
		w.i16(ch.Shift)
		w.pad(2)
	}
	f.timebase(w, f.Time[0])
	w.pad(22)
	w.u8(f.TrigMode)
	for _, t := range f.Trig {
		w.u8(t.Mode)
		w.u8(t.Source)
		w.u8(t.Coupling)
		w.u8(t.Sweep)
		w.pad(1)
		w.f32(t.Sens)
		w.f32(t.Holdoff)
		w.f32(t.Level)
		w.u8(t.Direct)
		w.u8(t.Pulse)
		w.pad(2)
		w.f32(t.PulseWid)
		w.u8(t.Slope)
		w.pad(3)
		w.f32(t.Lower)
		w.f32(t.SlopeWid)
		w.u8(t.VideoPol)
		w.u8(t.VideoSyn)
		w.u8(t.VideoStd)
	}
	w.pad(9)
	w.i32(f.Points2)
	f.timebase(w, f.Time[1])
	w.f32(f.Rate)
	for _, ch := range f.Chan {
		if ch.Written {
			w.buf.Write(ch.Data)
		}
	}
	return w.buf.Bytes()
}

func (f *File) timebase(w *wbuf, tb Timebase) {
	w.i64(tb.Scale)
	w.i64(tb.Delay)
	w.f32(tb.Rate)
	w.i64(tb.Scale)
	w.i64(tb.Delay)
}

// Ramp returns n sample bytes cycling through the 8-bit code range.
func Ramp(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 256)
	}
	return p
}

func b2u(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

type wbuf struct {
	buf bytes.Buffer
	tmp [8]byte
}

func (w *wbuf) pad(n int) {
	w.buf.Write(make([]byte, n))
}

func (w *wbuf) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *wbuf) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.buf.Write(w.tmp[:2])
}

func (w *wbuf) i16(v int16) { w.u16(uint16(v)) }

func (w *wbuf) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.buf.Write(w.tmp[:4])
}

func (w *wbuf) i32(v int32) { w.u32(uint32(v)) }

func (w *wbuf) i64(v int64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], uint64(v))
	w.buf.Write(w.tmp[:8])
}

func (w *wbuf) f32(v float32) { w.u32(math.Float32bits(v)) }
