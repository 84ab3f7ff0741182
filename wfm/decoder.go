// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"fmt"
)

const (
	fileMagic = 0xa5a5 // WFM file marker at offset 0

	rawCenter   = 125   // ADC code at the vertical center of the display
	codesPerDiv = 25    // ADC codes per vertical division
	shiftCodes  = 250   // stored shift units per vertical scale
	voltLSB     = 1e-6  // vertical scale stored in µV/div
	timeLSB     = 1e-12 // timebase scale and delay stored in ps
)

// Decode decodes the content of a WFM capture file.
//
// Decoding is a pure function of the input bytes: it either returns the
// complete document or a single typed error, never a partial result.
func Decode(data []byte) (*Waveform, error) {
	var w Waveform
	err := NewDecoder(data).Decode(&w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Decoder reads (and validates) a waveform document from an in-memory
// WFM file image.
type Decoder struct {
	r *rbuf
}

// NewDecoder creates a decoder that reads from the file image data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: newRBuf(data)}
}

// chanHdr is the raw 24-byte per-channel header block. Scale and shift
// are stored twice (display and measurement copies); the measurement
// copy is the one the scope computes voltages from.
type chanHdr struct {
	probe     float32
	written   bool
	invert    bool
	scaleMeas int32 // µV/div
	shiftMeas int16 // 1/250 of a vertical scale
}

func (dec *Decoder) readChanHdr() chanHdr {
	r := dec.r
	var h chanHdr
	_ = r.readI32() // display scale, mirrors scaleMeas
	_ = r.readI16() // display shift, mirrors shiftMeas
	r.skip(2)
	h.probe = r.readF32()
	_ = r.readU8() // display invert flag, mirrors the measurement flag
	h.written = r.readU8() != 0
	h.invert = r.readU8() != 0
	r.skip(1)
	h.scaleMeas = r.readI32()
	h.shiftMeas = r.readI16()
	r.skip(2)
	return h
}

// timeHdr is the raw 36-byte timebase block.
type timeHdr struct {
	rate  float32 // samples/s
	scale int64   // ps/div
	delay int64   // ps
}

func (dec *Decoder) readTimeHdr() timeHdr {
	r := dec.r
	var h timeHdr
	_ = r.readI64() // display scale, mirrors the measurement scale
	_ = r.readI64() // display delay, mirrors the measurement delay
	h.rate = r.readF32()
	h.scale = r.readI64()
	h.delay = r.readI64()
	return h
}

// trigRecord is the raw 40-byte trigger record. The record layout is
// the same for every trigger mode; which fields are meaningful depends
// on the mode tag.
type trigRecord struct {
	mode     uint8
	source   uint8
	coupling uint8
	sweep    uint8
	sens     float32
	holdoff  float32
	level    float32
	direct   uint8
	pulse    uint8
	pulseWid float32
	slope    uint8
	lower    float32
	slopeWid float32
	videoPol uint8
	videoSyn uint8
	videoStd uint8
}

func (dec *Decoder) readTrigRecord() trigRecord {
	r := dec.r
	var t trigRecord
	t.mode = r.readU8()
	t.source = r.readU8()
	t.coupling = r.readU8()
	t.sweep = r.readU8()
	r.skip(1)
	t.sens = r.readF32()
	t.holdoff = r.readF32()
	t.level = r.readF32()
	t.direct = r.readU8()
	t.pulse = r.readU8()
	r.skip(2)
	t.pulseWid = r.readF32()
	t.slope = r.readU8()
	r.skip(3)
	t.lower = r.readF32()
	t.slopeWid = r.readF32()
	t.videoPol = r.readU8()
	t.videoSyn = r.readU8()
	t.videoStd = r.readU8()
	return t
}

func (rec trigRecord) common() (TriggerCommon, error) {
	if rec.source > uint8(SourceACLine) {
		return TriggerCommon{}, fmt.Errorf("wfm: invalid trigger source %d: %w", rec.source, ErrInvalidFormat)
	}
	if rec.coupling > uint8(CouplingAC) {
		return TriggerCommon{}, fmt.Errorf("wfm: invalid trigger coupling %d: %w", rec.coupling, ErrInvalidFormat)
	}
	if rec.sweep > uint8(SweepSingle) {
		return TriggerCommon{}, fmt.Errorf("wfm: invalid trigger sweep %d: %w", rec.sweep, ErrInvalidFormat)
	}
	return TriggerCommon{
		Source:      Source(rec.source),
		Coupling:    Coupling(rec.coupling),
		Sweep:       SweepMode(rec.sweep),
		Holdoff:     float64(rec.holdoff),
		Sensitivity: float64(rec.sens),
		Level:       float64(rec.level),
	}, nil
}

// trigBuilders maps a trigger mode tag to the decode of its variant.
// The table is read-only after process start; supporting a new hardware
// family's mode means adding one entry and one variant type.
var trigBuilders = map[TriggerMode]func(rec trigRecord) (Trigger, error){
	ModeEdge:      edgeTriggerOf,
	ModePulse:     pulseTriggerOf,
	ModeSlope:     slopeTriggerOf,
	ModeVideo:     videoTriggerOf,
	ModeAlternate: alternateTriggerOf,
}

// triggerOf decodes one trigger record into its tagged variant.
// An undocumented mode tag aborts the decode: guessing a layout would
// silently produce plausible but wrong field values.
func triggerOf(rec trigRecord) (Trigger, error) {
	build, ok := trigBuilders[TriggerMode(rec.mode)]
	if !ok {
		return nil, UnknownTriggerModeError{Tag: rec.mode}
	}
	return build(rec)
}

func edgeTriggerOf(rec trigRecord) (Trigger, error) {
	tc, err := rec.common()
	if err != nil {
		return nil, err
	}
	if rec.direct > uint8(EdgeBoth) {
		return nil, fmt.Errorf("wfm: invalid edge direction %d: %w", rec.direct, ErrInvalidFormat)
	}
	return EdgeTrigger{TriggerCommon: tc, Direction: EdgeDirection(rec.direct)}, nil
}

func pulseTriggerOf(rec trigRecord) (Trigger, error) {
	tc, err := rec.common()
	if err != nil {
		return nil, err
	}
	if rec.pulse > uint8(PulseNegEqual) {
		return nil, fmt.Errorf("wfm: invalid pulse type %d: %w", rec.pulse, ErrInvalidFormat)
	}
	return PulseTrigger{
		TriggerCommon: tc,
		Type:          PulseType(rec.pulse),
		Width:         float64(rec.pulseWid),
	}, nil
}

func slopeTriggerOf(rec trigRecord) (Trigger, error) {
	tc, err := rec.common()
	if err != nil {
		return nil, err
	}
	if rec.slope > uint8(SlopeFallEqual) {
		return nil, fmt.Errorf("wfm: invalid slope type %d: %w", rec.slope, ErrInvalidFormat)
	}
	t := SlopeTrigger{
		TriggerCommon: tc,
		Type:          SlopeType(rec.slope),
		LowerLevel:    float64(rec.lower),
		Width:         float64(rec.slopeWid),
	}
	if t.Width != 0 {
		t.Slope = (t.Level - t.LowerLevel) / t.Width
	}
	return t, nil
}

func videoTriggerOf(rec trigRecord) (Trigger, error) {
	tc, err := rec.common()
	if err != nil {
		return nil, err
	}
	if rec.videoPol > uint8(VideoNeg) {
		return nil, fmt.Errorf("wfm: invalid video polarity %d: %w", rec.videoPol, ErrInvalidFormat)
	}
	if rec.videoSyn > uint8(SyncEvenField) {
		return nil, fmt.Errorf("wfm: invalid video sync %d: %w", rec.videoSyn, ErrInvalidFormat)
	}
	if rec.videoStd > uint8(VideoPALSECAM) {
		return nil, fmt.Errorf("wfm: invalid video standard %d: %w", rec.videoStd, ErrInvalidFormat)
	}
	return VideoTrigger{
		TriggerCommon: tc,
		Polarity:      VideoPolarity(rec.videoPol),
		Sync:          VideoSync(rec.videoSyn),
		Standard:      VideoStandard(rec.videoStd),
	}, nil
}

func alternateTriggerOf(rec trigRecord) (Trigger, error) {
	tc, err := rec.common()
	if err != nil {
		return nil, err
	}
	return AlternateTrigger{TriggerCommon: tc}, nil
}

// withSource returns trig with its source replaced. In alternate mode
// the stored source field is not valid: each channel triggers on itself.
func withSource(trig Trigger, src Source) Trigger {
	switch t := trig.(type) {
	case EdgeTrigger:
		t.Source = src
		return t
	case PulseTrigger:
		t.Source = src
		return t
	case SlopeTrigger:
		t.Source = src
		return t
	case VideoTrigger:
		t.Source = src
		return t
	case AlternateTrigger:
		t.Source = src
		return t
	}
	return trig
}

// Decode decodes a waveform document from the decoder's file image.
func (dec *Decoder) Decode(w *Waveform) error {
	r := dec.r

	magic := r.readU16()
	if r.err != nil {
		return fmt.Errorf("wfm: could not read file magic: %w", r.err)
	}
	if magic != fileMagic {
		return fmt.Errorf("wfm: invalid file magic 0x%04x: %w", magic, ErrInvalidFormat)
	}

	r.skip(26)
	points1 := int(r.readU32())
	active := r.readU8()
	r.skip(3)
	if r.err != nil {
		return fmt.Errorf("wfm: could not read file header: %w", r.err)
	}
	if active < uint8(CH1) || active > uint8(Math) {
		return fmt.Errorf("wfm: invalid active channel %d: %w", active, ErrInvalidFormat)
	}

	var chans [2]chanHdr
	for i := range chans {
		chans[i] = dec.readChanHdr()
		if r.err != nil {
			return fmt.Errorf("wfm: could not read CH%d header: %w", i+1, r.err)
		}
	}

	var tbs [2]timeHdr
	tbs[0] = dec.readTimeHdr()
	r.skip(22) // reserved
	if r.err != nil {
		return fmt.Errorf("wfm: could not read timebase header: %w", r.err)
	}

	mode := r.readU8()
	if r.err != nil {
		return fmt.Errorf("wfm: could not read trigger mode: %w", r.err)
	}
	if mode > uint8(ModeAlternate) {
		return UnknownTriggerModeError{Tag: mode}
	}
	alt := TriggerMode(mode) == ModeAlternate

	var recs [2]trigRecord
	for i := range recs {
		recs[i] = dec.readTrigRecord()
		if r.err != nil {
			return fmt.Errorf("wfm: could not read trigger record %d: %w", i+1, r.err)
		}
	}

	r.skip(9) // reserved
	points2 := int(r.readI32())
	tbs[1] = dec.readTimeHdr()
	rate := r.readF32()
	if r.err != nil {
		return fmt.Errorf("wfm: could not read second timebase header: %w", r.err)
	}

	var trig [2]Trigger
	switch {
	case alt:
		// One record per channel, each with its own mode and timebase.
		for i := range recs {
			t, err := triggerOf(recs[i])
			if err != nil {
				return fmt.Errorf("wfm: CH%d trigger: %w", i+1, err)
			}
			trig[i] = withSource(t, Source(i))
		}
	default:
		t, err := triggerOf(recs[0])
		if err != nil {
			return fmt.Errorf("wfm: trigger: %w", err)
		}
		if recs[0].mode != mode {
			return fmt.Errorf("wfm: trigger mode mismatch (file=%v, record=%v): %w",
				TriggerMode(mode), TriggerMode(recs[0].mode), ErrInvalidFormat)
		}
		trig[0], trig[1] = t, t
	}

	w.AlternateTrigger = alt
	w.Active = ChannelID(active)
	w.SampleRate = float64(rate)
	w.Channels = make([]Channel, len(chans))
	for i := range w.Channels {
		tb := tbs[0]
		if alt {
			tb = tbs[i]
		}
		ch := &w.Channels[i]
		ch.ID = ChannelID(i + 1)
		ch.Enabled = chans[i].written
		ch.Inverted = chans[i].invert
		ch.Probe = float64(chans[i].probe)
		ch.Scale = float64(chans[i].scaleMeas) * voltLSB * ch.Probe
		ch.Shift = float64(chans[i].shiftMeas) / shiftCodes * ch.Scale
		ch.TimeDiv = float64(tb.scale) * timeLSB
		ch.SampleRate = float64(tb.rate)
		ch.Delay = float64(tb.delay) * timeLSB
		ch.Trig = trig[i]
	}

	// Sample payloads follow, one block per written channel, in channel
	// order. Disabled channels store no payload bytes.
	idx := 0
	for i := range w.Channels {
		ch := &w.Channels[i]
		if !ch.Enabled {
			continue
		}
		n := points1
		if idx == 1 {
			n = points2
			if n == 0 {
				// Some firmwares leave the second count blank when both
				// channels share the record length.
				n = points1
			}
		}
		if n <= 0 {
			return fmt.Errorf("wfm: invalid sample count %d for %v: %w", n, ch.ID, ErrInvalidFormat)
		}
		if rem := r.remaining(); rem < n {
			return fmt.Errorf("wfm: %v: want %d sample bytes, got %d: %w", ch.ID, n, rem, ErrTruncatedData)
		}
		ch.Samples = samplesOf(r.bytes(n), ch)
		idx++
	}

	return nil
}

// samplesOf converts a channel's raw payload to physical units. Codes
// are offset-binary around rawCenter with codesPerDiv codes per vertical
// division; the shift is applied before the optional inversion so the
// computed voltages match the values the scope itself displays.
func samplesOf(raw []byte, ch *Channel) []Sample {
	sign := 1.0
	if ch.Inverted {
		sign = -1
	}
	var dt float64
	if ch.SampleRate != 0 {
		dt = 1 / ch.SampleRate
	}
	s := make([]Sample, len(raw))
	for i, v := range raw {
		s[i] = Sample{
			T: float64(i)*dt - ch.Delay,
			V: (float64(rawCenter-int(v))/codesPerDiv*ch.Scale + ch.Shift) * sign,
		}
	}
	return s
}
