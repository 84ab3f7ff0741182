// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wfm decodes waveform capture files produced by Rigol DS1000E
// oscilloscopes into physically scaled samples (volts against seconds)
// together with the full acquisition metadata (trigger configuration,
// timebase, probe attenuation, channel enablement).
package wfm // import "github.com/go-daq/rigol/wfm"

import "fmt"

// Waveform is the fully decoded content of a WFM capture file.
type Waveform struct {
	AlternateTrigger bool      // triggers alternate between channels on successive sweeps
	Active           ChannelID // channel selected on the scope display
	SampleRate       float64   // file-level sample rate (samples/s)
	Channels         []Channel // CH1, CH2, in file order
}

// Channel holds one analog channel's acquisition parameters and its
// decoded samples. Samples is empty for channels that were not written
// to the file.
type Channel struct {
	ID         ChannelID
	Enabled    bool
	Inverted   bool
	Probe      float64 // probe attenuation factor (1x, 10x, ...)
	Scale      float64 // vertical scale (V/div)
	Shift      float64 // vertical shift (V)
	TimeDiv    float64 // time grid scale (s/div)
	SampleRate float64 // channel sample rate (samples/s)
	Delay      float64 // trigger time delay (s)
	Trig       Trigger
	Samples    []Sample
}

// Sample is one acquired point on the (time, voltage) plane.
type Sample struct {
	T float64 // seconds, relative to the trigger origin
	V float64 // volts
}

// ChannelID identifies a trace on the scope display.
type ChannelID uint8

const (
	CH1 ChannelID = iota + 1
	CH2
	Ref
	Math
)

func (id ChannelID) String() string {
	switch id {
	case CH1:
		return "CH1"
	case CH2:
		return "CH2"
	case Ref:
		return "REF"
	case Math:
		return "MATH"
	}
	return fmt.Sprintf("ChannelID(%d)", uint8(id))
}

// Source is a trigger source.
type Source uint8

const (
	SourceCH1 Source = iota
	SourceCH2
	SourceExt
	SourceACLine
)

func (src Source) String() string {
	switch src {
	case SourceCH1:
		return "CH1"
	case SourceCH2:
		return "CH2"
	case SourceExt:
		return "EXT"
	case SourceACLine:
		return "AC Line"
	}
	return fmt.Sprintf("Source(%d)", uint8(src))
}

// SweepMode is the trigger sweep mode.
type SweepMode uint8

const (
	SweepAuto SweepMode = iota
	SweepNormal
	SweepSingle
)

func (sw SweepMode) String() string {
	switch sw {
	case SweepAuto:
		return "Auto"
	case SweepNormal:
		return "Normal"
	case SweepSingle:
		return "Single"
	}
	return fmt.Sprintf("SweepMode(%d)", uint8(sw))
}

// Coupling is the trigger coupling.
type Coupling uint8

const (
	CouplingDC Coupling = iota
	CouplingLFReject
	CouplingHFReject
	CouplingAC
)

func (cpl Coupling) String() string {
	switch cpl {
	case CouplingDC:
		return "DC"
	case CouplingLFReject:
		return "LF Reject"
	case CouplingHFReject:
		return "HF Reject"
	case CouplingAC:
		return "AC"
	}
	return fmt.Sprintf("Coupling(%d)", uint8(cpl))
}

// TriggerMode tags the trigger configuration variant.
type TriggerMode uint8

const (
	ModeEdge TriggerMode = iota
	ModePulse
	ModeSlope
	ModeVideo
	ModeAlternate
)

func (m TriggerMode) String() string {
	switch m {
	case ModeEdge:
		return "Edge"
	case ModePulse:
		return "Pulse"
	case ModeSlope:
		return "Slope"
	case ModeVideo:
		return "Video"
	case ModeAlternate:
		return "Alternate"
	}
	return fmt.Sprintf("TriggerMode(%d)", uint8(m))
}

// TriggerCommon holds the fields shared by every trigger mode.
type TriggerCommon struct {
	Source      Source
	Coupling    Coupling
	Sweep       SweepMode
	Holdoff     float64 // seconds
	Sensitivity float64 // volts
	Level       float64 // volts
}

// Common implements the Trigger interface.
func (tc TriggerCommon) Common() TriggerCommon { return tc }

// Trigger is one decoded trigger configuration. The concrete type is
// fixed at decode time by the trigger mode tag; consumers switch
// exhaustively over EdgeTrigger, PulseTrigger, SlopeTrigger,
// VideoTrigger and AlternateTrigger.
type Trigger interface {
	Mode() TriggerMode
	Common() TriggerCommon
}

// EdgeDirection is the triggering edge of an edge trigger.
type EdgeDirection uint8

const (
	EdgeRise EdgeDirection = iota
	EdgeFall
	EdgeBoth
)

func (d EdgeDirection) String() string {
	switch d {
	case EdgeRise:
		return "RISE"
	case EdgeFall:
		return "FALL"
	case EdgeBoth:
		return "BOTH"
	}
	return fmt.Sprintf("EdgeDirection(%d)", uint8(d))
}

// EdgeTrigger triggers on a signal edge.
type EdgeTrigger struct {
	TriggerCommon
	Direction EdgeDirection
}

func (EdgeTrigger) Mode() TriggerMode { return ModeEdge }

// PulseType is the pulse-width condition of a pulse trigger.
type PulseType uint8

const (
	PulsePosGreater PulseType = iota
	PulsePosLess
	PulsePosEqual
	PulseNegGreater
	PulseNegLess
	PulseNegEqual
)

func (t PulseType) String() string {
	switch t {
	case PulsePosGreater:
		return "POS >"
	case PulsePosLess:
		return "POS <"
	case PulsePosEqual:
		return "POS ="
	case PulseNegGreater:
		return "NEG >"
	case PulseNegLess:
		return "NEG <"
	case PulseNegEqual:
		return "NEG ="
	}
	return fmt.Sprintf("PulseType(%d)", uint8(t))
}

// PulseTrigger triggers on pulses matching a width condition.
type PulseTrigger struct {
	TriggerCommon
	Type  PulseType
	Width float64 // seconds
}

func (PulseTrigger) Mode() TriggerMode { return ModePulse }

// SlopeType is the slope condition of a slope trigger.
type SlopeType uint8

const (
	SlopeRiseGreater SlopeType = iota
	SlopeRiseLess
	SlopeRiseEqual
	SlopeFallGreater
	SlopeFallLess
	SlopeFallEqual
)

func (t SlopeType) String() string {
	switch t {
	case SlopeRiseGreater:
		return "RISE >"
	case SlopeRiseLess:
		return "RISE <"
	case SlopeRiseEqual:
		return "RISE ="
	case SlopeFallGreater:
		return "FALL >"
	case SlopeFallLess:
		return "FALL <"
	case SlopeFallEqual:
		return "FALL ="
	}
	return fmt.Sprintf("SlopeType(%d)", uint8(t))
}

// SlopeTrigger triggers on a signal slope between two levels.
// Level (in TriggerCommon) is the upper level.
type SlopeTrigger struct {
	TriggerCommon
	Type       SlopeType
	LowerLevel float64 // volts
	Width      float64 // seconds
	Slope      float64 // volts/second, (Level-LowerLevel)/Width
}

func (SlopeTrigger) Mode() TriggerMode { return ModeSlope }

// VideoPolarity is the sync pulse polarity of a video trigger.
type VideoPolarity uint8

const (
	VideoPos VideoPolarity = iota
	VideoNeg
)

func (p VideoPolarity) String() string {
	switch p {
	case VideoPos:
		return "POS"
	case VideoNeg:
		return "NEG"
	}
	return fmt.Sprintf("VideoPolarity(%d)", uint8(p))
}

// VideoSync selects the video line/field synchronization.
type VideoSync uint8

const (
	SyncAllLines VideoSync = iota
	SyncLineNum
	SyncOddField
	SyncEvenField
)

func (s VideoSync) String() string {
	switch s {
	case SyncAllLines:
		return "All Lines"
	case SyncLineNum:
		return "Line Num"
	case SyncOddField:
		return "Odd Field"
	case SyncEvenField:
		return "Even Field"
	}
	return fmt.Sprintf("VideoSync(%d)", uint8(s))
}

// VideoStandard is the video signal standard.
type VideoStandard uint8

const (
	VideoNTSC VideoStandard = iota
	VideoPALSECAM
)

func (s VideoStandard) String() string {
	switch s {
	case VideoNTSC:
		return "NTSC"
	case VideoPALSECAM:
		return "PAL/SECAM"
	}
	return fmt.Sprintf("VideoStandard(%d)", uint8(s))
}

// VideoTrigger triggers on video sync pulses.
type VideoTrigger struct {
	TriggerCommon
	Polarity VideoPolarity
	Sync     VideoSync
	Standard VideoStandard
}

func (VideoTrigger) Mode() TriggerMode { return ModeVideo }

// AlternateTrigger is the trigger record of a channel slot whose own
// mode tag reads "alternate"; it carries only the shared fields.
type AlternateTrigger struct {
	TriggerCommon
}

func (AlternateTrigger) Mode() TriggerMode { return ModeAlternate }

var (
	_ Trigger = (*EdgeTrigger)(nil)
	_ Trigger = (*PulseTrigger)(nil)
	_ Trigger = (*SlopeTrigger)(nil)
	_ Trigger = (*VideoTrigger)(nil)
	_ Trigger = (*AlternateTrigger)(nil)
)
