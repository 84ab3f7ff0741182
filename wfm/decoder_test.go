// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"errors"
	"testing"

	"github.com/go-daq/rigol/internal/wfmtest"
)

// edgeFile builds a minimal valid capture: shared edge trigger, CH1
// written with 4 samples, CH2 disabled.
func edgeFile() *wfmtest.File {
	f := wfmtest.New()
	f.Points1 = 4
	f.Chan[0] = wfmtest.Channel{
		Scale:   200000,
		Shift:   -104,
		Probe:   1,
		Written: true,
		Data:    []byte{125, 100, 150, 125},
	}
	f.Chan[1] = wfmtest.Channel{Scale: 100000, Shift: -50, Probe: 10}
	f.Time[0] = wfmtest.Timebase{Scale: 500000, Delay: 2000000, Rate: 2.5e8}
	f.Trig[0] = wfmtest.Trig{
		Mode:    uint8(ModeEdge),
		Sens:    0.3,
		Holdoff: 5e-7,
		Level:   0.52,
		Direct:  uint8(EdgeRise),
	}
	f.Rate = 2.5e8
	return f
}

func TestDecoderErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(f *wfmtest.File)
		trunc int // keep only the first trunc bytes (0: keep all)
		want  string
	}{
		{
			name:  "no-data",
			trunc: -1,
			want:  "wfm: could not read file magic: wfm: read past end of data",
		},
		{
			name: "invalid-magic",
			setup: func(f *wfmtest.File) {
				f.Magic = 0x1234
			},
			want: "wfm: invalid file magic 0x1234: wfm: invalid waveform file",
		},
		{
			name:  "short-file-header",
			trunc: 20,
			want:  "wfm: could not read file header: wfm: read past end of data",
		},
		{
			name: "invalid-active-channel",
			setup: func(f *wfmtest.File) {
				f.Active = 5
			},
			want: "wfm: invalid active channel 5: wfm: invalid waveform file",
		},
		{
			name:  "short-channel-header",
			trunc: 70,
			want:  "wfm: could not read CH2 header: wfm: read past end of data",
		},
		{
			name:  "short-timebase-header",
			trunc: 100,
			want:  "wfm: could not read timebase header: wfm: read past end of data",
		},
		{
			name:  "missing-trigger-mode",
			trunc: 142,
			want:  "wfm: could not read trigger mode: wfm: read past end of data",
		},
		{
			name: "unknown-trigger-mode",
			setup: func(f *wfmtest.File) {
				f.TrigMode = 5
			},
			want: "wfm: unknown trigger mode 0x05",
		},
		{
			name:  "short-trigger-record-1",
			trunc: 150,
			want:  "wfm: could not read trigger record 1: wfm: read past end of data",
		},
		{
			name:  "short-trigger-record-2",
			trunc: 200,
			want:  "wfm: could not read trigger record 2: wfm: read past end of data",
		},
		{
			name:  "short-second-timebase",
			trunc: 225,
			want:  "wfm: could not read second timebase header: wfm: read past end of data",
		},
		{
			name: "unknown-record-mode-alternate",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModeAlternate)
				f.Trig[0].Mode = 9
			},
			want: "wfm: CH1 trigger: wfm: unknown trigger mode 0x09",
		},
		{
			name: "trigger-mode-mismatch",
			setup: func(f *wfmtest.File) {
				f.Trig[0].Mode = uint8(ModePulse)
			},
			want: "wfm: trigger mode mismatch (file=Edge, record=Pulse): wfm: invalid waveform file",
		},
		{
			name: "invalid-trigger-source",
			setup: func(f *wfmtest.File) {
				f.Trig[0].Source = 9
			},
			want: "wfm: trigger: wfm: invalid trigger source 9: wfm: invalid waveform file",
		},
		{
			name: "invalid-trigger-coupling",
			setup: func(f *wfmtest.File) {
				f.Trig[0].Coupling = 4
			},
			want: "wfm: trigger: wfm: invalid trigger coupling 4: wfm: invalid waveform file",
		},
		{
			name: "invalid-trigger-sweep",
			setup: func(f *wfmtest.File) {
				f.Trig[0].Sweep = 3
			},
			want: "wfm: trigger: wfm: invalid trigger sweep 3: wfm: invalid waveform file",
		},
		{
			name: "invalid-edge-direction",
			setup: func(f *wfmtest.File) {
				f.Trig[0].Direct = 3
			},
			want: "wfm: trigger: wfm: invalid edge direction 3: wfm: invalid waveform file",
		},
		{
			name: "invalid-pulse-type",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModePulse)
				f.Trig[0].Mode = uint8(ModePulse)
				f.Trig[0].Pulse = 6
			},
			want: "wfm: trigger: wfm: invalid pulse type 6: wfm: invalid waveform file",
		},
		{
			name: "invalid-slope-type",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModeSlope)
				f.Trig[0].Mode = uint8(ModeSlope)
				f.Trig[0].Slope = 6
			},
			want: "wfm: trigger: wfm: invalid slope type 6: wfm: invalid waveform file",
		},
		{
			name: "invalid-video-sync",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModeVideo)
				f.Trig[0].Mode = uint8(ModeVideo)
				f.Trig[0].VideoSyn = 4
			},
			want: "wfm: trigger: wfm: invalid video sync 4: wfm: invalid waveform file",
		},
		{
			name: "zero-sample-count",
			setup: func(f *wfmtest.File) {
				f.Points1 = 0
				f.Chan[0].Data = nil
			},
			want: "wfm: invalid sample count 0 for CH1: wfm: invalid waveform file",
		},
		{
			name: "negative-second-count",
			setup: func(f *wfmtest.File) {
				f.Points2 = -1
				f.Chan[1].Written = true
				f.Chan[1].Data = []byte{1, 2}
			},
			want: "wfm: invalid sample count -1 for CH2: wfm: invalid waveform file",
		},
		{
			name: "truncated-sample-data",
			setup: func(f *wfmtest.File) {
				f.Points1 = 8
			},
			want: "wfm: CH1: want 8 sample bytes, got 4: wfm: truncated sample data",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := edgeFile()
			if tc.setup != nil {
				tc.setup(f)
			}
			raw := f.Bytes()
			switch {
			case tc.trunc < 0:
				raw = nil
			case tc.trunc > 0:
				raw = raw[:tc.trunc]
			}
			_, err := Decode(raw)
			if err == nil {
				t.Fatalf("expected an error: %v", tc.want)
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot= %v\nwant=%v\n", got, want)
			}
		})
	}
}

func TestDecoderErrorKinds(t *testing.T) {
	f := edgeFile()
	raw := f.Bytes()

	_, err := Decode(raw[:100])
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("truncated header: got=%v, want=%v", err, ErrOutOfBounds)
	}

	_, err = Decode(raw[:len(raw)-1])
	if !errors.Is(err, ErrTruncatedData) {
		t.Fatalf("truncated payload: got=%v, want=%v", err, ErrTruncatedData)
	}

	f.Magic = 0xffff
	_, err = Decode(f.Bytes())
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("invalid magic: got=%v, want=%v", err, ErrInvalidFormat)
	}

	f = edgeFile()
	f.TrigMode = 7
	_, err = Decode(f.Bytes())
	var uerr UnknownTriggerModeError
	if !errors.As(err, &uerr) {
		t.Fatalf("unknown mode: got=%v, want UnknownTriggerModeError", err)
	}
	if got, want := uerr.Tag, uint8(7); got != want {
		t.Fatalf("unknown mode tag: got=%d, want=%d", got, want)
	}
}

// Truncating anywhere inside the payload region must yield
// ErrTruncatedData, never a silently short sample sequence.
func TestDecoderPayloadTruncationSweep(t *testing.T) {
	f := edgeFile()
	raw := f.Bytes()
	const hdr = 276
	for n := hdr; n < len(raw); n++ {
		_, err := Decode(raw[:n])
		if !errors.Is(err, ErrTruncatedData) {
			t.Fatalf("len=%d: got=%v, want=%v", n, err, ErrTruncatedData)
		}
	}
	if _, err := Decode(raw); err != nil {
		t.Fatalf("full file: unexpected error: %+v", err)
	}
}

func TestDecoderTriggerVariants(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(f *wfmtest.File)
		want  Trigger
	}{
		{
			name: "edge",
			setup: func(f *wfmtest.File) {
				f.Trig[0] = wfmtest.Trig{
					Mode:     uint8(ModeEdge),
					Source:   uint8(SourceCH2),
					Coupling: uint8(CouplingAC),
					Sweep:    uint8(SweepNormal),
					Sens:     0.3,
					Holdoff:  5e-7,
					Level:    0.52,
					Direct:   uint8(EdgeFall),
				}
			},
			want: EdgeTrigger{
				TriggerCommon: TriggerCommon{
					Source:      SourceCH2,
					Coupling:    CouplingAC,
					Sweep:       SweepNormal,
					Holdoff:     float64(float32(5e-7)),
					Sensitivity: float64(float32(0.3)),
					Level:       float64(float32(0.52)),
				},
				Direction: EdgeFall,
			},
		},
		{
			name: "pulse",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModePulse)
				f.Trig[0] = wfmtest.Trig{
					Mode:     uint8(ModePulse),
					Source:   uint8(SourceExt),
					Sweep:    uint8(SweepSingle),
					Level:    1.5,
					Pulse:    uint8(PulseNegLess),
					PulseWid: 2e-6,
				}
			},
			want: PulseTrigger{
				TriggerCommon: TriggerCommon{
					Source: SourceExt,
					Sweep:  SweepSingle,
					Level:  float64(float32(1.5)),
				},
				Type:  PulseNegLess,
				Width: float64(float32(2e-6)),
			},
		},
		{
			name: "slope",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModeSlope)
				f.Trig[0] = wfmtest.Trig{
					Mode:     uint8(ModeSlope),
					Source:   uint8(SourceCH1),
					Level:    1.04,
					Slope:    uint8(SlopeRiseGreater),
					Lower:    0,
					SlopeWid: 1e-6,
				}
			},
			want: SlopeTrigger{
				TriggerCommon: TriggerCommon{
					Source: SourceCH1,
					Level:  float64(float32(1.04)),
				},
				Type:       SlopeRiseGreater,
				LowerLevel: 0,
				Width:      float64(float32(1e-6)),
				Slope:      float64(float32(1.04)) / float64(float32(1e-6)),
			},
		},
		{
			name: "video",
			setup: func(f *wfmtest.File) {
				f.TrigMode = uint8(ModeVideo)
				f.Trig[0] = wfmtest.Trig{
					Mode:     uint8(ModeVideo),
					Source:   uint8(SourceACLine),
					VideoPol: uint8(VideoNeg),
					VideoSyn: uint8(SyncOddField),
					VideoStd: uint8(VideoPALSECAM),
				}
			},
			want: VideoTrigger{
				TriggerCommon: TriggerCommon{Source: SourceACLine},
				Polarity:      VideoNeg,
				Sync:          SyncOddField,
				Standard:      VideoPALSECAM,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := edgeFile()
			tc.setup(f)
			w, err := Decode(f.Bytes())
			if err != nil {
				t.Fatalf("could not decode: %+v", err)
			}
			if got := w.Channels[0].Trig; got != tc.want {
				t.Fatalf("invalid trigger:\ngot= %#v\nwant=%#v\n", got, tc.want)
			}
			// Channels share the trigger outside alternate mode.
			if got := w.Channels[1].Trig; got != tc.want {
				t.Fatalf("CH2 trigger differs:\ngot= %#v\nwant=%#v\n", got, tc.want)
			}
		})
	}
}

// A channel slot's own record may carry the alternate tag; the variant
// then holds the shared fields only, with the per-channel source
// override applied.
func TestDecoderAlternateRecordTrigger(t *testing.T) {
	f := edgeFile()
	f.TrigMode = uint8(ModeAlternate)
	f.Trig[0] = wfmtest.Trig{
		Mode:    uint8(ModeAlternate),
		Source:  uint8(SourceExt),
		Sens:    0.3,
		Holdoff: 5e-7,
		Level:   0.52,
	}
	f.Trig[1] = wfmtest.Trig{
		Mode:  uint8(ModeAlternate),
		Sweep: uint8(SweepNormal),
		Level: 1.04,
	}

	w, err := Decode(f.Bytes())
	if err != nil {
		t.Fatalf("could not decode: %+v", err)
	}

	want1 := AlternateTrigger{TriggerCommon: TriggerCommon{
		Source:      SourceCH1, // stored EXT source is overridden
		Holdoff:     float64(float32(5e-7)),
		Sensitivity: float64(float32(0.3)),
		Level:       float64(float32(0.52)),
	}}
	if got := w.Channels[0].Trig; got != Trigger(want1) {
		t.Fatalf("invalid CH1 trigger:\ngot= %#v\nwant=%#v\n", got, want1)
	}

	want2 := AlternateTrigger{TriggerCommon: TriggerCommon{
		Source: SourceCH2,
		Sweep:  SweepNormal,
		Level:  float64(float32(1.04)),
	}}
	if got := w.Channels[1].Trig; got != Trigger(want2) {
		t.Fatalf("invalid CH2 trigger:\ngot= %#v\nwant=%#v\n", got, want2)
	}
}

func TestDecoderDisabledChannel(t *testing.T) {
	f := edgeFile()
	w, err := Decode(f.Bytes())
	if err != nil {
		t.Fatalf("could not decode: %+v", err)
	}

	ch2 := w.Channels[1]
	if ch2.Enabled {
		t.Fatalf("CH2 should be disabled")
	}
	// The header block is always present: metadata survives even for a
	// channel without payload bytes.
	if !approx(ch2.Scale, 1.0, 1e-6) {
		t.Fatalf("CH2 scale: got=%v, want=1.0", ch2.Scale)
	}
	if got, want := ch2.Probe, 10.0; got != want {
		t.Fatalf("CH2 probe: got=%v, want=%v", got, want)
	}
	if len(ch2.Samples) != 0 {
		t.Fatalf("CH2 samples: got=%d, want=0", len(ch2.Samples))
	}
	if got, want := len(w.Channels[0].Samples), 4; got != want {
		t.Fatalf("CH1 samples: got=%d, want=%d", got, want)
	}
}

// The second channel's sample count falls back to the first one's when
// the stored second count is zero.
func TestDecoderSecondCountFallback(t *testing.T) {
	f := edgeFile()
	f.Points2 = 0
	f.Chan[1].Written = true
	f.Chan[1].Data = []byte{120, 121, 122, 123}
	w, err := Decode(f.Bytes())
	if err != nil {
		t.Fatalf("could not decode: %+v", err)
	}
	if got, want := len(w.Channels[1].Samples), 4; got != want {
		t.Fatalf("CH2 samples: got=%d, want=%d", got, want)
	}
}
