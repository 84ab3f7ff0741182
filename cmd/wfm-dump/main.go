// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wfm-dump decodes and displays Rigol WFM waveform capture files.
//
// Usage: wfm-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> wfm-dump ./testdata/capture.wfm
//
//  General
//  =======
//  Cur. selected channel    : CH1
//  Alternate trigger        : true
//
//  Channel CH1
//  ===========
//  Enabled                  : true
//  Probe attenuation        : 1.0
//  Y grid scale             : 2.000e-01 V/div
//  Y shift                  : -8.320e-02 V
//  [...]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/go-daq/rigol"
	"github.com/go-daq/rigol/internal/mmap"
	"github.com/go-daq/rigol/wfm"
)

func main() {
	log.SetPrefix("wfm-dump: ")
	log.SetFlags(0)

	doVersion := flag.Bool("version", false, "print the wfm-dump version and exit")

	flag.Usage = func() {
		fmt.Printf(`wfm-dump decodes and displays Rigol WFM waveform capture files.

Usage: wfm-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *doVersion {
		version, sum := rigol.Version()
		fmt.Printf("wfm-dump version=%q sum=%q\n", version, sum)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input WFM file")
	}

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	h, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer h.Close()

	wave, err := wfm.Decode(h.Bytes())
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	describe(wbuf, wave)
	return nil
}

func describe(w io.Writer, wave *wfm.Waveform) {
	section(w, "General", '=')
	field(w, "Cur. selected channel", "%v", wave.Active)
	field(w, "Alternate trigger", "%v", wave.AlternateTrigger)

	if !wave.AlternateTrigger {
		// All channels share one trigger configuration.
		section(w, "Trigger", '=')
		trigger(w, wave.Channels[0].Trig)
	}

	for _, ch := range wave.Channels {
		section(w, fmt.Sprintf("Channel %v", ch.ID), '=')
		field(w, "Enabled", "%v", ch.Enabled)
		field(w, "Probe attenuation", "%0.1f", ch.Probe)
		field(w, "Y grid scale", "%0.3e V/div", ch.Scale)
		field(w, "Y shift", "%0.3e V", ch.Shift)
		field(w, "Y inverted", "%v", ch.Inverted)
		field(w, "Time grid scale", "%0.3e s/div", ch.TimeDiv)
		field(w, "Samplerate", "%0.3e Samples/s", ch.SampleRate)
		field(w, "Time delay", "%0.3e s", ch.Delay)
		field(w, "No. of recorded samples", "%d", len(ch.Samples))

		if wave.AlternateTrigger {
			section(w, fmt.Sprintf("Channel %v Trigger", ch.ID), '-')
			trigger(w, ch.Trig)
		}
	}
}

func section(w io.Writer, name string, sep rune) {
	fmt.Fprintf(w, "\n%s\n%s\n", name, strings.Repeat(string(sep), len(name)))
}

func field(w io.Writer, label, format string, args ...interface{}) {
	fmt.Fprintf(w, "%-25s: "+format+"\n", append([]interface{}{label}, args...)...)
}

func trigger(w io.Writer, trig wfm.Trigger) {
	tc := trig.Common()
	field(w, "Mode", "%v", trig.Mode())
	field(w, "Source", "%v", tc.Source)
	field(w, "Coupling", "%v", tc.Coupling)
	field(w, "Sweep", "%v", tc.Sweep)
	field(w, "Holdoff", "%0.3e s", tc.Holdoff)
	field(w, "Sensitivity", "%0.3e V", tc.Sensitivity)
	field(w, "Level", "%0.3e V", tc.Level)

	switch t := trig.(type) {
	case wfm.EdgeTrigger:
		field(w, "Edge direction", "%v", t.Direction)
	case wfm.PulseTrigger:
		field(w, "Pulse type", "%v", t.Type)
		field(w, "Pulse width", "%0.3e s", t.Width)
	case wfm.SlopeTrigger:
		field(w, "Slope type", "%v", t.Type)
		field(w, "Slope lower level", "%0.3e V", t.LowerLevel)
		field(w, "Slope width", "%0.3e s", t.Width)
		field(w, "Slope slope", "%0.3e V/s", t.Slope)
	case wfm.VideoTrigger:
		field(w, "Video polarity", "%v", t.Polarity)
		field(w, "Video sync", "%v", t.Sync)
		field(w, "Video standard", "%v", t.Standard)
	case wfm.AlternateTrigger:
		// shared fields only
	}
}
