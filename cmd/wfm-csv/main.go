// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wfm-csv converts Rigol WFM waveform capture files to CSV.
//
// Usage: wfm-csv [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> wfm-csv ./testdata/capture.wfm
//  $> wfm-csv -o out.csv ./testdata/capture.wfm
//
// The CSV layout follows the one the scope itself produces when
// saving a capture to CSV: a two-line header with column names and
// units, then one row per sample. In alternate trigger mode each
// channel runs on its own timebase, so each channel gets its own
// time column.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-daq/rigol/internal/mmap"
	"github.com/go-daq/rigol/wfm"
	"go-hep.org/x/hep/csvutil"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetPrefix("wfm-csv: ")
	log.SetFlags(0)

	oname := flag.String("o", "", "path to the output CSV file (single input file only)")

	flag.Usage = func() {
		fmt.Printf(`wfm-csv converts Rigol WFM waveform capture files to CSV.

Usage: wfm-csv [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input WFM file")
	}

	if *oname != "" && flag.NArg() > 1 {
		log.Fatalf("-o can not be used with multiple input files")
	}

	var grp errgroup.Group
	for _, fname := range flag.Args() {
		fname := fname
		out := *oname
		if out == "" {
			out = strings.TrimSuffix(fname, filepath.Ext(fname)) + ".csv"
		}
		grp.Go(func() error {
			return process(out, fname)
		})
	}
	err := grp.Wait()
	if err != nil {
		log.Fatalf("could not convert WFM file(s): %+v", err)
	}
}

func process(oname, fname string) error {
	h, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer h.Close()

	wave, err := wfm.Decode(h.Bytes())
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	tbl, err := csvutil.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", oname, err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ','

	err = writeTable(tbl, wave)
	if err != nil {
		_ = os.Remove(oname)
		return fmt.Errorf("could not convert %q: %w", fname, err)
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("could not close %q: %w", oname, err)
	}
	return nil
}

func writeTable(tbl *csvutil.Table, wave *wfm.Waveform) error {
	var chans []wfm.Channel
	for _, ch := range wave.Channels {
		if ch.Enabled {
			chans = append(chans, ch)
		}
	}
	if len(chans) == 0 {
		return fmt.Errorf("wfm: no enabled channel")
	}

	switch {
	case wave.AlternateTrigger:
		return writeAlternate(tbl, chans)
	default:
		return writeShared(tbl, chans)
	}
}

// writeShared lays out one time column followed by one voltage column
// per enabled channel. All channels share the main timebase.
func writeShared(tbl *csvutil.Table, chans []wfm.Channel) error {
	names := []string{"X"}
	units := []string{"Second"}
	for _, ch := range chans {
		names = append(names, ch.ID.String())
		units = append(units, "Volt")
	}
	err := tbl.WriteHeader(strings.Join(names, ",") + "\n" + strings.Join(units, ",") + "\n")
	if err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	for i := range chans[0].Samples {
		args := make([]interface{}, 0, 1+len(chans))
		args = append(args, fmt.Sprintf("%0.5e", chans[0].Samples[i].T))
		for _, ch := range chans {
			args = append(args, volt(ch.Samples, i))
		}
		err = tbl.WriteRow(args...)
		if err != nil {
			return fmt.Errorf("could not write row %d: %w", i, err)
		}
	}
	return nil
}

// writeAlternate lays out a time and a voltage column per enabled
// channel, as the channels run on independent timebases.
func writeAlternate(tbl *csvutil.Table, chans []wfm.Channel) error {
	var (
		names []string
		units []string
		rows  int
	)
	for _, ch := range chans {
		names = append(names, fmt.Sprintf("X(%v)", ch.ID), ch.ID.String())
		units = append(units, "Second", "Volt")
		if len(ch.Samples) > rows {
			rows = len(ch.Samples)
		}
	}
	err := tbl.WriteHeader(strings.Join(names, ",") + "\n" + strings.Join(units, ",") + "\n")
	if err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	for i := 0; i < rows; i++ {
		args := make([]interface{}, 0, 2*len(chans))
		for _, ch := range chans {
			if i < len(ch.Samples) {
				args = append(args, fmt.Sprintf("%0.5e", ch.Samples[i].T))
			} else {
				args = append(args, "")
			}
			args = append(args, volt(ch.Samples, i))
		}
		err = tbl.WriteRow(args...)
		if err != nil {
			return fmt.Errorf("could not write row %d: %w", i, err)
		}
	}
	return nil
}

func volt(s []wfm.Sample, i int) string {
	if i >= len(s) {
		return ""
	}
	return fmt.Sprintf("%0.2e", s[i].V)
}
