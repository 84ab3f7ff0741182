// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wfm-plot plots Rigol WFM waveform capture files.
//
// Usage: wfm-plot [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> wfm-plot ./testdata/capture.wfm
//  $> wfm-plot -fft ./testdata/capture.wfm
//
// For each input file FILE.wfm, wfm-plot writes FILE.png with the
// voltage traces of all enabled channels. With -fft it also writes
// FILE-fft.png with the amplitude spectrum of each enabled channel.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"path/filepath"
	"strings"

	"github.com/go-daq/rigol/internal/mmap"
	"github.com/go-daq/rigol/wfm"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func main() {
	log.SetPrefix("wfm-plot: ")
	log.SetFlags(0)

	doFFT := flag.Bool("fft", false, "also plot the amplitude spectrum of each enabled channel")

	flag.Usage = func() {
		fmt.Printf(`wfm-plot plots Rigol WFM waveform capture files.

Usage: wfm-plot [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input WFM file")
	}

	for _, fname := range flag.Args() {
		err := process(fname, *doFFT)
		if err != nil {
			log.Fatalf("could not plot file %q: %+v", fname, err)
		}
	}
}

func process(fname string, doFFT bool) error {
	h, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer h.Close()

	wave, err := wfm.Decode(h.Bytes())
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	base := strings.TrimSuffix(fname, filepath.Ext(fname))
	err = plotWave(base+".png", wave)
	if err != nil {
		return fmt.Errorf("could not plot waveform of %q: %w", fname, err)
	}

	if doFFT {
		err = plotSpectrum(base+"-fft.png", wave)
		if err != nil {
			return fmt.Errorf("could not plot spectrum of %q: %w", fname, err)
		}
	}
	return nil
}

func plotWave(oname string, wave *wfm.Waveform) error {
	p := hplot.New()
	p.Title.Text = "Waveform"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "voltage (V)"
	p.Legend.Top = true

	n := 0
	for _, ch := range wave.Channels {
		if !ch.Enabled || len(ch.Samples) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(ch.Samples))
		for i, s := range ch.Samples {
			xys[i].X = s.T
			xys[i].Y = s.V
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("could not create %v line: %w", ch.ID, err)
		}
		line.Color = plotutil.Color(n)
		p.Add(line)
		p.Legend.Add(ch.ID.String(), line)
		n++
	}
	if n == 0 {
		return fmt.Errorf("wfm: no enabled channel")
	}

	err := p.Save(25*vg.Centimeter, 10*vg.Centimeter, oname)
	if err != nil {
		return fmt.Errorf("could not save plot to %q: %w", oname, err)
	}
	return nil
}

func plotSpectrum(oname string, wave *wfm.Waveform) error {
	p := hplot.New()
	p.Title.Text = "Amplitude spectrum"
	p.X.Label.Text = "frequency (Hz)"
	p.Y.Label.Text = "amplitude (dB)"
	p.Legend.Top = true

	n := 0
	for _, ch := range wave.Channels {
		if !ch.Enabled || len(ch.Samples) == 0 {
			continue
		}
		vs := make([]float64, len(ch.Samples))
		for i, s := range ch.Samples {
			vs[i] = s.V
		}
		line, err := plotter.NewLine(spectrum(vs, ch.SampleRate))
		if err != nil {
			return fmt.Errorf("could not create %v line: %w", ch.ID, err)
		}
		line.Color = plotutil.Color(n)
		p.Add(line)
		p.Legend.Add(ch.ID.String(), line)
		n++
	}
	if n == 0 {
		return fmt.Errorf("wfm: no enabled channel")
	}

	err := p.Save(25*vg.Centimeter, 10*vg.Centimeter, oname)
	if err != nil {
		return fmt.Errorf("could not save plot to %q: %w", oname, err)
	}
	return nil
}

// spectrum returns the single-sided amplitude spectrum of vs, in dB,
// vs frequency in Hz.
func spectrum(vs []float64, rate float64) plotter.XYs {
	ft := fourier.NewFFT(len(vs))
	coeffs := ft.Coefficients(nil, vs)
	pts := make(plotter.XYs, len(coeffs))
	for i, c := range coeffs {
		pts[i].X = ft.Freq(i) * rate
		pts[i].Y = 20 * math.Log10(cmplx.Abs(c)+1e-12)
	}
	return pts
}
