// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wfm2sql stores Rigol WFM waveform capture files into a SQL capture
// database.
//
// Usage: wfm2sql [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//  $> wfm2sql -dsn 'scope:secret@tcp(localhost:3306)/scope' ./testdata/capture.wfm
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/go-daq/rigol/internal/mmap"
	"github.com/go-daq/rigol/scopedb"
	"github.com/go-daq/rigol/wfm"
	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetPrefix("wfm2sql: ")
	log.SetFlags(0)

	var (
		dsn      = flag.String("dsn", "", "data source name of the capture database")
		doSchema = flag.Bool("create-schema", false, "create the capture tables if they do not exist")
	)

	flag.Usage = func() {
		fmt.Printf(`wfm2sql stores Rigol WFM waveform capture files into a SQL capture database.

Usage: wfm2sql [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *dsn == "" {
		flag.Usage()
		log.Fatalf("missing -dsn value")
	}
	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input WFM file")
	}

	db, err := scopedb.Open(*dsn)
	if err != nil {
		log.Fatalf("could not open capture db: %+v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if *doSchema {
		err = db.CreateSchema(ctx)
		if err != nil {
			log.Fatalf("could not create capture schema: %+v", err)
		}
	}

	for _, fname := range flag.Args() {
		id, err := process(ctx, db, fname)
		if err != nil {
			log.Fatalf("could not store file %q: %+v", fname, err)
		}
		log.Printf("stored %q as capture %d", fname, id)
	}
}

func process(ctx context.Context, db *scopedb.DB, fname string) (int64, error) {
	h, err := mmap.Open(fname)
	if err != nil {
		return 0, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer h.Close()

	wave, err := wfm.Decode(h.Bytes())
	if err != nil {
		return 0, fmt.Errorf("could not decode %q: %w", fname, err)
	}

	name := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
	id, err := db.StoreWaveform(ctx, name, wave)
	if err != nil {
		return 0, fmt.Errorf("could not store %q: %w", fname, err)
	}
	return id, nil
}
