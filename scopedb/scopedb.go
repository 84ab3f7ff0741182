// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scopedb archives decoded waveform captures into a MySQL
// database, one row per capture plus one row per channel.
package scopedb // import "github.com/go-daq/rigol/scopedb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-daq/rigol/wfm"
)

var (
	drvName = "mysql"

	timeout = 5 * time.Second
)

// DB exposes convenience methods to store decoded captures into the
// archive database.
type DB struct {
	db *sql.DB
}

// Open opens a connection to the archive database.
// The dsn is in the MySQL driver format, e.g.
// "user:pwd@tcp(localhost)/scope".
func Open(dsn string) (*DB, error) {
	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("scopedb: could not open db: %w", err)
	}

	err = ping(db)
	if err != nil {
		return nil, fmt.Errorf("scopedb: could not ping db: %w", err)
	}

	return &DB{db: db}, nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS captures (
	id         INTEGER PRIMARY KEY AUTO_INCREMENT,
	name       VARCHAR(255) NOT NULL,
	taken      DATETIME NOT NULL,
	alternate  BOOLEAN NOT NULL,
	active     VARCHAR(8) NOT NULL,
	samplerate DOUBLE NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS channels (
	id          INTEGER PRIMARY KEY AUTO_INCREMENT,
	capture     INTEGER NOT NULL,
	name        VARCHAR(8) NOT NULL,
	enabled     BOOLEAN NOT NULL,
	inverted    BOOLEAN NOT NULL,
	probe       DOUBLE NOT NULL,
	scale       DOUBLE NOT NULL,
	shift       DOUBLE NOT NULL,
	timediv     DOUBLE NOT NULL,
	samplerate  DOUBLE NOT NULL,
	delay       DOUBLE NOT NULL,
	nsamples    INTEGER NOT NULL,
	trigmode    VARCHAR(16) NOT NULL,
	trigsource  VARCHAR(16) NOT NULL,
	trigsweep   VARCHAR(16) NOT NULL,
	trigcpl     VARCHAR(16) NOT NULL,
	holdoff     DOUBLE NOT NULL,
	level       DOUBLE NOT NULL,
	sensitivity DOUBLE NOT NULL
)`,
}

// CreateSchema creates the archive tables if they do not exist yet.
func (db *DB) CreateSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, stmt := range schema {
		_, err := db.db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("scopedb: could not create schema: %w", err)
		}
	}
	return nil
}

// StoreWaveform stores one decoded capture under the given name and
// returns the capture row id.
func (db *DB) StoreWaveform(ctx context.Context, name string, w *wfm.Waveform) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := db.db.ExecContext(ctx,
		`INSERT INTO captures (name, taken, alternate, active, samplerate) VALUES (?, ?, ?, ?, ?)`,
		name, time.Now().UTC(), w.AlternateTrigger, w.Active.String(), w.SampleRate,
	)
	if err != nil {
		return 0, fmt.Errorf("scopedb: could not store capture %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("scopedb: could not get capture id for %q: %w", name, err)
	}

	for _, ch := range w.Channels {
		tc := ch.Trig.Common()
		_, err = db.db.ExecContext(ctx,
			`INSERT INTO channels (
	capture, name, enabled, inverted, probe, scale, shift, timediv,
	samplerate, delay, nsamples,
	trigmode, trigsource, trigsweep, trigcpl, holdoff, level, sensitivity
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ch.ID.String(), ch.Enabled, ch.Inverted, ch.Probe, ch.Scale, ch.Shift, ch.TimeDiv,
			ch.SampleRate, ch.Delay, len(ch.Samples),
			ch.Trig.Mode().String(), tc.Source.String(), tc.Sweep.String(), tc.Coupling.String(),
			tc.Holdoff, tc.Level, tc.Sensitivity,
		)
		if err != nil {
			return 0, fmt.Errorf("scopedb: could not store %v of capture %q: %w", ch.ID, name, err)
		}
	}

	return id, nil
}
