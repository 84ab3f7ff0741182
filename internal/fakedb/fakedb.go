// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb registers an in-memory database/sql driver that
// records executed statements, for tests of the scopedb layer.
package fakedb // import "github.com/go-daq/rigol/internal/fakedb"

import (
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
)

// Exec is one recorded statement execution.
type Exec struct {
	Query string
	Args  []driver.Value
}

var state struct {
	mu    sync.Mutex
	execs []Exec
	last  int64
}

// Run resets the recorder, runs f against the "fakedb" driver and
// returns the statements f executed.
func Run(f func() error) ([]Exec, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.execs = nil
	state.last = 0

	err := f()
	return state.execs, err
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) Begin() (driver.Tx, error) {
	panic("not implemented")
}

type Stmt struct {
	query string
}

func (stmt *Stmt) Close() error {
	return nil
}

func (stmt *Stmt) NumInput() int {
	return -1
}

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	state.execs = append(state.execs, Exec{Query: stmt.query, Args: args})
	state.last++
	return result{last: state.last}, nil
}

func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return &Rows{}, nil
}

type result struct {
	last int64
}

func (r result) LastInsertId() (int64, error) { return r.last, nil }
func (r result) RowsAffected() (int64, error) { return 1, nil }

// Rows is an empty result set.
type Rows struct{}

func (rows *Rows) Columns() []string {
	return nil
}

func (rows *Rows) Close() error {
	return nil
}

func (rows *Rows) Next(dest []driver.Value) error {
	return io.EOF
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Result = result{}
	_ driver.Rows   = (*Rows)(nil)
)
