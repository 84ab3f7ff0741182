// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rigol

import (
	"runtime/debug"
	"testing"
)

func TestVersionOf(t *testing.T) {
	for _, tc := range []struct {
		name    string
		info    *debug.BuildInfo
		version string
		sum     string
	}{
		{
			name: "nil-info",
		},
		{
			name: "no-dep",
			info: &debug.BuildInfo{},
		},
		{
			name: "regular",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{Path: "github.com/go-daq/rigol", Version: "v0.1.0", Sum: "h1:deadbeef"},
				},
			},
			version: "v0.1.0",
			sum:     "h1:deadbeef",
		},
		{
			name: "replaced-version",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{
						Path:    "github.com/go-daq/rigol",
						Version: "v0.1.0",
						Replace: &debug.Module{Version: "v0.2.0", Sum: "h1:cafe"},
					},
				},
			},
			version: "v0.2.0",
			sum:     "h1:cafe",
		},
		{
			name: "replaced-path",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{
						Path:    "github.com/go-daq/rigol",
						Version: "v0.1.0",
						Replace: &debug.Module{Path: "example.com/rigol", Sum: "h1:f00d"},
					},
				},
			},
			version: "example.com/rigol",
			sum:     "h1:f00d",
		},
		{
			name: "replaced-local",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{
						Path:    "github.com/go-daq/rigol",
						Version: "v0.1.0",
						Replace: &debug.Module{},
					},
				},
			},
			version: "v0.1.0*",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			version, sum := versionOf(tc.info)
			if version != tc.version || sum != tc.sum {
				t.Fatalf("invalid version: got=(%q, %q), want=(%q, %q)",
					version, sum, tc.version, tc.sum,
				)
			}
		})
	}
}
