// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package sysinfo reports host memory and CPU feature flags at startup, so
// operators can judge whether a batch of frames fits comfortably in
// memory. Grounded in the teacher's totalMiBs banner variable
// (cmd/nightlight/main.go) and its AVX2-dispatch logging
// (internal/stats_amd64.go, internal/noise_amd64.go).
package sysinfo

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

// Banner is a snapshot of host capabilities, printed once at startup.
type Banner struct {
	TotalMiB int64
	NumCPU   int
	AVX2     bool
	AVX512F  bool
	BrandName string
}

// Collect reads the current host's memory and CPU feature flags.
func Collect() Banner {
	return Banner{
		TotalMiB:  int64(memory.TotalMemory() / 1024 / 1024),
		NumCPU:    runtime.GOMAXPROCS(0),
		AVX2:      cpuid.CPU.AVX2(),
		AVX512F:   cpuid.CPU.AVX512F(),
		BrandName: cpuid.CPU.BrandName,
	}
}

// String renders the banner the way the teacher's main.go logs its own
// memory/thread banner line.
func (b Banner) String() string {
	features := "no AVX2"
	if b.AVX2 {
		features = "AVX2"
	}
	if b.AVX512F {
		features += "+AVX512F"
	}
	return fmt.Sprintf("Host: %s, %d threads, %d MiB physical memory, %s",
		b.BrandName, b.NumCPU, b.TotalMiB, features)
}
