// Copyright © 2019-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This package provides a runtime/debug.BuildInfo Formatter.
// Usage,
//
//	if bi := buildinfo.New(); bi.Version() != buildinfo.Unavailable {
//		fmt.Println(bi)
//	} else {
//		fmt.Println(buildinfo.Unavailable)
//	}
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

const Unavailable = "unavailable"

type BuildInfo struct {
	*debug.BuildInfo
}

func New() BuildInfo {
	if bi, ok := debug.ReadBuildInfo(); ok {
		return BuildInfo{bi}
	}
	return BuildInfo{}
}

// Format prints the main module followed by a tab indented line for each
// dependency.
func (bi BuildInfo) Format(f fmt.State, c rune) {
	if bi.BuildInfo == nil {
		io.WriteString(f, Unavailable)
		return
	}
	modinfo(f, &bi.Main)
	for _, dep := range bi.Deps {
		io.WriteString(f, "\n\t")
		modinfo(f, dep)
	}
}

func (bi BuildInfo) Version() string {
	if bi.BuildInfo == nil {
		return Unavailable
	}
	return bi.Main.Version
}

func modinfo(w io.Writer, m *debug.Module) {
	io.WriteString(w, m.Path)
	if m.Replace != nil {
		m = m.Replace
		io.WriteString(w, "=")
		io.WriteString(w, m.Path)
		if len(m.Version) == 0 {
			return
		}
	}
	io.WriteString(w, "@")
	io.WriteString(w, m.Version)
}
