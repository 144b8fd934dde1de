// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sfpconv

import (
	"fmt"
	"strings"

	"github.com/platinasystems/sfpconv/internal/sfpio"
)

// Mode is the operating mode of the board. Sync has the expander Off and
// the sync pin asserted.
type Mode uint8

const (
	Off Mode = iota
	Tx
	Rx
	FullDuplex
	Sync
)

var modeNames = []string{
	Off:        "off",
	Tx:         "tx",
	Rx:         "rx",
	FullDuplex: "full-duplex",
	Sync:       "sync",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprint("mode(", uint8(m), ")")
}

func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return Off, fmt.Errorf("%q: %w", s, sfpio.ErrMode)
}

func (m Mode) expander() sfpio.Mode {
	switch m {
	case Tx:
		return sfpio.Tx
	case Rx:
		return sfpio.Rx
	case FullDuplex:
		return sfpio.FullDuplex
	}
	return sfpio.Off
}
