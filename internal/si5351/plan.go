// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package si5351

import (
	"errors"
	"fmt"
)

var ErrZero = errors.New("zero frequency")

// Frequencies requested of the synthesizer, in Hz.
type Frequencies struct {
	Source uint32
	Pll    uint32
	RefClk uint32
	Tclk   uint32
}

// Plan is the integer part of each ratio; fractions are always 0/1.
type Plan struct {
	PllMultiplier uint32
	RefDivider    uint32
	TxDivider     uint32
}

func (f Frequencies) check() error {
	for _, x := range []struct {
		name string
		hz   uint32
	}{
		{"source", f.Source},
		{"pll", f.Pll},
		{"refclk", f.RefClk},
		{"tclk", f.Tclk},
	} {
		if x.hz == 0 {
			return fmt.Errorf("%s: %w", x.name, ErrZero)
		}
	}
	return nil
}

// Plan divides PLL by source and each output by PLL, truncating.
// Ranges aren't checked here, see Programmer.
func (f Frequencies) Plan() (Plan, error) {
	if err := f.check(); err != nil {
		return Plan{}, err
	}
	return Plan{
		PllMultiplier: f.Pll / f.Source,
		RefDivider:    f.Pll / f.RefClk,
		TxDivider:     f.Pll / f.Tclk,
	}, nil
}

// Exact reports whether every ratio of the plan divides evenly.
func (f Frequencies) Exact() bool {
	if f.check() != nil {
		return false
	}
	return f.Pll%f.Source == 0 && f.Pll%f.RefClk == 0 && f.Pll%f.Tclk == 0
}

func (p Plan) String() string {
	return fmt.Sprintf("pll x%d, refclk /%d, tclk /%d",
		p.PllMultiplier, p.RefDivider, p.TxDivider)
}
