// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package si5351

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSource   = errors.New("invalid clock source")
	ErrXtalLoad = errors.New("invalid crystal load")
)

// Source is the reference input of PLL A.
type Source uint8

const (
	Xtal Source = iota
	Clkin
)

func (s Source) String() string {
	switch s {
	case Xtal:
		return "xtal"
	case Clkin:
		return "clkin"
	}
	return fmt.Sprint("source(", uint8(s), ")")
}

func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "xtal", "xo":
		return Xtal, nil
	case "clkin":
		return Clkin, nil
	}
	return Xtal, fmt.Errorf("%q: %w", s, ErrSource)
}

// XtalLoad is the internal load capacitance of the crystal oscillator,
// encoded as the XTAL_CL field.
type XtalLoad uint8

const (
	Load6pF XtalLoad = iota + 1
	Load8pF
	Load10pF
)

func (l XtalLoad) String() string {
	switch l {
	case Load6pF:
		return "6pF"
	case Load8pF:
		return "8pF"
	case Load10pF:
		return "10pF"
	}
	return fmt.Sprint("load(", uint8(l), ")")
}

func ParseXtalLoad(s string) (XtalLoad, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "pf") {
	case "6":
		return Load6pF, nil
	case "8":
		return Load8pF, nil
	case "10":
		return Load10pF, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrXtalLoad)
}

// Ratio is A + B/C.
type Ratio struct {
	A, B, C uint32
}

func Integer(a uint32) Ratio { return Ratio{A: a, C: 1} }

func (r Ratio) IsInteger() bool { return r.B == 0 }

func (r Ratio) String() string {
	if r.IsInteger() {
		return fmt.Sprint(r.A)
	}
	return fmt.Sprintf("%d+%d/%d", r.A, r.B, r.C)
}

// Output is the configuration of one CLKx driver. R dividers are log2
// encoded, 0 is divide by 1.
type Output struct {
	RDiv         uint8
	Invert       bool
	Enable       bool
	PowerDown    bool
	DisableState uint8
	Drive        uint8
	UseOEBPin    bool
	PhaseOffset  uint8
}

// Params is the complete parameter block written by Programmer.
type Params struct {
	Source   Source
	SourceHz uint32
	XtalLoad XtalLoad
	// CLKIN divider, log2 encoded.
	ClkinDiv uint8

	PllA Ratio
	MS   [2]Ratio
	Clk  [2]Output
}

// Multisynth and output indices.
const (
	RefClk = 0
	Tclk   = 1
)

type ClockConfig struct {
	Source   Source
	XtalLoad XtalLoad
	Frequencies
}

// NewParams derives the parameter block for a ClockConfig: PLL A from the
// configured source, multisynth 0 for the reference clock and 1 for the
// transmit clock, each driving its own output.
func NewParams(c ClockConfig) (Params, error) {
	plan, err := c.Plan()
	if err != nil {
		return Params{}, err
	}
	out := Output{
		Enable:    true,
		UseOEBPin: true,
	}
	return Params{
		Source:   c.Source,
		SourceHz: c.Frequencies.Source,
		XtalLoad: c.XtalLoad,
		PllA:     Integer(plan.PllMultiplier),
		MS: [2]Ratio{
			RefClk: Integer(plan.RefDivider),
			Tclk:   Integer(plan.TxDivider),
		},
		Clk: [2]Output{out, out},
	}, nil
}

// Hz returns the frequency of output n.
func (p Params) Hz(n int) uint64 {
	vco := p.VcoHz()
	ms := p.MS[n]
	if ms.A == 0 || ms.C == 0 {
		return 0
	}
	return vco * uint64(ms.C) / (uint64(ms.A)*uint64(ms.C) + uint64(ms.B)) >>
		p.Clk[n].RDiv
}

// VcoHz returns the PLLA frequency.
func (p Params) VcoHz() uint64 {
	if p.PllA.C == 0 {
		return 0
	}
	hz := uint64(p.SourceHz) >> p.ClkinDiv
	return hz*uint64(p.PllA.A) + hz*uint64(p.PllA.B)/uint64(p.PllA.C)
}
