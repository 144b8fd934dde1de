// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package tca9535

import "sync"

// Sim is a register level model of a TCA9535 for use w/o hardware.
//
// Input registers reflect the output latch for pins configured as outputs
// and Lines for pins configured as inputs, each XOR'd with the polarity
// register. FailGet and FailSet, if non-nil, are consulted before each
// access and their error is returned w/o touching the registers.
type Sim struct {
	sync.Mutex

	Output   [NPorts]byte
	Polarity [NPorts]byte
	Config   [NPorts]byte
	// Externally driven levels of each port.
	Lines [NPorts]byte

	FailGet func(reg uint8) error
	FailSet func(reg uint8) error

	Gets, Sets int
}

// NewSim returns a model in the power-on state: all pins input, latches high.
func NewSim() *Sim {
	return &Sim{
		Output: [NPorts]byte{0xff, 0xff},
		Config: [NPorts]byte{0xff, 0xff},
	}
}

func (s *Sim) input(p Port) byte {
	v := (s.Output[p] &^ s.Config[p]) | (s.Lines[p] & s.Config[p])
	return v ^ s.Polarity[p]
}

func (s *Sim) Get(reg uint8) (byte, error) {
	s.Lock()
	defer s.Unlock()
	if s.FailGet != nil {
		if err := s.FailGet(reg); err != nil {
			return 0, err
		}
	}
	s.Gets++
	p := Port(reg & 1)
	switch reg &^ 1 {
	case InputReg(Port0):
		return s.input(p), nil
	case OutputReg(Port0):
		return s.Output[p], nil
	case PolarityReg(Port0):
		return s.Polarity[p], nil
	case ConfigReg(Port0):
		return s.Config[p], nil
	}
	return 0, nil
}

func (s *Sim) Set(reg uint8, v byte) error {
	s.Lock()
	defer s.Unlock()
	if s.FailSet != nil {
		if err := s.FailSet(reg); err != nil {
			return err
		}
	}
	s.Sets++
	p := Port(reg & 1)
	switch reg &^ 1 {
	case OutputReg(Port0):
		s.Output[p] = v
	case PolarityReg(Port0):
		s.Polarity[p] = v
	case ConfigReg(Port0):
		s.Config[p] = v
	}
	return nil
}
