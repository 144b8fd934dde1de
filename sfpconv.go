// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sfpconv controls an SFP optical converter board: a TCA9535 I/O
// expander gating the transmit and receive paths, a Si5351 synthesizer
// supplying the reference and transmit clocks, and the sync and lock pins
// of the clock recovery.
//
// A Board serializes its operations; nothing is retried and nothing is
// cached, so a failed operation leaves the board as far as it got and the
// caller may re-read Status and retry the whole operation.
package sfpconv

import (
	"fmt"
	"sync"

	"github.com/platinasystems/sfpconv/internal/pins"
	"github.com/platinasystems/sfpconv/internal/regbus"
	"github.com/platinasystems/sfpconv/internal/sfpio"
	"github.com/platinasystems/sfpconv/internal/si5351"
	"github.com/platinasystems/sfpconv/internal/tca9535"
)

// Hardware is the set of devices a Board drives.
type Hardware struct {
	Expander *tca9535.Device
	Clock    regbus.Bus
	Sync     pins.Pin
	Lock     pins.Pin
}

type Board struct {
	Config

	mutex  sync.Mutex
	dev    *tca9535.Device
	io     *sfpio.IOExp
	clock  *si5351.Programmer
	params si5351.Params
	sync   pins.Pin
	lock   pins.Pin
	mode   Mode
}

// New derives the clock parameters of cfg for a Board on hw; it doesn't
// touch the hardware.
func New(cfg Config, hw Hardware) (*Board, error) {
	params, err := si5351.NewParams(cfg.Clock())
	if err != nil {
		return nil, err
	}
	return &Board{
		Config: cfg,
		dev:    hw.Expander,
		io:     sfpio.New(hw.Expander),
		clock:  si5351.New(hw.Clock),
		params: params,
		sync:   hw.Sync,
		lock:   hw.Lock,
	}, nil
}

// Open returns a Board on the i2c adapter and gpio pins named by cfg.
func Open(cfg Config) (*Board, error) {
	pins.Init()
	syncPin, err := pins.Lookup(cfg.SyncPin)
	if err != nil {
		return nil, err
	}
	lockPin, err := pins.Lookup(cfg.LockPin)
	if err != nil {
		return nil, err
	}
	return New(cfg, Hardware{
		Expander: tca9535.New(&regbus.I2c{
			Bus:  cfg.Bus,
			Addr: cfg.IOExpAddr,
		}),
		Clock: &regbus.I2c{
			Bus:  cfg.Bus,
			Addr: cfg.Si5351Addr,
		},
		Sync: syncPin,
		Lock: lockPin,
	})
}

// Configure brings the board up powered down: the output latches get the
// safe defaults before the pins are made outputs, then the synthesizer is
// programmed and the sync pin cleared.
func (b *Board) Configure() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	err := sfpio.Sequence(
		func() error { return b.io.ConfigureAll(sfpio.Defaults()) },
		func() error {
			return b.dev.SetPolarity([tca9535.NPorts]byte{})
		},
		func() error { return b.dev.Configure(sfpio.Directions()) },
		func() error {
			if err := b.clock.Program(b.params); err != nil {
				return fmt.Errorf("%v: %w", b.clock, err)
			}
			return nil
		},
	)
	if err != nil {
		return err
	}
	b.sync.Set(false)
	b.mode = Off
	return nil
}

// SwitchMode applies the expander configuration of the mode, then the
// loopback, then sets the sync pin if, and only if, the mode is Sync.
// The first failure is returned and later steps are skipped.
func (b *Board) SwitchMode(m Mode, lo sfpio.LoopbackMode) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	err := sfpio.Sequence(
		func() error {
			return b.io.ConfigureAll(sfpio.FromMode(m.expander()))
		},
		func() error { return b.io.SetLoopback(lo) },
	)
	if err != nil {
		return err
	}
	b.sync.Set(m == Sync)
	b.mode = m
	return nil
}

// Mode returns the last mode successfully applied.
func (b *Board) Mode() Mode {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.mode
}

// IsSynced samples the lock pin.
func (b *Board) IsSynced() bool { return b.lock.Get() }

func (b *Board) Status() (sfpio.Status, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.io.Status()
}

func (b *Board) ClockStatus() (si5351.DeviceStatus, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.clock.Status()
}

// Params returns the synthesizer parameters derived from Config.
func (b *Board) Params() si5351.Params { return b.params }
