// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sfpio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMode     = errors.New("invalid mode")
	ErrLoopback = errors.New("invalid loopback mode")
)

type LoopbackMode uint8

const (
	LoopbackDisabled LoopbackMode = iota
	LoopbackLocal
	LoopbackLine
)

var loopbackNames = []string{
	LoopbackDisabled: "disabled",
	LoopbackLocal:    "local",
	LoopbackLine:     "line",
}

func (m LoopbackMode) String() string {
	if int(m) < len(loopbackNames) {
		return loopbackNames[m]
	}
	return fmt.Sprint("loopback(", uint8(m), ")")
}

func ParseLoopbackMode(s string) (LoopbackMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range loopbackNames {
		if s == name {
			return LoopbackMode(i), nil
		}
	}
	if s == "" || s == "none" || s == "off" {
		return LoopbackDisabled, nil
	}
	return LoopbackDisabled, fmt.Errorf("%q: %w", s, ErrLoopback)
}

// Mode is the operating mode of the expander.
type Mode uint8

const (
	Off Mode = iota
	Tx
	Rx
	FullDuplex
)

var modeNames = []string{
	Off:        "off",
	Tx:         "tx",
	Rx:         "rx",
	FullDuplex: "full-duplex",
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
	return Off, fmt.Errorf("%q: %w", s, ErrMode)
}

// Config has every independently settable line of the board.
type Config struct {
	TransmitterEnable    bool
	TransmitterPowerDown bool
	TxDisable            bool
	ReceiverEnable       bool
	ReceiverPowerDown    bool
	PllOutputEnable      bool
	HighSpeed            bool
	Loopback             LoopbackMode
}

// Defaults returns the safe, powered down configuration.
func Defaults() Config {
	return Config{
		TransmitterEnable:    false,
		TransmitterPowerDown: true,
		TxDisable:            true,
		ReceiverEnable:       false,
		ReceiverPowerDown:    true,
		PllOutputEnable:      true,
		HighSpeed:            false,
		Loopback:             LoopbackDisabled,
	}
}

// FromMode overrides the defaults with the lines the mode needs.
// Modes never change HighSpeed or PllOutputEnable.
func FromMode(m Mode) Config {
	c := Defaults()
	switch m {
	case Tx:
		c.transmitterOn()
	case Rx:
		c.receiverOn()
	case FullDuplex:
		c.transmitterOn()
		c.receiverOn()
	}
	return c
}

func (c *Config) transmitterOn() {
	c.TransmitterEnable = true
	c.TransmitterPowerDown = false
	c.TxDisable = false
}

func (c *Config) receiverOn() {
	c.ReceiverEnable = true
	c.ReceiverPowerDown = false
}

func transmitter(v Value, enable, powerDown, txDisable bool) Value {
	v = v.Assert(TransmitterEnable, enable)
	v = v.Assert(TransmitterPowerDown, powerDown)
	return v.Assert(TxDisable, txDisable)
}

func receiver(v Value, enable, powerDown bool) Value {
	v = v.Assert(ReceiverEnable, enable)
	return v.Assert(ReceiverPowerDown, powerDown)
}

// Both latches are cleared before at most one is set so that they are
// never simultaneously set, whatever the prior state.
func loopback(v Value, m LoopbackMode) Value {
	v = v.Clear(LocalLoopback).Clear(LineLoopback)
	switch m {
	case LoopbackLocal:
		v = v.Assert(LocalLoopback, true)
	case LoopbackLine:
		v = v.Assert(LineLoopback, true)
	}
	return v
}

func (c Config) port0(v Value) Value {
	v = transmitter(v, c.TransmitterEnable, c.TransmitterPowerDown,
		c.TxDisable)
	v = receiver(v, c.ReceiverEnable, c.ReceiverPowerDown)
	return loopback(v, c.Loopback)
}

func (c Config) port1(v Value) Value {
	v = v.Assert(RateSelect, c.HighSpeed)
	return v.Assert(PllOutputEnable, c.PllOutputEnable)
}
