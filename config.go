// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sfpconv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/platinasystems/sfpconv/internal/si5351"
)

var (
	ErrConfig = errors.New("unknown config parameter")
	ErrSyntax = errors.New("expected NAME VALUE")
)

// Config describes where the board's devices are and how to clock it.
type Config struct {
	// i2c adapter index, /dev/i2c-N
	Bus        int
	IOExpAddr  int
	Si5351Addr int
	EepromAddr int

	ClockSource si5351.Source
	XtalLoad    si5351.XtalLoad
	SourceHz    uint32
	PllHz       uint32
	RefClkHz    uint32
	TclkHz      uint32

	// gpio.Pins names
	SyncPin string
	LockPin string

	// Status poll interval of the daemon.
	Poll time.Duration
}

var DefaultConfig = Config{
	Bus:        0,
	IOExpAddr:  0x20,
	Si5351Addr: 0x60,
	EepromAddr: 0x51,

	ClockSource: si5351.Xtal,
	XtalLoad:    si5351.Load10pF,
	SourceHz:    25000000,
	PllHz:       625000000,
	RefClkHz:    156250000,
	TclkHz:      156250000,

	SyncPin: "SFP_SYNC",
	LockPin: "SFP_LOCK_L",

	Poll: time.Second,
}

func (c *Config) Frequencies() si5351.Frequencies {
	return si5351.Frequencies{
		Source: c.SourceHz,
		Pll:    c.PllHz,
		RefClk: c.RefClkHz,
		Tclk:   c.TclkHz,
	}
}

func (c *Config) Clock() si5351.ClockConfig {
	return si5351.ClockConfig{
		Source:      c.ClockSource,
		XtalLoad:    c.XtalLoad,
		Frequencies: c.Frequencies(),
	}
}

func parseInt(p *int) func(string) error {
	return func(s string) error {
		i, err := strconv.ParseInt(s, 0, 0)
		if err == nil {
			*p = int(i)
		}
		return err
	}
}

func parseHz(p *uint32) func(string) error {
	return func(s string) error {
		u, err := strconv.ParseUint(s, 0, 32)
		if err == nil {
			*p = uint32(u)
		}
		return err
	}
}

func (c *Config) setters() map[string]func(string) error {
	return map[string]func(string) error{
		"bus":       parseInt(&c.Bus),
		"ioexp":     parseInt(&c.IOExpAddr),
		"si5351":    parseInt(&c.Si5351Addr),
		"eeprom":    parseInt(&c.EepromAddr),
		"src-hz":    parseHz(&c.SourceHz),
		"pll-hz":    parseHz(&c.PllHz),
		"refclk-hz": parseHz(&c.RefClkHz),
		"tclk-hz":   parseHz(&c.TclkHz),
		"clk-src": func(s string) error {
			src, err := si5351.ParseSource(s)
			if err == nil {
				c.ClockSource = src
			}
			return err
		},
		"xtal-load": func(s string) error {
			load, err := si5351.ParseXtalLoad(s)
			if err == nil {
				c.XtalLoad = load
			}
			return err
		},
		"sync-pin": func(s string) error {
			c.SyncPin = s
			return nil
		},
		"lock-pin": func(s string) error {
			c.LockPin = s
			return nil
		},
		"poll": func(s string) error {
			d, err := time.ParseDuration(s)
			if err == nil {
				c.Poll = d
			}
			return err
		},
	}
}

// Set parses value into the named parameter.
func (c *Config) Set(name, value string) error {
	f, found := c.setters()[name]
	if !found {
		return fmt.Errorf("%s: %w", name, ErrConfig)
	}
	if err := f(value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Load sets the "NAME VALUE" parameters read from r. Blank lines and those
// beginning with '#' are skipped.
func (c *Config) Load(r io.Reader) error {
	scan := bufio.NewScanner(r)
	for n := 1; scan.Scan(); n++ {
		line := strings.TrimSpace(scan.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("line %d: %q: %w", n, line, ErrSyntax)
		}
		if err := c.Set(fields[0], fields[1]); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scan.Err()
}

func (c Config) String() string {
	return fmt.Sprintf("i2c-%d ioexp %#02x si5351 %#02x, %v %d Hz, "+
		"pll %d Hz, refclk %d Hz, tclk %d Hz",
		c.Bus, c.IOExpAddr, c.Si5351Addr, c.ClockSource, c.SourceHz,
		c.PllHz, c.RefClkHz, c.TclkHz)
}

// Parameters lists the names accepted by Set.
func Parameters() []string {
	var c Config
	var names []string
	for name := range c.setters() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
