// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sfpconv provides the command to show and switch the SFP converter
// through its daemon or, with -direct, on the i2c bus.
package sfpconv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/sfpconv"
	"github.com/platinasystems/sfpconv/cmd/sfpconvd"
	"github.com/platinasystems/sfpconv/internal/sfpio"
	"github.com/platinasystems/sfpconv/internal/si5351"
	"github.com/platinasystems/sfpconv/lang"
)

const Name = "sfpconv"

var ErrUsage = errors.New("invalid command")

// Board is the subset of *sfpconv.Board used with -direct.
type Board interface {
	Configure() error
	SwitchMode(sfpconv.Mode, sfpio.LoopbackMode) error
	IsSynced() bool
	Status() (sfpio.Status, error)
	ClockStatus() (si5351.DeviceStatus, error)
	Params() si5351.Params
}

// Hash is the redis hash published by the daemon.
type Hash interface {
	Hget(field string) (string, error)
	Hkeys() ([]string, error)
	Hset(field, value string) error
}

type redisHash struct{}

func (redisHash) Hget(field string) (string, error) {
	return redis.Hget(redis.DefaultHash, field)
}

func (redisHash) Hkeys() ([]string, error) {
	return redis.Hkeys(redis.DefaultHash)
}

func (redisHash) Hset(field, value string) error {
	_, err := redis.Hset(redis.DefaultHash, field, value)
	return err
}

type Command struct {
	Config sfpconv.Config
	Open   func(sfpconv.Config) (Board, error)
	Hash   Hash
	Stdout io.Writer
}

func New() *Command {
	return &Command{
		Config: sfpconv.DefaultConfig,
		Open: func(cfg sfpconv.Config) (Board, error) {
			b, err := sfpconv.Open(cfg)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		Hash:   redisHash{},
		Stdout: os.Stdout,
	}
}

func (*Command) String() string { return Name }

func (*Command) Usage() string {
	return `sfpconv [-direct] [-bus N] [-ioexp ADDR] [-si5351 ADDR] [status]
sfpconv [OPTION]... clock | synced
sfpconv [OPTION]... mode MODE [LOOPBACK]
sfpconv [OPTION]... configure`
}

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "show or switch the SFP converter",
	}
}

func (*Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Show the converter status, its clock plan or lock state; or switch
	its operating mode.

	MODE is one of off, tx, rx, full-duplex, or sync.
	LOOPBACK is one of disabled, local, or line; it's disabled if
	omitted, with or without -direct.

	Without -direct, this reads and writes the daemon's redis fields.
	The configure command is always direct.

OPTIONS
	-direct
		access the board on the i2c bus instead of the daemon
	-bus N
		i2c adapter index
	-ioexp ADDR
	-si5351 ADDR
		device addresses`,
	}
}

func (c *Command) Main(args ...string) error {
	flag, args := flags.New(args, "-direct")
	parm, args := parms.New(args, "-bus", "-ioexp", "-si5351")
	cfg := c.Config
	for _, k := range []string{"-bus", "-ioexp", "-si5351"} {
		if v := parm.ByName[k]; len(v) > 0 {
			if err := cfg.Set(k[1:], v); err != nil {
				return err
			}
		}
	}
	if len(args) == 0 {
		args = []string{"status"}
	}
	direct := flag.ByName["-direct"]
	switch args[0] {
	case "status":
		if direct {
			return c.withBoard(cfg, c.status)
		}
		return c.published(Name + ".")
	case "clock":
		if direct {
			return c.withBoard(cfg, c.clock)
		}
		return c.published(Name + ".clock.")
	case "synced":
		if direct {
			return c.withBoard(cfg, func(b Board) error {
				fmt.Fprintln(c.Stdout, b.IsSynced())
				return nil
			})
		}
		s, err := c.Hash.Hget(Name + ".synced")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.Stdout, s)
		return nil
	case "mode":
		return c.mode(cfg, direct, args[1:]...)
	case "configure":
		return c.withBoard(cfg, Board.Configure)
	}
	return fmt.Errorf("%s: %w", args[0], ErrUsage)
}

func (c *Command) withBoard(cfg sfpconv.Config, f func(Board) error) error {
	b, err := c.Open(cfg)
	if err != nil {
		return err
	}
	return f(b)
}

func (c *Command) mode(cfg sfpconv.Config, direct bool, args ...string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("mode: %w", ErrUsage)
	}
	m, err := sfpconv.ParseMode(args[0])
	if err != nil {
		return err
	}
	lo := sfpio.LoopbackDisabled
	if len(args) > 1 {
		if lo, err = sfpio.ParseLoopbackMode(args[1]); err != nil {
			return err
		}
	}
	if direct {
		return c.withBoard(cfg, func(b Board) error {
			return b.SwitchMode(m, lo)
		})
	}
	if err = c.Hash.Hset(sfpconvd.ModeField, m.String()); err != nil {
		return err
	}
	return c.Hash.Hset(sfpconvd.LoopbackField, lo.String())
}

func (c *Command) status(b Board) error {
	s, err := b.Status()
	if err != nil {
		return err
	}
	return c.print(append(s.Fields(),
		[2]string{"synced", strconv.FormatBool(b.IsSynced())}))
}

func (c *Command) clock(b Board) error {
	p := b.Params()
	fields := [][2]string{
		{"clock.source", p.Source.String()},
		{"clock.pll.units.Hz", fmt.Sprint(p.VcoHz())},
		{"clock.pll.ratio", p.PllA.String()},
		{"clock.refclk.units.Hz", fmt.Sprint(p.Hz(si5351.RefClk))},
		{"clock.refclk.divider", p.MS[si5351.RefClk].String()},
		{"clock.tclk.units.Hz", fmt.Sprint(p.Hz(si5351.Tclk))},
		{"clock.tclk.divider", p.MS[si5351.Tclk].String()},
	}
	cs, err := b.ClockStatus()
	if err != nil {
		return err
	}
	b2s := strconv.FormatBool
	fields = append(fields,
		[2]string{"clock.locked", b2s(cs.Locked())},
		[2]string{"clock.sys_init", b2s(cs.SysInit)},
		[2]string{"clock.lol_a", b2s(cs.LossOfLockA)},
		[2]string{"clock.los_xtal", b2s(cs.LossOfXtal)},
		[2]string{"clock.los_clkin", b2s(cs.LossOfClkin)},
	)
	return c.print(fields)
}

// published prints the daemon's fields with the given prefix.
func (c *Command) published(prefix string) error {
	keys, err := c.Hash.Hkeys()
	if err != nil {
		return err
	}
	sort.Strings(keys)
	var fields [][2]string
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		v, err := c.Hash.Hget(k)
		if err != nil {
			return err
		}
		fields = append(fields, [2]string{
			strings.TrimPrefix(k, Name+"."), v,
		})
	}
	if len(fields) == 0 {
		return fmt.Errorf("no %s fields; is %s running?",
			strings.TrimSuffix(prefix, "."), sfpconvd.Name)
	}
	return c.print(fields)
}

// print aligns a table for a terminal, otherwise it prints "KEY: VALUE"
// lines.
func (c *Command) print(fields [][2]string) error {
	if !c.isTerminal() {
		for _, kv := range fields {
			fmt.Fprint(c.Stdout, kv[0], ": ", kv[1], "\n")
		}
		return nil
	}
	w := tabwriter.NewWriter(c.Stdout, 0, 8, 2, ' ', 0)
	for _, kv := range fields {
		fmt.Fprint(w, kv[0], "\t", kv[1], "\n")
	}
	return w.Flush()
}

func (c *Command) isTerminal() bool {
	f, ok := c.Stdout.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
