// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sfpconvd provides the SFP converter daemon. It configures the
// board, publishes its identity, clock plan and status to redis, then
// switches modes on hset of sfpconv.mode and sfpconv.loopback.
package sfpconvd

import (
	"errors"
	"fmt"
	"net/rpc"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/atsock"
	"github.com/platinasystems/eeprom"
	"github.com/platinasystems/log"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"
	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"
	"github.com/platinasystems/sfpconv"
	"github.com/platinasystems/sfpconv/cmd"
	"github.com/platinasystems/sfpconv/internal/sfpio"
	"github.com/platinasystems/sfpconv/internal/si5351"
	"github.com/platinasystems/sfpconv/lang"
)

const (
	Name = "sfpconvd"

	// Hset fields served by the daemon.
	ModeField     = "sfpconv.mode"
	LoopbackField = "sfpconv.loopback"
)

// Mode switch retry bounds.
var (
	Retries  = 4
	MinRetry = 100 * time.Millisecond
	MaxRetry = 2 * time.Second
)

var ErrField = errors.New("cannot hset")

// Board is the subset of *sfpconv.Board used by the daemon.
type Board interface {
	Configure() error
	SwitchMode(sfpconv.Mode, sfpio.LoopbackMode) error
	Mode() sfpconv.Mode
	IsSynced() bool
	Status() (sfpio.Status, error)
	ClockStatus() (si5351.DeviceStatus, error)
	Params() si5351.Params
	Frequencies() si5351.Frequencies
}

type printer interface {
	Print(...interface{}) (int, error)
}

type Command struct {
	Info
	// Config may be changed by Init before the board is opened.
	Config sfpconv.Config
	// Version, if set, is published as sfpconv.version.
	Version func() string
	Init    func()
	init    sync.Once
}

type Info struct {
	mutex    sync.Mutex
	rpc      *atsock.RpcServer
	pub      printer
	board    Board
	stop     chan struct{}
	stopped  bool
	lasts    map[string]string
	loopback sfpio.LoopbackMode
	elog     *log.Limited
}

func New() *Command {
	return &Command{Config: sfpconv.DefaultConfig}
}

func (*Command) String() string { return Name }

func (*Command) Usage() string { return Name }

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "SFP optical converter daemon",
	}
}

func (*Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Configure the converter powered down with its clock synthesizer
	programmed, then poll and publish its status.

	Switch the operating mode or loopback with,

	hset platina sfpconv.mode off | tx | rx | full-duplex | sync
	hset platina sfpconv.loopback disabled | local | line

	A failed switch is retried with backoff before it's reported.`,
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(args ...string) error {
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}
	if c.Init != nil {
		c.init.Do(c.Init)
	}
	err := redis.IsReady()
	if err != nil {
		return err
	}
	pub, err := publisher.New()
	if err != nil {
		return err
	}
	defer pub.Close()

	board, err := sfpconv.Open(c.Config)
	if err != nil {
		return err
	}
	c.Info.start(board, pub)
	if err = c.Info.configure(); err != nil {
		return err
	}
	ver := ""
	if c.Version != nil {
		ver = c.Version()
	}
	c.Info.identify(c.Config, ver)

	if c.rpc, err = atsock.NewRpcServer(Name); err != nil {
		return err
	}
	defer c.rpc.Close()
	rpc.Register(&c.Info)
	err = redis.Assign(redis.DefaultHash+":sfpconv.", Name, "Info")
	if err != nil {
		return err
	}

	stop := c.done()
	t := time.NewTicker(c.Config.Poll)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return nil
		case <-t.C:
			if err = c.Info.update(); err != nil {
				c.elog.Print("daemon", "err", Name, ": ", err)
			}
		}
	}
}

// Close stops Main, whether it's already polling or yet to start.
func (c *Command) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.stop == nil {
		c.stop = make(chan struct{})
	}
	if !c.stopped {
		close(c.stop)
		c.stopped = true
	}
	return nil
}

// done returns the channel closed by Close.
func (i *Info) done() <-chan struct{} {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if i.stop == nil {
		i.stop = make(chan struct{})
	}
	return i.stop
}

func (i *Info) start(board Board, pub printer) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.board = board
	i.pub = pub
	if i.stop == nil {
		i.stop = make(chan struct{})
	}
	i.lasts = make(map[string]string)
	i.elog = log.NewLimited(20)
}

// configure brings up the board and publishes the clock plan. A plan with
// truncated ratios is published as inexact and logged.
func (i *Info) configure() error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if err := i.board.Configure(); err != nil {
		return err
	}
	p := i.board.Params()
	i.publish("clock.source", p.Source)
	i.publish("clock.pll.units.Hz", p.VcoHz())
	i.publish("clock.pll.ratio", p.PllA)
	i.publish("clock.refclk.units.Hz", p.Hz(si5351.RefClk))
	i.publish("clock.refclk.divider", p.MS[si5351.RefClk])
	i.publish("clock.tclk.units.Hz", p.Hz(si5351.Tclk))
	i.publish("clock.tclk.divider", p.MS[si5351.Tclk])
	f := i.board.Frequencies()
	i.publish("clock.exact", f.Exact())
	if !f.Exact() {
		plan, _ := f.Plan()
		i.elog.Print("daemon", "warn", Name, ": inexact clock, ", plan)
	}
	i.publish("mode", i.board.Mode())
	i.publish("loopback", i.loopback)
	return nil
}

// identify publishes the program version and the board's eeprom fields, if
// any.
func (i *Info) identify(cfg sfpconv.Config, ver string) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if len(ver) > 0 {
		i.publish("version", ver)
	}
	d := eeprom.Device{
		BusIndex:   cfg.Bus,
		BusAddress: cfg.EepromAddr,
	}
	if err := d.GetInfo(); err != nil {
		log.Print("daemon", "info", "eeprom: ", err)
		return
	}
	for _, kv := range [][2]string{
		{"eeprom.ProductName", d.Fields.ProductName},
		{"eeprom.PartNumber", d.Fields.PartNumber},
		{"eeprom.SerialNumber", d.Fields.SerialNumber},
	} {
		if len(kv[1]) > 0 {
			i.publish(kv[0], kv[1])
		}
	}
}

// publish prints the sfpconv prefixed key if its value has changed.
func (i *Info) publish(k string, v interface{}) {
	k = "sfpconv." + k
	s := fmt.Sprint(v)
	if last, found := i.lasts[k]; found && last == s {
		return
	}
	if _, err := i.pub.Print(k, ": ", s); err != nil {
		i.elog.Print("daemon", "err", Name, ": ", err)
		return
	}
	i.lasts[k] = s
}

func (i *Info) update() error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.publish("synced", i.board.IsSynced())
	cs, err := i.board.ClockStatus()
	if err == nil {
		i.publish("clock.locked", cs.Locked())
	}
	s, serr := i.board.Status()
	if serr != nil {
		return serr
	}
	for _, kv := range s.Fields() {
		i.publish(kv[0], kv[1])
	}
	return err
}

// switchMode retries a failed switch with backoff; the last error is
// returned.
func (i *Info) switchMode(m sfpconv.Mode, lo sfpio.LoopbackMode) error {
	b := &backoff.Backoff{
		Min:    MinRetry,
		Max:    MaxRetry,
		Factor: 2,
		Jitter: false,
	}
	var err error
	for n := 0; n < Retries; n++ {
		if n > 0 {
			time.Sleep(b.Duration())
		}
		if err = i.board.SwitchMode(m, lo); err == nil {
			i.loopback = lo
			i.publish("mode", m)
			i.publish("loopback", lo)
			return nil
		}
		i.elog.Print("daemon", "warn", Name, ": ", m, ": ", err)
	}
	return err
}

func (i *Info) Hset(args args.Hset, reply *reply.Hset) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	v := strings.TrimRight(string(args.Value), "\n")
	switch args.Field {
	case ModeField:
		m, err := sfpconv.ParseMode(v)
		if err != nil {
			return err
		}
		if err = i.switchMode(m, i.loopback); err != nil {
			return err
		}
	case LoopbackField:
		lo, err := sfpio.ParseLoopbackMode(v)
		if err != nil {
			return err
		}
		if err = i.switchMode(i.board.Mode(), lo); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrField, args.Field)
	}
	*reply = 1
	return nil
}
