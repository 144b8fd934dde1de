// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pins resolves named gpio lines from the device tree and adapts
// them to the infallible Pin of the board controller.
package pins

import (
	"errors"
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"
	"sync"

	"github.com/platinasystems/fdt"
	"github.com/platinasystems/gpio"
	"github.com/platinasystems/log"
)

var ErrNoPin = errors.New("no such pin")

// Pin is a digital line that is set or sampled w/o reporting errors.
type Pin interface {
	Set(bool)
	Get() bool
}

// Line is the sysfs access of gpio.Pin.
type Line interface {
	SetValue(bool) error
	Value() (bool, error)
}

// File is the device tree blob that describes the gpio pins.
var File = "/boot/linux.dtb"

var initOnce sync.Once

// Init builds the gpio pin map from File and sets the direction of each
// pin. It runs once per process.
func Init() {
	initOnce.Do(func() {
		if err := load(File); err != nil {
			log.Print("daemon", "err", err)
		}
	})
}

func load(fn string) error {
	gpio.Aliases = make(gpio.GpioAliasMap)
	gpio.Pins = make(gpio.PinMap)
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	Parse(b)
	for name, p := range gpio.Pins {
		if err := p.SetDirection(); err != nil {
			log.Print("daemon", "err", name, ": ", err)
		}
	}
	return nil
}

// Parse adds the aliases and pins of a flattened device tree to gpio.Aliases
// and gpio.Pins.
func Parse(b []byte) {
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	t.Parse(b)
	t.MatchNode("aliases", gatherAliases)
	t.EachProperty("gpio-controller", "", gatherPins)
}

func gatherAliases(n *fdt.Node) {
	for p, pn := range n.Properties {
		if strings.Contains(p, "gpio") {
			val := strings.Split(string(pn), "\x00")
			v := strings.Split(val[0], "/")
			gpio.Aliases[p] = v[len(v)-1]
		}
	}
}

// Children of each aliased controller named NAME@INDEX with a gpio-pin-desc
// and one of output-high, output-low or input become gpio.Pins[NAME].
func gatherPins(n *fdt.Node, name string, value string) {
	for bank, alias := range gpio.Aliases {
		if alias != n.Name {
			continue
		}
		for _, c := range n.Children {
			var pn []string
			var mode string
			for p := range c.Properties {
				switch p {
				case "gpio-pin-desc":
					pn = strings.Split(c.Name, "@")
				case "output-high", "output-low", "input":
					mode = p
				}
			}
			if mode == "" || len(pn) != 2 {
				continue
			}
			i, err := strconv.Atoi(pn[1])
			if err != nil {
				continue
			}
			gpio.Pins[pn[0]] = gpio.GpioPinMode[mode] |
				gpio.GpioBankToBase[bank] |
				gpio.Pin(i)
		}
	}
}

// Logged is a Pin that logs, rather than returns, line errors. A failed
// sample reads as false.
type Logged struct {
	Name string
	Line Line
	// Limit the number of logged errors.
	log *log.Limited
}

const maxLogged = 16

func NewLogged(name string, l Line) *Logged {
	return &Logged{Name: name, Line: l, log: log.NewLimited(maxLogged)}
}

// Lookup returns the named pin of gpio.Pins.
func Lookup(name string) (*Logged, error) {
	p, found := gpio.Pins[name]
	if !found {
		return nil, fmt.Errorf("%s: %w", name, ErrNoPin)
	}
	return NewLogged(name, p), nil
}

func (p *Logged) String() string { return p.Name }

func (p *Logged) print(args ...interface{}) {
	if p.log == nil {
		p.log = log.NewLimited(maxLogged)
	}
	p.log.Print(append([]interface{}{"daemon", "err", p.Name, ": "},
		args...)...)
}

func (p *Logged) Set(v bool) {
	if err := p.Line.SetValue(v); err != nil {
		p.print("set ", v, ": ", err)
	}
}

func (p *Logged) Get() bool {
	v, err := p.Line.Value()
	if err != nil {
		p.print(err)
		return false
	}
	return v
}
