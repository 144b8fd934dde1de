// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pins

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/platinasystems/fdt"
	"github.com/platinasystems/gpio"
)

type fakeLine struct {
	v   bool
	err error
}

func (l *fakeLine) SetValue(v bool) error {
	if l.err != nil {
		return l.err
	}
	l.v = v
	return nil
}

func (l *fakeLine) Value() (bool, error) { return l.v, l.err }

func TestGatherPins(t *testing.T) {
	gpio.Aliases = make(gpio.GpioAliasMap)
	gpio.Pins = make(gpio.PinMap)
	gatherAliases(&fdt.Node{
		Name: "aliases",
		Properties: map[string][]byte{
			"gpio2":  []byte("/ahb/apb/gpio@1e780000\x00"),
			"serial": []byte("/ahb/apb/serial@1e783000\x00"),
		},
	})
	if gpio.Aliases["gpio2"] != "gpio@1e780000" {
		t.Fatalf("aliases %v", gpio.Aliases)
	}
	if _, found := gpio.Aliases["serial"]; found {
		t.Error("non-gpio alias gathered")
	}
	desc := []byte("desc\x00")
	gatherPins(&fdt.Node{
		Name: "gpio@1e780000",
		Children: map[string]*fdt.Node{
			"SFP_SYNC@5": {
				Name: "SFP_SYNC@5",
				Properties: map[string][]byte{
					"gpio-pin-desc": desc,
					"output-low":    nil,
				},
			},
			"SFP_LOCK@6": {
				Name: "SFP_LOCK@6",
				Properties: map[string][]byte{
					"gpio-pin-desc": desc,
					"input":         nil,
				},
			},
			"nomode@7": {
				Name: "nomode@7",
				Properties: map[string][]byte{
					"gpio-pin-desc": desc,
				},
			},
		},
	}, "gpio-controller", "")
	for name, want := range map[string]gpio.Pin{
		"SFP_SYNC": gpio.IsOutputLo | 64 | 5,
		"SFP_LOCK": gpio.IsInput | 64 | 6,
	} {
		if got := gpio.Pins[name]; got != want {
			t.Errorf("%s: %#x, expected %#x", name, got, want)
		}
	}
	if _, found := gpio.Pins["nomode"]; found {
		t.Error("pin w/o mode gathered")
	}
	if _, err := Lookup("SFP_LOCK"); err != nil {
		t.Error(err)
	}
	if _, err := Lookup("SFP_NONE"); !errors.Is(err, ErrNoPin) {
		t.Errorf("SFP_NONE: %v", err)
	}
}

func TestLogged(t *testing.T) {
	l := &fakeLine{}
	p := NewLogged("SFP_SYNC", l)
	p.Set(true)
	if !l.v || !p.Get() {
		t.Error("set pin reads low")
	}
	l.v = false
	if p.Get() {
		t.Error("cleared line reads high")
	}
	l.v, l.err = true, errors.New("no such device")
	p.Set(false)
	if !l.v {
		t.Error("line changed by failed set")
	}
	if p.Get() {
		t.Error("failed sample reads high")
	}
}

func TestLoadMissingFile(t *testing.T) {
	gpio.Pins = gpio.PinMap{"SFP_SYNC": gpio.IsOutputLo | 5}
	fn := filepath.Join(t.TempDir(), "sfpconv.dtb")
	if err := load(fn); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("%s: %v", fn, err)
	}
	if len(gpio.Pins) != 0 {
		t.Error("stale pins after failed load")
	}
	if _, err := Lookup("SFP_SYNC"); !errors.Is(err, ErrNoPin) {
		t.Errorf("SFP_SYNC: %v", err)
	}
}
