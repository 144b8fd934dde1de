// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package goes

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/platinasystems/sfpconv/cmd"
	"github.com/platinasystems/sfpconv/lang"
)

var errEcho = errors.New("echo failed")

type echo struct {
	w    io.Writer
	args []string
	err  error
}

func (*echo) String() string    { return "echo" }
func (*echo) Usage() string     { return "echo [STRING]..." }
func (*echo) Apropos() lang.Alt { return lang.Alt{lang.EnUS: "print arguments"} }

func (*echo) Man() lang.Alt {
	return lang.Alt{lang.EnUS: "DESCRIPTION\n\tPrint the arguments."}
}

func (c *echo) Main(args ...string) error {
	c.args = args
	if c.err != nil {
		return c.err
	}
	_, err := io.WriteString(c.w, strings.Join(args, " ")+"\n")
	return err
}

type hidden struct{ closed int }

func (*hidden) String() string       { return "hidden" }
func (*hidden) Usage() string        { return "hidden" }
func (*hidden) Apropos() lang.Alt    { return lang.Alt{lang.EnUS: "not shown"} }
func (*hidden) Main(...string) error { return io.EOF }
func (*hidden) Kind() cmd.Kind       { return cmd.Hidden }
func (h *hidden) Close() error {
	h.closed++
	return nil
}

func newTest() (*Goes, *echo, *hidden, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	e := &echo{w: buf}
	h := new(hidden)
	g := New("goes-test", e, h)
	g.Stdout = buf
	return g, e, h, buf
}

func TestDispatch(t *testing.T) {
	for _, args := range [][]string{
		{"/usr/bin/goes-test", "echo", "a", "b"},
		{"/usr/sbin/echo", "a", "b"},
	} {
		g, e, _, buf := newTest()
		if err := g.Main(args...); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "a b\n" {
			t.Errorf("%q: output %q", args, got)
		}
		if len(e.args) != 2 {
			t.Errorf("%q: args %q", args, e.args)
		}
	}
}

func TestErrors(t *testing.T) {
	g, e, h, _ := newTest()
	if err := g.Main("goes-test", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("nope: %v", err)
	}
	e.err = errEcho
	err := g.Main("goes-test", "echo")
	if !errors.Is(err, errEcho) || !strings.HasPrefix(err.Error(), "echo: ") {
		t.Errorf("echo: %v", err)
	}
	if err = g.Main("goes-test", "hidden"); err != nil {
		t.Errorf("EOF not cleared: %v", err)
	}
	if err = g.Close(); err != nil || h.closed != 1 {
		t.Error("hidden command not closed")
	}
}

func TestHelpers(t *testing.T) {
	for _, x := range []struct {
		args []string
		want string
	}{
		{
			[]string{"goes-test", "echo", "-usage"},
			"usage:\techo [STRING]...\n",
		},
		{
			[]string{"goes-test", "-apropos"},
			"echo        - print arguments\n",
		},
		{
			[]string{"goes-test", "echo", "--help"},
			"usage:\techo [STRING]...\n\nDESCRIPTION\n\tPrint the arguments.\n",
		},
	} {
		g, _, _, buf := newTest()
		lang.Lang = lang.EnUS
		if err := g.Main(x.args...); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != x.want {
			t.Errorf("%q:\n%q, expected\n%q", x.args, got, x.want)
		}
	}
}

func TestHelp(t *testing.T) {
	g, _, _, buf := newTest()
	if err := g.Main("goes-test"); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	if !strings.Contains(s, "echo") || strings.Contains(s, "hidden") {
		t.Errorf("help:\n%s", s)
	}
}

func TestMainOsArgs(t *testing.T) {
	g, _, _, buf := newTest()
	defer func(args []string) { os.Args = args }(os.Args)
	os.Args = []string{"goes-test", "echo", "x"}
	if err := g.Main(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "x\n" {
		t.Errorf("output %q", buf.String())
	}
	var code int
	defer func() { Exit = os.Exit }()
	Exit = func(i int) { code = i }
	os.Args = []string{"goes-test", "nope"}
	g.Main()
	if code != 1 {
		t.Errorf("exit %d", code)
	}
}
