// Copyright © 2019-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package version

import (
	"fmt"
	"io"
	"os"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/sfpconv/internal/buildinfo"
	"github.com/platinasystems/sfpconv/lang"
)

type Command struct {
	// V is reported by development builds.
	V      string
	Stdout io.Writer
}

func (Command) String() string { return "version" }
func (Command) Usage() string  { return "version [-v]" }

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "print goes-sfpconv version",
	}
}

func (c *Command) Main(args ...string) error {
	flag, args := flags.New(args, "-v")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	bi := buildinfo.New()
	if flag.ByName["-v"] {
		_, err := fmt.Fprintln(w, bi)
		return err
	}
	_, err := fmt.Fprintln(w, c.Version())
	return err
}

// Version returns the module version or V if this is a development build.
func (c *Command) Version() string {
	ver := buildinfo.New().Version()
	switch ver {
	case "", "(devel)", buildinfo.Unavailable:
		if len(c.V) > 0 {
			ver = c.V
		}
	}
	return ver
}
