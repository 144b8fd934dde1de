// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is the SFP optical converter machine; link sfpconv and sfpconvd to it
// or run them as its first argument.
package main

import (
	"github.com/platinasystems/sfpconv/cmd"
	"github.com/platinasystems/sfpconv/cmd/sfpconv"
	"github.com/platinasystems/sfpconv/cmd/sfpconvd"
	"github.com/platinasystems/sfpconv/cmd/version"
	"github.com/platinasystems/sfpconv/internal/goes"
	"github.com/platinasystems/sfpconv/internal/pins"
)

const (
	Machine  = "goes-sfpconv"
	ConfFile = "/etc/sfpconv.conf"
)

// Version is set with -ldflags "-X main.Version=..."
var Version string

var (
	command = sfpconv.New()
	daemon  = sfpconvd.New()
)

func main() {
	pins.File = "/boot/sfpconv.dtb"
	cmd.Initters = map[string]func(){
		sfpconv.Name:  sfpconvInit,
		sfpconvd.Name: pins.Init,
	}
	ver := &version.Command{V: Version}
	daemon.Version = ver.Version
	goes.New(Machine, command, daemon, ver).Main()
}

func sfpconvInit() {
	loadConf(&command.Config)
}
