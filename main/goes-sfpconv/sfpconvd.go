// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package main

import (
	"os"

	"github.com/platinasystems/log"
	"github.com/platinasystems/sfpconv"
)

func init() { daemon.Init = sfpconvdInit }

func sfpconvdInit() {
	loadConf(&daemon.Config)
	log.Print("daemon", "info", "sfpconvd: ", daemon.Config.String())
}

// loadConf applies the machine's configuration file, if any, over the
// defaults.
func loadConf(cfg *sfpconv.Config) {
	f, err := os.Open(ConfFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Print("daemon", "err", err)
		}
		return
	}
	defer f.Close()
	if err = cfg.Load(f); err != nil {
		log.Print("daemon", "err", ConfFile, ": ", err)
	}
}
