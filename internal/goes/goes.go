// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes dispatches the commands of a multi-call program by the base
// name of its invocation or its first argument.
package goes

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/platinasystems/log"
	"github.com/platinasystems/sfpconv/cmd"
)

var (
	Exit = os.Exit

	ErrNotFound = errors.New("command not found")
)

type Goes struct {
	Name   string
	ByName map[string]cmd.Cmd
	Stdout io.Writer
}

// New maps the commands by name; duplicates panic.
func New(name string, cmds ...cmd.Cmd) *Goes {
	g := &Goes{
		Name:   name,
		ByName: make(map[string]cmd.Cmd),
		Stdout: os.Stdout,
	}
	for _, v := range cmds {
		k := v.String()
		if _, found := g.ByName[k]; found {
			panic(fmt.Errorf("%s: duplicate", k))
		}
		g.ByName[k] = v
	}
	return g
}

func (g *Goes) String() string { return g.Name }

// Keys returns the sorted names of the commands that aren't hidden.
func (g *Goes) Keys() []string {
	keys := make([]string, 0, len(g.ByName))
	for k, v := range g.ByName {
		if !cmd.WhatKind(v).IsHidden() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Main runs the command named by the base of args[0] or, if that isn't a
// command, by args[1]. Without args, this uses os.Args and exits instead of
// returning an error.
//
// "-help", "-apropos", and "-usage" following the command name are swapped
// with it to run the respective helper.
func (g *Goes) Main(args ...string) (err error) {
	if len(args) == 0 {
		args = os.Args
		if len(args) == 0 {
			return nil
		}
		defer func() {
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", g.Name, err)
				Exit(1)
			}
		}()
	}
	if _, found := g.ByName[filepath.Base(args[0])]; found {
		args[0] = filepath.Base(args[0])
	} else {
		args = args[1:]
	}
	if len(args) == 0 {
		return g.help()
	}
	cmd.Swap(args)
	name := args[0]
	args = args[1:]
	switch name {
	case "apropos":
		return g.apropos(args...)
	case "help":
		if len(args) == 0 {
			return g.help()
		}
		return g.man(args[0])
	case "usage":
		if len(args) == 0 {
			return g.usage(g.Name)
		}
		return g.usage(args[0])
	}
	v, found := g.ByName[name]
	if !found {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	cmd.Init(name)
	if cmd.WhatKind(v).IsDaemon() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sig)
		go func() {
			if _, ok := <-sig; ok {
				if err := cmd.Close(v); err != nil {
					log.Print("daemon", "err", name, ": ", err)
				}
			}
		}()
	}
	err = v.Main(args...)
	if err == io.EOF {
		err = nil
	}
	if err != nil && !cmd.WhatKind(v).IsDaemon() {
		err = fmt.Errorf("%s: %w", name, err)
	}
	return err
}

// Close each command that has a Close method; the first error is returned.
func (g *Goes) Close() error {
	var first error
	for _, v := range g.ByName {
		if err := cmd.Close(v); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (g *Goes) apropos(args ...string) error {
	if len(args) == 0 {
		args = g.Keys()
	}
	for _, k := range args {
		v, found := g.ByName[k]
		if !found {
			return fmt.Errorf("%s: %w", k, ErrNotFound)
		}
		fmt.Fprintf(g.Stdout, "%-12s- %s\n", k, v.Apropos())
	}
	return nil
}

func (g *Goes) help() error {
	fmt.Fprintf(g.Stdout, "usage:\t%s COMMAND [ARGS]...\n", g.Name)
	fmt.Fprintln(g.Stdout, "\tCOMMAND -help | -apropos | -usage")
	fmt.Fprintln(g.Stdout)
	return g.apropos()
}

func (g *Goes) usage(name string) error {
	if name == g.Name {
		fmt.Fprintf(g.Stdout, "usage:\t%s COMMAND [ARGS]...\n", g.Name)
		return nil
	}
	v, found := g.ByName[name]
	if !found {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	fmt.Fprintln(g.Stdout, "usage:\t"+
		strings.Replace(strings.TrimSpace(v.Usage()), "\n", "\n\t", -1))
	return nil
}

func (g *Goes) man(name string) error {
	if err := g.usage(name); err != nil {
		return err
	}
	if man := cmd.Man(g.ByName[name]); len(man) > 0 {
		fmt.Fprintln(g.Stdout)
		fmt.Fprintln(g.Stdout, strings.TrimSpace(man))
	}
	return nil
}
