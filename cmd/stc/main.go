// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// stc is the structured-text front end inspection tool.
//
// Usage:
//
//	stc tokens file.st        Dump the token stream
//	stc ast file.st           Print the syntax tree
//	stc check a.st b.st       Parse, index and fold constants, report problems
//	stc consts a.st b.st      Print the folded constants
//	stc dumpconfig            Print the effective configuration
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"
)

var app = cli.NewApp()

func init() {
	app.Name = "stc"
	app.Usage = "structured text front end"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		noColorFlag,
		maxDepthFlag,
	}
	app.Commands = []cli.Command{
		tokensCommand,
		astCommand,
		checkCommand,
		constsCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		setupLogging(cfg.Log)
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
