package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `airsight discovers 802.11 networks and flags risky configurations.

Usage:
  airsight <command> [flags]

Commands:
  interfaces   list wireless adapters and their capabilities
  scan         monitor-mode scan with channel hopping, then analyze
  basic        managed-mode (iwlist) scan, then analyze
  replay       run a pcap capture through the scan pipeline
  analyze      analyze the networks stored in the database

Run "airsight <command> -h" for command flags.
`

type command func(ctx context.Context, args []string, stdout io.Writer) error

var commands = map[string]command{
	"interfaces": runInterfaces,
	"scan":       runScan,
	"basic":      runBasic,
	"replay":     runReplay,
	"analyze":    runAnalyze,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "airsight:", err)
		}
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}
	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd(ctx, args[1:], stdout)
}
