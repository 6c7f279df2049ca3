// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelline/root.go
// Summary: Root command, configuration and logging setup.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/framegrace/texelline/config"
)

// app is the state shared by all subcommands once the root has run.
type app struct {
	cfgFile  string
	v        *viper.Viper
	settings config.Settings
	logger   *log.Logger
	logFile  io.Closer
}

func newRootCmd() *cobra.Command {
	return (&app{v: viper.New()}).command()
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texelline",
		Short: "Demo shell for the texelline line editor",
		Long: `texelline runs a tiny command shell on top of an allocation-free line
editor. Attach it to this terminal, a new pseudo-terminal, /dev/tty, or
browser terminals over websockets.`,
		SilenceUsage:       true,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return a.setup() },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return a.teardown() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLocal(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is <user config dir>/texelline/texelline.json)")
	flags.Int("baud", 0, "simulated line speed in baud, 0 for none")
	flags.String("output-mode", "insert", "mid-line redraw: insert or reprint")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("delimiter", "", `line delimiter, Go escapes allowed (default "\r")`)
	for key, flag := range map[string]string{
		config.KeyBaud:       "baud",
		config.KeyOutputMode: "output-mode",
		config.KeyLogLevel:   "log-level",
		config.KeyLogFile:    "log-file",
		config.KeyDelimiter:  "delimiter",
	} {
		a.bindFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(
		newLocalCmd(a),
		newPtyCmd(a),
		newTtyCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
	)
	return cmd
}

// bindFlag ties a config key to a flag. Binding a flag that was never
// defined is a programming error.
func (a *app) bindFlag(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("texelline: binding %q: %v", key, err))
	}
}

func (a *app) setup() error {
	a.logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "texelline",
	})

	s, err := config.Load(a.v, a.cfgFile, a.logger.WithPrefix("config"))
	if err != nil {
		return err
	}
	a.settings = s

	level, _ := s.Level()
	a.logger.SetLevel(level)
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logger.SetOutput(f)
		a.logFile = f
	}
	log.SetDefault(a.logger)
	return nil
}

// quietOnTerminal keeps log lines off a terminal that is being edited on.
func (a *app) quietOnTerminal() {
	if a.settings.LogFile == "" && term.IsTerminal(int(os.Stderr.Fd())) {
		a.logger.SetLevel(log.ErrorLevel)
	}
}

func (a *app) teardown() error {
	if a.logFile == nil {
		return nil
	}
	return a.logFile.Close()
}
