// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelline/commands.go
// Summary: Subcommands, one per way of attaching a terminal.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelline/config"
	"github.com/framegrace/texelline/internal/transport"
	"github.com/framegrace/texelline/lineedit"
)

func newLocalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "local",
		Short: "Edit on this terminal (^D or quit to exit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLocal(cmd.Context())
		},
	}
}

func (a *app) runLocal(ctx context.Context) error {
	a.quietOnTerminal()
	l, err := transport.OpenLocal(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer l.Close()

	store := a.openStore()
	if store != nil {
		defer store.Close()
	}

	a.banner(l)
	err = a.runTerminal(ctx, l, l.Width, true, store)
	fmt.Fprint(l, exitNewline(l.Raw()))
	return ignoreCancel(err)
}

// exitNewline ends the last line. A raw terminal does no CR translation.
func exitNewline(raw bool) string {
	if raw {
		return "\r\n"
	}
	return "\n"
}

func newPtyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pty",
		Short: "Serve a new pseudo-terminal and print its path",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := transport.OpenPTY()
			if err != nil {
				return err
			}
			defer p.Close()

			store := a.openStore()
			if store != nil {
				defer store.Close()
			}

			fmt.Printf("Connect a terminal to %s (e.g. screen %s)\n", p.Name(), p.Name())
			a.banner(p)
			return ignoreCancel(a.runTerminal(cmd.Context(), p, p.Width, false, store))
		},
	}
}

func newTtyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tty",
		Short: "Edit on the controlling terminal, /dev/tty",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.quietOnTerminal()
			d, err := transport.OpenDevTty()
			if err != nil {
				return err
			}
			defer d.Close()

			store := a.openStore()
			if store != nil {
				defer store.Close()
			}

			a.banner(d)
			err = a.runTerminal(cmd.Context(), d, d.Width, true, store)
			fmt.Fprint(d, "\r\n")
			return ignoreCancel(err)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve shell sessions to websocket clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.openStore()
			if store != nil {
				defer store.Close()
			}

			logger := a.logger.WithPrefix("transport")
			srv := transport.NewServer(func(ctx context.Context, c *transport.WSConn) error {
				a.banner(c)
				return a.runTerminal(ctx, c, nil, false, store)
			}, logger)

			err := transport.ListenAndServe(cmd.Context(), a.settings.Listen, srv, logger)
			srv.Wait()
			return err
		},
	}
	cmd.Flags().String("listen", "", "address to listen on (default 127.0.0.1:7681)")
	a.bindFlag(config.KeyListen, cmd.Flags().Lookup("listen"))
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the persisted command history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.settings.HistoryDB == "" {
				return errors.New("history persistence is disabled (history_db is empty)")
			}
			store := a.openStore()
			if store == nil {
				return fmt.Errorf("cannot open %s", a.settings.HistoryDB)
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%5d  %s  %s\n", e.ID, e.Time.Format(time.DateTime), lineedit.AppendRendered(nil, e.Line))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "number", "n", 50, "number of entries to print")
	return cmd
}

// banner introduces the session, like the header of a serial console demo.
func (a *app) banner(w io.Writer) {
	if a.settings.Baud > 0 {
		fmt.Fprintf(w, "\r\ntexelline demo shell\r\n\r\nSimulating %d baud\r\n\r\n", a.settings.Baud)
		return
	}
	fmt.Fprint(w, "\r\ntexelline demo shell\r\n\r\n")
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
