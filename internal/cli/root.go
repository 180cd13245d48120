// SPDX-License-Identifier: Apache-2.0

// Package cli wires the tender-citations command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tenderkit/tender-citations/internal/config"
	"github.com/tenderkit/tender-citations/internal/logging"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// app carries what PersistentPreRunE builds for the subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log logging.Logger
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "tender-citations",
		Short: "Source citations for generated tender documents",
		Long: `tender-citations turns "(出處：Title P.n)" annotations in generated text into
numbered evidence markers, locates the quoted evidence in source documents
and formats annotations back onto sentences.

Run "tender-citations serve" to expose the same operations as MCP tools over stdio.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file path")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")

	cmd.AddCommand(
		a.serveCmd(),
		a.convertCmd(),
		a.locateCmd(),
		a.annotateCmd(),
		a.extractCmd(),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = a.logLevel
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// inputText returns args joined by spaces, or stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
