// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenderkit/tender-citations/internal/citation"
)

func (a *app) extractCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Split a trailing source annotation from a sentence",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			body, sources, ok := citation.ExtractSource(text)
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					Body          string `json:"body"`
					Sources       string `json:"sources"`
					HasAnnotation bool   `json:"has_annotation"`
				}{body, sources, ok})
			}
			fmt.Fprintln(out, body)
			if ok {
				fmt.Fprintln(out, sources)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
