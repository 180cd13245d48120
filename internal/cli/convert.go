// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenderkit/tender-citations/internal/citation"
	"github.com/tenderkit/tender-citations/internal/records"
)

func (a *app) convertCmd() *cobra.Command {
	var (
		citationsPath string
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "convert [text]",
		Short: "Replace source annotations with numbered evidence markers",
		Long: `Replace "(出處：Title P.n)" annotations with [1], [2], ... and list the evidence
each number points to. Text is read from the arguments or from stdin.

Example:
  tender-citations convert --citations citations.yaml "需求 (出處：RFP.xlsx P.5)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			var cites []citation.Citation
			if citationsPath != "" {
				f, err := records.Load(citationsPath)
				if err != nil {
					return err
				}
				cites = f.Citations
			}

			conv := citation.ConvertMarks(text, cites)
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					Text      string              `json:"text_with_numbers"`
					Evidences []citation.Evidence `json:"evidences"`
				}{conv.Text, conv.Evidences.Sorted()})
			}

			fmt.Fprintln(out, conv.Text)
			for _, ev := range conv.Evidences.Sorted() {
				fmt.Fprintf(out, "[%d] %s P.%d", ev.ID, ev.SourceTitle, ev.Page)
				if ev.Quote != "" {
					fmt.Fprintf(out, " %q", ev.Quote)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&citationsPath, "citations", "", "YAML or JSON file with citation records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
