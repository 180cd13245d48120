// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenderkit/tender-citations/internal/citation"
	"github.com/tenderkit/tender-citations/internal/records"
)

func (a *app) annotateCmd() *cobra.Command {
	var (
		citationsPath string
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "annotate [text]",
		Short: "Append a source annotation to a sentence",
		Long: `Append "(出處：Title P.n, ...)" built from the citations file to the given
sentence. When no text is given and the file lists requirements, every
requirement is annotated with its own citations instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if citationsPath == "" {
				return errors.New("--citations is required")
			}
			f, err := records.Load(citationsPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 && len(f.Requirements) > 0 {
				formatted := citation.FormatRequirements(f.Requirements)
				if asJSON {
					return printJSON(out, formatted)
				}
				for _, r := range formatted {
					if r.ID != "" {
						fmt.Fprintf(out, "%s\t", r.ID)
					}
					fmt.Fprintln(out, r.FormattedText)
				}
				return nil
			}

			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			annotated := citation.AppendSource(text, f.Citations)
			if asJSON {
				return printJSON(out, map[string]string{"text": annotated})
			}
			fmt.Fprintln(out, annotated)
			return nil
		},
	}
	cmd.Flags().StringVar(&citationsPath, "citations", "", "YAML or JSON file with citation or requirement records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
