// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tenderkit/tender-citations/internal/evidence"
	"github.com/tenderkit/tender-citations/internal/evidence/loaders"
	"github.com/tenderkit/tender-citations/internal/logging"
	"github.com/tenderkit/tender-citations/internal/textmatch"
)

type locateResult struct {
	Found bool            `json:"found"`
	Page  int             `json:"page,omitempty"`
	Match textmatch.Match `json:"match"`
	Text  string          `json:"text,omitempty"`
}

func (a *app) locateCmd() *cobra.Command {
	var (
		file   string
		quote  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Find a quote in a document",
		Long: `Find a quote in a PDF, XLSX, DOCX, Markdown or text document and print the
page and character offsets of the match. Pages are searched in order.

Example:
  tender-citations locate --file rfp.pdf --quote "系統應支援...匯出功能"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" || quote == "" {
				return errors.New("--file and --quote are required")
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}
			pipeline := evidence.NewPipeline(loaders.Default()...)
			result, err := pipeline.LoadWithMeta(cmd.Context(), evidence.EvidenceSource{
				Content: content,
				ID:      file,
				Title:   filepath.Base(file),
			})
			if err != nil {
				return err
			}
			a.log.Debug("loaded document",
				logging.String("loader", result.LoaderUsed),
				logging.Int("pages", result.PageCount),
			)

			res := locateResult{}
			for _, page := range result.Document.Pages {
				m, ok := textmatch.Locate(page.Text, quote, textmatch.WithExactFallback(a.cfg.Locator.ExactFallback))
				if ok {
					res = locateResult{Found: true, Page: page.Number, Match: m, Text: m.Slice(page.Text)}
					break
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, res)
			}
			if !res.Found {
				fmt.Fprintln(out, "not found")
				return nil
			}
			fmt.Fprintf(out, "P.%d [%d,%d) %s\n", res.Page, res.Match.Start, res.Match.End, res.Text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document to search")
	cmd.Flags().StringVarP(&quote, "quote", "q", "", "quote to locate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
