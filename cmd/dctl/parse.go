package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/standardbeagle/dctlforge/pkg/events"
	"github.com/standardbeagle/dctlforge/pkg/filters"
)

type parseReport struct {
	File        string              `json:"file"`
	Result      param.ParsingResult `json:"result"`
	Summary     string              `json:"summary"`
	Suggestions []string            `json:"suggestions"`
}

func newParseCmd(a *app) *cobra.Command {
	var (
		asJSON      bool
		filterExprs []string
	)

	cmd := &cobra.Command{
		Use:   "parse <file.dctl>...",
		Short: "List the UI parameters declared in DCTL scripts",
		Long: `List the DEFINE_UI_PARAMS declarations of one or more scripts, grouped by category.

Files sharing a file name are loaded once; later duplicates are skipped.

Filters (--filter, repeatable, all must match):
  gain              name or label contains "gain"
  =gain             name or label is exactly "gain"
  re:^lift_         name or label matches the regex
  category:color    category is "color"
  ~grn              name or label contains the letters in order`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fs []*filters.Filter
			for _, expr := range filterExprs {
				f, err := filters.Parse(expr)
				if err != nil {
					return err
				}
				fs = append(fs, f)
			}

			p, err := a.parser()
			if err != nil {
				return err
			}

			lib := dctlfile.NewLibrary()
			for _, path := range args {
				f, err := a.limits().Load(path)
				if err != nil {
					return err
				}
				if f.Content == "" && f.ErrorMessage != "" {
					return fmt.Errorf("%s: %s", path, f.ErrorMessage)
				}
				if lib.Add(f) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s is already loaded, skipping\n", path, f.Name)
				}
			}

			var reports []parseReport
			for _, f := range lib.Files() {
				result := p.Parse(f.Content)
				result.Parameters = filters.Apply(result.Parameters, fs...)
				a.publish(events.FileParsed, f.Path, map[string]interface{}{"parameters": len(result.Parameters)})

				reports = append(reports, parseReport{
					File:        f.Path,
					Result:      result,
					Summary:     parser.Summary(result),
					Suggestions: parser.Suggest(result),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if len(reports) == 1 {
					return enc.Encode(reports[0])
				}
				return enc.Encode(reports)
			}
			for i, r := range reports {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printReport(out, r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full parsing result as JSON")
	cmd.Flags().StringArrayVar(&filterExprs, "filter", nil, "Only show matching parameters")
	return cmd
}

func printReport(out io.Writer, r parseReport) {
	fmt.Fprintf(out, "%s: %s\n", r.File, r.Summary)

	for _, g := range param.GroupParameters(r.Result.Parameters, nil) {
		fmt.Fprintf(out, "\n%s\n", g.DisplayName)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, p := range g.Parameters {
			fmt.Fprintf(tw, "  %d\t%s\t%q\t%s\t%s\t%s\n", p.LineNumber, p.Name, p.DisplayName, p.Type, p.DefaultValue.Literal(), describeRange(p))
		}
		tw.Flush()
	}

	for _, e := range r.Result.ParseErrors {
		fmt.Fprintf(out, "\n%s line %d: %s\n", e.Severity, e.LineNumber, e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(out, "  hint: %s\n", e.Suggestion)
		}
	}
	for _, w := range r.Result.Warnings {
		fmt.Fprintf(out, "\nwarning: %s\n", w)
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(out, "suggestion: %s\n", s)
	}
}

func describeRange(p *param.ParsedParameter) string {
	switch {
	case len(p.Options) > 0:
		return "{" + strings.Join(p.Options, ", ") + "}"
	case p.Min != nil && p.Max != nil:
		s := "[" + p.Min.Literal() + ", " + p.Max.Literal() + "]"
		if p.Step != nil {
			s += " step " + p.Step.Literal()
		}
		return s
	}
	return ""
}
