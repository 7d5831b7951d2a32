package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/param"
)

func newNewCmd(a *app) *cobra.Command {
	var output string

	kinds := make([]string, len(param.Kinds))
	for i, k := range param.Kinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:   "new [kind]...",
		Short: "Start a project file with default controls",
		Long: fmt.Sprintf(`Write a JSON project with one default control per kind, ready for "dctl generate".
Without arguments every kind is included.

Kinds: %s`, strings.Join(kinds, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := param.Kinds
			if len(args) > 0 {
				selected = make([]param.Kind, len(args))
				for i, arg := range args {
					selected[i] = param.Kind(arg)
				}
			}

			params := make([]param.Parameter, 0, len(selected))
			for _, k := range selected {
				p, err := param.NewDefault(k)
				if err != nil {
					return err
				}
				params = append(params, p)
			}

			data, err := param.EncodeParameters(params)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')

			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return a.export(cmd.Context(), output, buf.String())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the project to this file instead of stdout")
	return cmd
}
