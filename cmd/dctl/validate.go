package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/dctlfile"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.dctl>...",
		Short: "Check scripts for a transform function, parameters and common mistakes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			checked := 0

			lib := dctlfile.NewLibrary()
			for _, path := range args {
				f, err := a.limits().Load(path)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					failed++
					checked++
					continue
				}
				if lib.Add(f) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s is already loaded, skipping\n", path, f.Name)
					continue
				}
				checked++
			}

			for _, f := range lib.Files() {
				if f.Content == "" && f.ErrorMessage != "" {
					fmt.Fprintf(out, "%s: %s\n", f.Path, f.ErrorMessage)
					failed++
					continue
				}

				v := f.Validation
				status := "ok"
				if !v.IsValid {
					status = "invalid"
					failed++
				}
				fmt.Fprintf(out, "%s: %s (%d parameters)\n", f.Path, status, f.ParametersCount)
				for _, e := range v.SyntaxErrors {
					fmt.Fprintf(out, "  error: %s\n", e)
				}
				for _, w := range v.Warnings {
					fmt.Fprintf(out, "  warning: %s\n", w)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, checked)
			}
			return nil
		},
	}
}
