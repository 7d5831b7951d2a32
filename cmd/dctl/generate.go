package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/generator"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

func newGenerateCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate <project.json>",
		Short: "Generate a DCTL script from a JSON parameter list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := generateFile(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), code)
				return err
			}
			if err := a.export(cmd.Context(), output, code); err != nil {
				return err
			}
			a.publish(events.CodeGenerated, args[0], map[string]interface{}{"output": output})
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the script to this file instead of stdout")
	return cmd
}

func readProject(path string) ([]param.Parameter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	params, err := param.DecodeParameters(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return params, nil
}

func generateFile(path string) (string, error) {
	params, err := readProject(path)
	if err != nil {
		return "", err
	}
	return generator.Build(params)
}
