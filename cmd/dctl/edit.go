package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/roundtrip"
	"github.com/standardbeagle/dctlforge/internal/tui"
	"github.com/standardbeagle/dctlforge/pkg/events"
	"github.com/standardbeagle/dctlforge/pkg/filters"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		sets        []string
		output      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "edit <file.dctl>",
		Short: "Change parameter defaults without touching the rest of the script",
		Long: `Rewrite the default value of DEFINE_UI_PARAMS declarations in place.

Only edited declarations change; every other byte of the script is kept.
Without -o the result is printed to stdout. With -i an interactive editor opens
and "w" writes to -o, or back to the input file when -o is not given.`,
		Example: `  dctl edit look.dctl --set gain=1.5 --set invert=true -o graded.dctl
  dctl edit look.dctl --set mode=MODE_B
  dctl edit look.dctl -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := a.limits().Load(path)
			if err != nil {
				return err
			}
			if f.Content == "" && f.ErrorMessage != "" {
				return fmt.Errorf("%s: %s", path, f.ErrorMessage)
			}

			p, err := a.parser()
			if err != nil {
				return err
			}
			session := roundtrip.NewSession(p)
			session.Load(f.Content)

			for _, set := range sets {
				name, value, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: expected name=value", set)
				}
				name = strings.TrimSpace(name)
				if err := session.Set(name, value); err != nil {
					if errors.Is(err, roundtrip.ErrUnknownParameter) {
						if near := filters.Suggest(name, session.Parameters()); len(near) > 0 {
							return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(near, ", "))
						}
					}
					return err
				}
				a.publish(events.ParameterEdited, path, map[string]interface{}{"name": name, "value": value})
			}

			if interactive {
				target := output
				if target == "" {
					target = path
				}
				return tui.Run(session, target, tui.WithWriter(a.export), tui.WithEventBus(a.eventBus))
			}

			code := session.ModifiedCode()
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), code)
				return err
			}
			return a.export(cmd.Context(), output, code)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a parameter, name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to this file instead of stdout")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open the interactive parameter editor")
	return cmd
}
