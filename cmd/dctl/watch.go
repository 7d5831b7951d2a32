package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/standardbeagle/dctlforge/internal/watch"
	"github.com/standardbeagle/dctlforge/internal/worker"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

func newWatchCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch <project.json | file.dctl>",
		Short: "Regenerate or re-check a file every time it is saved",
		Long: `Watch a JSON parameter project and regenerate its script on every save,
or watch a .dctl script and print its parameter diagnostics on every save.

For a project the script is written next to it with a .dctl extension unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			var onChange func(string)
			if strings.EqualFold(filepath.Ext(path), ".json") {
				if output == "" {
					output = strings.TrimSuffix(path, filepath.Ext(path)) + a.cfg.GetExtension()
				}
				w := worker.New(nil, a.cfg.GetQueueSize())
				defer w.Close()
				onChange = func(string) { a.regenerate(w, path, output) }
			} else {
				p, err := a.parser()
				if err != nil {
					return err
				}
				onChange = func(string) { a.diagnose(out, p, path) }
			}

			watcher, err := watch.New(path, time.Duration(a.cfg.GetDebounceMS())*time.Millisecond, onChange, a.eventBus)
			if err != nil {
				return err
			}
			onChange(path)
			watcher.Start()
			defer watcher.Stop()

			log.Printf("watching %s", watcher.Path())
			sigChan := make(chan os.Signal, 1)
			setupSignalHandling(sigChan)
			<-sigChan
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Script to write when watching a project")
	return cmd
}

func (a *app) regenerate(w *worker.Worker, project, output string) {
	params, err := readProject(project)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	reply := <-w.Submit(params)
	if reply.Err != nil {
		log.Printf("%s: %v", project, reply.Err)
		return
	}
	if err := a.export(context.Background(), output, reply.Code); err != nil {
		log.Printf("%v", err)
		return
	}
	a.publish(events.CodeGenerated, project, map[string]interface{}{"output": output, "bytes": len(reply.Code)})
}

func (a *app) diagnose(out io.Writer, p *parser.Parser, path string) {
	f, err := a.limits().Load(path)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	if f.Content == "" && f.ErrorMessage != "" {
		fmt.Fprintf(out, "%s: %s\n", path, f.ErrorMessage)
		return
	}
	result := p.Parse(f.Content)
	a.publish(events.FileParsed, path, map[string]interface{}{"parameters": len(result.Parameters)})
	printReport(out, parseReport{
		File:        path,
		Result:      result,
		Summary:     parser.Summary(result),
		Suggestions: parser.Suggest(result),
	})
	for _, w := range f.Validation.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}
