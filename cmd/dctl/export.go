package main

import (
	"context"

	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/pkg/events"
)

func (a *app) export(ctx context.Context, path, text string) error {
	if err := dctlfile.Export(ctx, path, text); err != nil {
		return err
	}
	a.publish(events.FileExported, path, map[string]interface{}{"bytes": len(text)})
	return nil
}
