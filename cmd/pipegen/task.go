package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/extension"
)

// runTask builds a runtime and runs fn as a one-shot App task. The store
// and telemetry are closed when fn returns.
func (o *rootOptions) runTask(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, &o.cfg, consoleNotifier(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	return rt.app.RunTask(ctx, func(ctx context.Context) error {
		return fn(ctx, rt)
	})
}

// consoleNotifier prints success notices such as skipped parameters.
// Failures are returned to the command instead.
func consoleNotifier(w io.Writer) extension.Notifier {
	return extension.NotifierFunc(func(_ context.Context, n extension.Notice) {
		if n.Code != "" || n.Severity == errors.SeverityError {
			return
		}
		fmt.Fprintf(w, "%s: %s\n", n.Severity, n.Message)
	})
}
