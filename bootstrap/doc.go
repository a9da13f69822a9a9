// Package bootstrap runs the pipegen process lifecycle: components start
// in registration order, hooks run around them and shutdown stops
// everything in reverse within a graceful timeout.
//
//	app := bootstrap.New("pipegen", version.Get().String())
//	app.Register(bootstrap.Closer("store", store.Close), httpServer)
//	err := app.Run(ctx)
//
// Long-running commands use Run; one-shot CLI commands use RunTask.
package bootstrap
