// Package sqlite stores host documents and modules in sqlite through gorm.
//
// Documents are kept as JSON bodies next to the columns used for lookup:
//
//	store, err := sqlite.Open(ctx, sqlite.Config{DSN: "pipegen.db"}, log)
//	ws := host.NewWorkspace(store)
package sqlite
