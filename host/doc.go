// Package host models the object store microflows are written into.
//
// Model is the narrow surface the generator depends on. Workspace is an
// in-process implementation that keeps live handles in memory and
// snapshots microflows into Documents on Persist. Documents are stored by a
// Backend: MemoryBackend here, or the sqlite and redis subpackages.
//
//	ws := host.NewWorkspace(host.NewMemoryBackend(host.Module{Name: "MyFirstModule"}))
//	mf, _ := ws.CreateDocument(ctx, host.KindMicroflow)
//	_ = ws.SetField(ctx, mf, host.FieldName, "HB_Orders_Microflow")
package host
