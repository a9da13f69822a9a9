// Package microflow turns catalog pipelines into microflows and finds the
// microflows generated earlier.
//
// Generate is a pure function from a pipeline to a Template: parameter
// nodes, a REST call, a branch on the status code and two reports, wired
// in a fixed topology. Builder writes a Template into a host.Model. Match
// goes the other way and recovers pipeline names from persisted documents.
//
//	t, err := microflow.Generate(pipeline, cat.BaseURL, "HB_")
//	res, err := microflow.NewBuilder().Build(ctx, ws, t, "MyFirstModule")
package microflow
