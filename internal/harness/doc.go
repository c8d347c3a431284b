// Package harness runs scripted conversations against the real router and
// engine.
//
// A scenario is a YAML file: a starting catalog, a list of steps (commands,
// button presses, free text), per-step expectations and assertions on the
// final catalog. Each run starts from a fresh in-memory catalog with a fixed
// clock and fixed event ids, so the transcript it produces is deterministic
// and can be compared against a golden file:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden.
package harness
