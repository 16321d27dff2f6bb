// Package snapshot loads the static markup that viewcheck asserts against.
//
// A Source is read once at suite start and never mutated afterwards; every
// test case parses its own document from the same Source, so a Source can be
// shared freely between goroutines.
//
// Load failures are fatal to a run and are reported as *LoadError, whose Kind
// distinguishes a missing file from an unreadable one:
//
//	src, err := snapshot.Load("public/index.html")
//	if errors.Is(err, snapshot.ErrNotFound) {
//	    // nothing to check
//	}
package snapshot
