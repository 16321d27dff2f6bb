// Package harness runs assertion suites against static markup snapshots.
//
// A suite is a named list of cases; each case is an ordered list of checks
// against one freshly parsed document. Cases never share a document, so a
// check in one case cannot observe anything another case did.
//
// # Suite Format
//
// Suites are YAML (or CUE) files with the following structure:
//
//	name: mini_view
//	description: "Default rendering of the dashboard widget"
//	snapshot: ../public/index.html
//	cases:
//	  - name: renders the Mini View elements by default
//	    checks:
//	      - type: class_equals
//	        expect: mini-view
//	      - type: present
//	        id: battery-level
//	  - name: hides the history in the Mini View
//	    checks:
//	      - type: style_equals
//	        id: full-view-only
//	        property: display
//	        expect: none
//
// The snapshot path is resolved relative to the suite file.
//
// # Check Types
//
//   - present: an element with the given id exists
//   - absent: no element with the given id exists
//   - class_equals: the class attribute equals expect exactly (no id: <body>)
//   - has_class: the class list contains expect (no id: <body>)
//   - style_equals: the inline style property equals expect
//   - attr_equals: the named attribute equals expect
//   - text_equals: the whitespace-collapsed text content equals expect
//
// # Case Lifecycle
//
// Every case moves Pending -> Running -> Passed or Failed. A case stops at its
// first failing check. A missing element is a failed check, not an error.
// Cases that never start because the context was cancelled stay Pending and
// count as failures.
//
// # Usage
//
//	src, err := snapshot.Load("public/index.html")
//	if err != nil {
//	    log.Fatal(err) // load failures abort the run
//	}
//	report, err := harness.Run(ctx, src, harness.MiniViewSuite())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !report.Pass() {
//	    for _, c := range report.Cases {
//	        log.Println(c.Name, c.Errors())
//	    }
//	}
package harness
