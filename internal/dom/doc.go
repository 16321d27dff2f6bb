// Package dom parses static HTML snapshots into queryable documents.
//
// The harness only ever talks to a document through DocumentQuery and
// Element, so any parser that can answer "find by id", "read the class
// attribute" and "read an inline style property" can stand in for Parse.
//
// Parse uses the HTML5 tree-construction algorithm from golang.org/x/net/html.
// It accepts any input: malformed markup is repaired the same way a browser
// would repair it, never rejected.
//
// Styles are read from the inline style attribute only. There is no cascade,
// no stylesheet evaluation and no layout; a property that is not declared
// inline reads as the empty string.
package dom
