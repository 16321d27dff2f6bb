// Package public holds the agent's dashboard markup.
//
// index.html is the pre-rendered widget as the agent serves it on startup:
// the compact Mini View with the history section hidden.
package public

import _ "embed"

//go:embed index.html
var indexHTML string

// IndexPath is the repository-relative location of the default snapshot.
const IndexPath = "public/index.html"

// Index returns the embedded default snapshot.
func Index() string {
	return indexHTML
}
