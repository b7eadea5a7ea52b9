// Package scripts embeds the builtin stop-word scripts.
package scripts

import "embed"

// FS holds stopwords/*.risor. A script named "builtin:rare" is read from
// stopwords/rare.risor.
//
//go:embed stopwords/*.risor
var FS embed.FS
