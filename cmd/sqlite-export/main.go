// Command sqlite-export writes every table of a SQLite database file to a
// single timestamped JSON document.
//
// Usage:
//
//	sqlite-export <path-to-db>
//	sqlite-export summary <export.json>
package main

import "github.com/mesh-intelligence/sqlite-export/internal/cli"

func main() {
	cli.Execute()
}
