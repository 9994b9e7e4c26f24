// jobboard scrapes job listings into a local store and serves them over a
// JSON API.
//
// Usage:
//
//	jobboard serve [--addr=<host:port>]
//	jobboard ingest [--url=<page>]
//	jobboard config init|validate|show
//	jobboard secrets set-db-password|delete-db-password
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
