// Command sqlbricks renders statement documents to PostgreSQL and runs them.
//
// Usage:
//
//	sqlbricks render <file>         print the sql and its parameters
//	sqlbricks exec <file>           run the statement and print the result
//	sqlbricks config show           print the effective configuration
//
// Configuration is read from sqlbricks.yaml (or --config) and SQLBRICKS_*
// environment variables; flags take precedence over both.
package main

import (
	"os"
)

func main() {
	os.Exit(newApp(os.Stdin, os.Stdout, os.Stderr).execute(os.Args[1:]))
}
