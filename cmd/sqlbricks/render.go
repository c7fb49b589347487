package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/database/stmtdoc"
	"github.com/dropbox/sqlbricks/internal/cli"
)

// readDocument loads the document at path, or stdin when path is "-".
func readDocument(cmd *cobra.Command, path string) (*stmtdoc.Document, error) {
	var doc *stmtdoc.Document
	var err error
	if path == "-" {
		var data []byte
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, cli.DocumentError(err, "Failed to read stdin")
		}
		doc, err = stmtdoc.Parse(data)
	} else {
		doc, err = stmtdoc.Load(path)
	}
	if err != nil {
		return nil, cli.DocumentError(err, "Invalid statement document")
	}
	return doc, nil
}

func buildDocument(cmd *cobra.Command, path string) (*stmtdoc.Document, sqlbuilder.Statement, error) {
	doc, err := readDocument(cmd, path)
	if err != nil {
		return nil, nil, err
	}
	stmt, err := doc.Build()
	if err != nil {
		return nil, nil, cli.DocumentError(err, "Invalid statement document")
	}
	return doc, stmt, nil
}

type rendered struct {
	SQL    string            `json:"sql"`
	Params sqlbuilder.Params `json:"params"`
}

func (a *app) renderCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print the sql and parameters of a statement document",
		Example: `  # Render a document
  sqlbricks render queries/adults.yaml

  # Render from stdin as a single JSON object
  echo '{kind: select, fields: [1]}' | sqlbricks render --json -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stmt, err := buildDocument(cmd, args[0])
			if err != nil {
				return err
			}
			sql, params := stmt.Render()
			a.logger.Debug("rendered statement", "file", args[0], "params", len(params))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rendered{SQL: sql, Params: params})
			}

			fmt.Fprintln(out, sql)
			if len(params) == 0 {
				return nil
			}
			data, err := json.MarshalIndent(params, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "-- params\n%s\n", data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print sql and params as one JSON object")
	return cmd
}
