package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/dropbox/sqlbricks/database/dao"
	"github.com/dropbox/sqlbricks/database/sqlbuilder"
	"github.com/dropbox/sqlbricks/database/sqlexec"
	"github.com/dropbox/sqlbricks/database/stmtdoc"
	"github.com/dropbox/sqlbricks/internal/cli"
	"github.com/dropbox/sqlbricks/stats"
)

func (a *app) execCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "exec <file>",
		Short: "Run a statement document against PostgreSQL",
		Long: `Run a statement document against PostgreSQL.  SELECT statements and
statements with RETURNING print their rows; others print the number of
affected rows.`,
		Example: `  # Run with an explicit database
  sqlbricks exec --dsn postgres://localhost/app queries/adults.yaml

  # Run through pgx and print JSON
  SQLBRICKS_DATABASE_URL=postgres://localhost/app sqlbricks exec --driver pgx -o json q.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "yaml" && output != "json" {
				return cli.ConfigError(nil, "Unknown output format %q (expected yaml or json)", output)
			}
			dsn, err := a.cfg.DSN()
			if err != nil {
				return cli.ConfigError(err, "Missing database url")
			}
			doc, stmt, err := buildDocument(cmd, args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if a.cfg.Exec.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.cfg.Exec.Timeout)
				defer cancel()
			}

			memory := stats.NewMemory()
			exec, release, err := a.connect(
				ctx,
				a.cfg.Database.Driver,
				dsn,
				sqlexec.WithLogger(a.logger),
				sqlexec.WithStats(memory),
				sqlexec.WithSlowThreshold(a.cfg.Exec.SlowThreshold))
			if err != nil {
				return cli.DBConnectError(err, "Failed to connect (%s)", a.cfg.Database.Driver)
			}
			defer func() { _ = release() }()

			sql, params := stmt.Render()
			a.logger.Info("executing statement", "file", args[0], "kind", doc.Kind)

			out := cmd.OutOrStdout()
			if returnsRows(doc) {
				err = a.query(ctx, exec, sql, params, output, out)
			} else {
				var affected int64
				affected, err = exec.Exec(ctx, sql, params)
				if err == nil {
					fmt.Fprintf(out, "%d rows affected\n", affected)
				}
			}
			a.logger.Debug("statement stats", "values", memory.Snapshot())
			if err != nil {
				return cli.StatementError(err, "Statement failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "row output format: yaml or json")
	return cmd
}

func returnsRows(doc *stmtdoc.Document) bool {
	return strings.EqualFold(doc.Kind, stmtdoc.KindSelect) || len(doc.Returning) > 0
}

func (a *app) query(
	ctx context.Context,
	exec dao.Executor,
	sql string,
	params sqlbuilder.Params,
	output string,
	out io.Writer) error {

	cursor, err := exec.Query(ctx, sql, params)
	if err != nil {
		return err
	}
	defer func() { _ = cursor.Close() }()

	rows := []map[string]interface{}{}
	for cursor.Next() {
		rows = append(rows, rowMap(cursor.Row()))
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	var data []byte
	if output == "json" {
		data, err = json.MarshalIndent(rows, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(rows)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func rowMap(row dao.Row) map[string]interface{} {
	res := make(map[string]interface{}, row.Len())
	values := row.Values()
	for i, column := range row.Columns() {
		if b, ok := values[i].([]byte); ok {
			res[column] = string(b)
		} else {
			res[column] = values[i]
		}
	}
	return res
}
