package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/dropbox/sqlbricks/database/dao"
	"github.com/dropbox/sqlbricks/database/sqlexec"
	"github.com/dropbox/sqlbricks/internal/cli"
)

// Opens an executor for dsn.  The returned func releases the connection.
type connectFunc func(
	ctx context.Context,
	driver string,
	dsn string,
	opts ...sqlexec.Option) (dao.Executor, func() error, error)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	connect connectFunc

	// Persistent flags
	cfgFile string
	dsn     string
	driver  string
	verbose int

	// Set during PersistentPreRunE
	cfg     *cli.Config
	cfgPath string
	logger  *slog.Logger
}

func newApp(stdin io.Reader, stdout io.Writer, stderr io.Writer) *app {
	return &app{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		connect: connect,
	}
}

func (a *app) execute(args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cli.Report(a.stderr, err, a.verbose > 1)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlbricks",
		Short: "Render and run PostgreSQL statement documents",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.loadConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default: ./sqlbricks.yaml if present)")
	f.StringVar(&a.dsn, "dsn", "", "database url, overrides "+cli.EnvPrefix+"_DATABASE_URL")
	f.StringVar(&a.driver, "driver", "", "database driver: postgres (lib/pq) or pgx")
	f.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (can be repeated)")

	root.AddCommand(a.renderCmd(), a.execCmd(), a.configCmd())
	return root
}

func (a *app) loadConfig() error {
	cfg, path, err := cli.LoadConfig(a.cfgFile)
	if err != nil {
		return cli.ConfigError(err, "Failed to load configuration")
	}
	if a.dsn != "" {
		cfg.Database.URL = a.dsn
	}
	if a.driver != "" {
		cfg.Database.Driver = a.driver
	}
	switch {
	case a.verbose == 1:
		cfg.Log.Level = "info"
	case a.verbose > 1:
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cli.ConfigError(err, "Invalid configuration")
	}

	level, _ := cfg.Log.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(a.stderr, opts)
	} else {
		handler = slog.NewTextHandler(a.stderr, opts)
	}

	a.cfg = cfg
	a.cfgPath = path
	a.logger = slog.New(handler)
	return nil
}

func connect(
	ctx context.Context,
	driver string,
	dsn string,
	opts ...sqlexec.Option) (dao.Executor, func() error, error) {

	if driver == cli.DriverPgx {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		release := func() error { return conn.Close(context.Background()) }
		return sqlexec.NewPgx(conn, opts...), release, nil
	}

	db, err := sql.Open(cli.DriverPQ, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return sqlexec.NewDB(db, opts...), db.Close, nil
}
