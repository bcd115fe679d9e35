package main

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/phmigrate"
)

func dbMigrateCmd() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply pending schema migrations",
		Flags:  dbFlags(),
		Action: runDBMigrate,
	}
}

type dbMigrateOptions struct {
	Output io.Writer
}

func runDBMigrate(ctx context.Context, cmd *cli.Command) error {
	db, err := openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return doDBMigrate(ctx, db, dbMigrateOptions{Output: os.Stdout})
}

func doDBMigrate(ctx context.Context, db *sql.DB, opts dbMigrateOptions) error {
	runner := phmigrate.NewRunner(db, phmigrate.WithLogf(func(format string, args ...any) {
		writeOutputf(opts.Output, format+"\n", args...)
	}))

	result, err := runner.Up(ctx)
	if err != nil {
		return err
	}

	if len(result.Applied) == 0 {
		writeOutputf(opts.Output, "Database is up to date.\n")
		return nil
	}

	for _, applied := range result.Applied {
		writeOutputf(opts.Output, "Applied %s (%s) in %dms\n",
			applied.Version, applied.Description, applied.ExecutionTimeMS)
	}
	writeOutputf(opts.Output, "Applied %d migration(s) in %dms.\n",
		len(result.Applied), result.TotalTimeMS)

	return nil
}
