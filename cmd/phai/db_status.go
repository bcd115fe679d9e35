package main

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/phmigrate"
)

func dbStatusCmd() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show applied and pending migrations",
		Flags:  dbFlags(),
		Action: runDBStatus,
	}
}

type dbStatusOptions struct {
	Output io.Writer
}

func runDBStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := openDatabase(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return doDBStatus(ctx, db, dbStatusOptions{Output: os.Stdout})
}

func doDBStatus(ctx context.Context, db *sql.DB, opts dbStatusOptions) error {
	status, err := phmigrate.NewRunner(db).Report(ctx)
	if err != nil {
		return err
	}

	writeOutputf(opts.Output, "Migrations: %d total, %d applied, %d pending\n",
		status.Total, len(status.Applied), len(status.Pending))

	for _, version := range status.Applied {
		writeOutputf(opts.Output, "  applied  %s\n", version)
	}
	for _, version := range status.Pending {
		writeOutputf(opts.Output, "  pending  %s\n", version)
	}
	for _, version := range status.Mismatched {
		writeOutputf(opts.Output, "  CHANGED  %s (checksum differs from applied version)\n", version)
	}

	if len(status.Mismatched) > 0 {
		return errors.New("applied migrations were modified after the fact")
	}

	return nil
}
