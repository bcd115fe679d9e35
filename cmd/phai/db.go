package main

import (
	"context"
	"database/sql"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/phapi"
)

func dbCmd() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database schema management",
		Commands: []*cli.Command{
			dbMigrateCmd(),
			dbStatusCmd(),
		},
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dsn",
			Usage: "Postgres connection string (overrides secret lookup)",
		},
		&cli.StringFlag{
			Name:  "secret-arn",
			Usage: "Secrets Manager secret holding the database credentials",
		},
	}
}

// openDatabase resolves the connection the same way the Lambda functions
// do, with the flags taking precedence over the environment.
func openDatabase(ctx context.Context, cmd *cli.Command) (*sql.DB, error) {
	if dsn := cmd.String("dsn"); dsn != "" {
		return phapi.Open(dsn)
	}
	if arn := cmd.String("secret-arn"); arn != "" {
		return phapi.ConnectSecret(ctx, arn)
	}
	return phapi.Connect(ctx)
}
