package phapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Credentials is the JSON shape of an RDS-generated credentials secret.
// Port arrives as a number from RDS but older hand-written secrets stored it
// as a string, so both are accepted.
type Credentials struct {
	Host     string      `json:"host"`
	Port     json.Number `json:"port"`
	DBName   string      `json:"dbname"`
	Database string      `json:"database"`
	Username string      `json:"username"`
	Password string      `json:"password"`
}

// ParseCredentials decodes a credentials secret string.
func ParseCredentials(secret string) (Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return Credentials{}, errors.Wrap(err, "failed to parse credentials secret")
	}
	if creds.Host == "" || creds.Username == "" {
		return Credentials{}, errors.New("credentials secret is missing host or username")
	}
	return creds, nil
}

// DSN builds a pgx connection string from the credentials.
//
// Multi-statement migrations need the simple query protocol, so it is set as
// the default exec mode for every connection.
func (c Credentials) DSN() string {
	port := c.Port.String()
	if port == "" {
		port = "5432"
	}

	dbname := c.DBName
	if dbname == "" {
		dbname = c.Database
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=require&default_query_exec_mode=simple_protocol",
		url.QueryEscape(c.Username), url.QueryEscape(c.Password),
		c.Host, port, url.PathEscape(dbname))
}

// Connect opens the application database. It resolves credentials from the
// Secrets Manager secret named by SECRET_ARN; PHASERAI_DB_DSN overrides the
// lookup for local development.
func Connect(ctx context.Context) (*sql.DB, error) {
	if dsn := os.Getenv("PHASERAI_DB_DSN"); dsn != "" {
		return Open(dsn)
	}

	secretARN := os.Getenv("SECRET_ARN")
	if secretARN == "" {
		return nil, errors.New("SECRET_ARN environment variable not set")
	}

	return ConnectSecret(ctx, secretARN)
}

// ConnectSecret opens the database with credentials read from the given
// Secrets Manager secret.
func ConnectSecret(ctx context.Context, secretARN string) (*sql.DB, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretARN,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch database secret")
	}
	if out.SecretString == nil {
		return nil, errors.New("database secret has no string value")
	}

	creds, err := ParseCredentials(*out.SecretString)
	if err != nil {
		return nil, err
	}

	return Open(creds.DSN())
}

// Open opens a database connection pool for the given pgx DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// One Lambda invocation at a time; a small pool is plenty.
	db.SetMaxOpenConns(2)
	return db, nil
}
