// Package phapi implements the PhaserAI backend Lambda handlers behind API
// Gateway: users, languages, words (with translations) and health.
//
// Handlers speak the API Gateway proxy format and run raw SQL against the
// application's Postgres database. Credentials come from Secrets Manager via
// the SECRET_ARN environment variable; the connection is opened once per
// Lambda runtime and reused across invocations.
package phapi
