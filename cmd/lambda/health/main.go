package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/phaserai/infra/phapi"
)

// The health check deliberately skips the database connection so it keeps
// answering while the database is unreachable.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	lambda.Start(phapi.New(nil, logger).Health)
}
