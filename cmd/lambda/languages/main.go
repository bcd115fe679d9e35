package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/phaserai/infra/phapi"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	db, err := phapi.Connect(context.Background())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	lambda.Start(phapi.New(db, logger).Languages)
}
