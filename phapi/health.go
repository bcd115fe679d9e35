package phapi

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// Health answers uptime checks without touching the database.
func (h *Handler) Health(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return Response(200, map[string]string{
		"status":    "healthy",
		"message":   "API is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}), nil
}
