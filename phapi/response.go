package phapi

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// corsHeaders are attached to every response so the browser frontend can
// call the API from its own origin.
var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

// Response builds an API Gateway proxy response with the given status and
// JSON-encoded body.
func Response(status int, body any) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders))
	for k, v := range corsHeaders {
		headers[k] = v
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		// Marshal only fails on unsupported values; report instead of
		// returning a half-built response.
		encoded = []byte(fmt.Sprintf(`{"error":"failed to encode response: %s"}`, err))
		status = 500
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(encoded),
	}
}

// ErrorResponse builds a JSON error response.
func ErrorResponse(status int, msg string) events.APIGatewayProxyResponse {
	return Response(status, map[string]string{"error": msg})
}
