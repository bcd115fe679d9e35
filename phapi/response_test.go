package phapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	t.Parallel()

	resp := Response(200, map[string]string{"status": "healthy"})
	require.Equal(t, 200, resp.StatusCode)
	require.JSONEq(t, `{"status":"healthy"}`, resp.Body)
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestResponseUnencodableBody(t *testing.T) {
	t.Parallel()

	resp := Response(200, make(chan int))
	require.Equal(t, 500, resp.StatusCode)
	require.Contains(t, resp.Body, "failed to encode response")
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	resp := ErrorResponse(404, "Word not found")
	require.Equal(t, 404, resp.StatusCode)
	require.JSONEq(t, `{"error":"Word not found"}`, resp.Body)
}
