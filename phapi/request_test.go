package phapi

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		var body userBody
		req := events.APIGatewayProxyRequest{Body: `{"user_id":"u-1","email":"a@b.c"}`}
		require.NoError(t, decodeBody(req, &body))
		require.Equal(t, "u-1", body.UserID)
	})

	t.Run("empty body decodes to zero value", func(t *testing.T) {
		t.Parallel()
		var body userBody
		require.NoError(t, decodeBody(events.APIGatewayProxyRequest{Body: "  "}, &body))
		require.Empty(t, body.UserID)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		var body userBody
		err := decodeBody(events.APIGatewayProxyRequest{Body: "{not json"}, &body)
		require.ErrorContains(t, err, "invalid JSON body")
	})
}

func TestRequestParams(t *testing.T) {
	t.Parallel()

	req := events.APIGatewayProxyRequest{
		Resource:              "/users/{userId}/languages",
		PathParameters:        map[string]string{"userId": "u-1"},
		QueryStringParameters: map[string]string{"userId": "u-2"},
	}

	require.Equal(t, "u-1", pathParam(req, "userId"))
	require.Equal(t, "", pathParam(req, "missing"))
	require.Equal(t, "u-2", queryParam(req, "userId"))
	require.True(t, resourceHas(req, "/users/{userId}/languages"))
	require.False(t, resourceHas(req, "{languageId}"))

	// Nil maps must not panic on events without parameters.
	require.Equal(t, "", pathParam(events.APIGatewayProxyRequest{}, "userId"))
	require.Equal(t, "", queryParam(events.APIGatewayProxyRequest{}, "userId"))
}
