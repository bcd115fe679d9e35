package phapi

import (
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cockroachdb/errors"
)

// pathParam returns a path parameter from the proxy event, or "".
func pathParam(req events.APIGatewayProxyRequest, name string) string {
	return req.PathParameters[name]
}

// queryParam returns a query string parameter from the proxy event, or "".
func queryParam(req events.APIGatewayProxyRequest, name string) string {
	return req.QueryStringParameters[name]
}

// decodeBody parses the JSON request body into dst. An empty body decodes
// to the zero value.
func decodeBody(req events.APIGatewayProxyRequest, dst any) error {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return errors.Wrap(err, "invalid JSON body")
	}
	return nil
}

// resourceHas reports whether the API Gateway resource path contains the
// given segment, e.g. "/users/{userId}/languages".
func resourceHas(req events.APIGatewayProxyRequest, segment string) bool {
	return strings.Contains(req.Resource, segment)
}
