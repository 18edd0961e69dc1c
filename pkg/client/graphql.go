package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/driftline/cloudclient/pkg/errors"
	"github.com/driftline/cloudclient/pkg/result"
)

// GraphQLError carries the raw errors payload reported by the service.
type GraphQLError struct {
	Errors interface{}
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql query failed: %v", e.Errors)
}

// GraphQL executes a query or mutation against the GraphQL server and
// returns the data envelope wrapped as a Result.
//
// Wire format: the outer body is a JSON mapping {query, variables} where
// the variables field is itself a JSON-encoded string, not a nested
// object. The server expects string-encoded variables at the top level.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]interface{}) (result.Result, error) {
	if variables == nil {
		variables = map[string]interface{}{}
	}
	encoded, err := json.Marshal(variables)
	if err != nil {
		return result.Result{}, errors.WrapError(err, errors.ErrGraphQL, "failed to encode variables")
	}

	params := map[string]interface{}{
		"query":     query,
		"variables": string(encoded),
	}

	body, err := c.do(ctx, http.MethodPost, c.graphqlServer, "", params)
	if err != nil {
		return result.Result{}, err
	}

	decoded, err := decodeBody(body)
	if err != nil {
		return result.Result{}, err
	}

	// A present errors key wins over any data key in the same body.
	if errPayload, ok := decoded["errors"]; ok {
		return result.Result{}, fmt.Errorf("%w: %w", errors.ErrGraphQL, &GraphQLError{Errors: errPayload})
	}

	return result.Wrap(decoded["data"]), nil
}
