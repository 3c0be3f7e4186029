package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Query ejecuta una query GraphQL (subgraphs de The Graph) y decodifica data en out.
// Los errores del campo "errors" se devuelven como ErrUpstream.
func (c *Client) Query(ctx context.Context, endpoint, query string, vars map[string]any, out any) error {
	var resp graphqlResponse
	if err := c.PostJSON(ctx, endpoint, graphqlRequest{Query: query, Variables: vars}, &resp); err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("%w: %s: graphql: %s", domain.ErrUpstream, c.name, strings.Join(msgs, "; "))
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("%w: %s: graphql: empty data", domain.ErrNoData, c.name)
	}

	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%s: decode graphql data: %w", c.name, err)
	}
	return nil
}
