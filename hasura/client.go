package hasura

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrConstraintViolation is returned when a mutation trips a unique or
// foreign key constraint.
var ErrConstraintViolation = errors.New("constraint violation")

// GraphQLError carries the errors[] array of a failed response.
type GraphQLError struct {
	Messages []string
	Code     string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// Client executes GraphQL operations against a Hasura endpoint using the
// admin secret.
type Client struct {
	endpoint    string
	adminSecret string
	httpClient  *http.Client
}

// NewClient creates a new Client.
func NewClient(endpoint, adminSecret string) *Client {
	return &Client{
		endpoint:    endpoint,
		adminSecret: adminSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
		Path string `json:"path"`
	} `json:"extensions"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Do runs query with vars and decodes the data object into out. out may be nil
// for mutations whose result is not needed.
func (c *Client) Do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", c.adminSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graphql response: %w", err)
	}
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("graphql endpoint returned %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		return classify(parsed.Errors)
	}

	if out == nil || len(parsed.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(parsed.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

func classify(errs []gqlError) error {
	gqlErr := &GraphQLError{Code: errs[0].Extensions.Code}
	for _, e := range errs {
		gqlErr.Messages = append(gqlErr.Messages, e.Message)
		if e.Extensions.Code == "constraint-violation" {
			return fmt.Errorf("%w: %s", ErrConstraintViolation, e.Message)
		}
	}
	return gqlErr
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
