package news

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akolanti/newschat/internal/customHttpClient"
)

type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

type serperRequest struct {
	Q string `json:"q"`
}

type serperResponse struct {
	Organic []SearchResult `json:"organic"`
}

type serperClient struct {
	connector *customHttpClient.Connector
}

func NewSerperClient(apiKey string, baseURL string) WebSearcher {
	return &serperClient{
		connector: customHttpClient.NewConnector(customHttpClient.ConnectorConfig{
			Name:    "serper",
			BaseURL: baseURL,
			Headers: map[string]string{"X-API-KEY": apiKey},
		}),
	}
}

// Search returns the organic results in ranking order.
func (c *serperClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var resp serperResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/search", nil, serperRequest{Q: query}, &resp); err != nil {
		return nil, fmt.Errorf("serper: %w", err)
	}
	return resp.Organic, nil
}
