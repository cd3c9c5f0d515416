package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/customHttpClient"
)

type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type NewsSource interface {
	LatestArticles(ctx context.Context, topic string) ([]Article, error)
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []Article `json:"articles"`
}

type newsAPIClient struct {
	connector *customHttpClient.Connector
}

func NewNewsAPIClient(apiKey string, baseURL string) NewsSource {
	return &newsAPIClient{
		connector: customHttpClient.NewConnector(customHttpClient.ConnectorConfig{
			Name:    "newsapi",
			BaseURL: baseURL,
			Headers: map[string]string{"X-Api-Key": apiKey},
		}),
	}
}

// LatestArticles returns the most recent English articles matching topic.
func (c *newsAPIClient) LatestArticles(ctx context.Context, topic string) ([]Article, error) {
	query := url.Values{}
	query.Set("q", topic)
	query.Set("language", "en")
	query.Set("pageSize", strconv.Itoa(config.NewsAPIPageSize))
	query.Set("sortBy", "publishedAt")

	var resp everythingResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, "/v2/everything", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi: %s: %s", resp.Code, resp.Message)
	}
	if len(resp.Articles) > config.NewsAPIPageSize {
		resp.Articles = resp.Articles[:config.NewsAPIPageSize]
	}
	return resp.Articles, nil
}
