package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/metrics"
	"github.com/akolanti/newschat/internal/rag/llm"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/tmc/langchaingo/prompts"
)

const (
	NoWebResults = "No relevant web results found."
	NoAnswer     = "No answer generated."
	NoSummary    = "No summary generated."

	// error bodies of the summarize and followup routes
	SummarizeFailed = "Error summarizing news."
	FollowupFailed  = "Error generating answer."
)

var summaryPrompt = prompts.NewPromptTemplate(
	`You are a helpful assistant.

Summarize the following news about "{{.topic}}" into clear, short bullet points.

News:
{{.news}}

Summary:
-`,
	[]string{"topic", "news"},
)

var followupPrompt = prompts.NewPromptTemplate(
	`Answer the user's question using only the search results below. If the answer is not there, say "Not found."

Question:
{{.question}}

Search Results:
{{.results}}

News Summary (optional context):
{{.summary}}

Answer:`,
	[]string{"question", "results", "summary"},
)

type Service interface {
	Summarize(ctx context.Context, topic string) (string, error)
	FollowUp(ctx context.Context, summary string, question string) (string, error)
}

type service struct {
	source   NewsSource
	searcher WebSearcher
	model    llm.Provider
	logger   *logger_i.Logger
}

func NewService(source NewsSource, searcher WebSearcher, model llm.Provider) Service {
	return &service{
		source:   source,
		searcher: searcher,
		model:    model,
		logger:   logger_i.NewLogger("news_service"),
	}
}

func (s *service) Summarize(ctx context.Context, topic string) (string, error) {
	log := s.logger.WithTrace(ctx).With("topic", topic)

	start := time.Now()
	articles, err := s.source.LatestArticles(ctx, topic)
	metrics.CaptureExecutionMetrics("newsapi", time.Since(start))
	if err != nil {
		log.Error("Fetching news failed", "error", err)
		return "", err
	}
	log.Debug("Fetched articles", "count", len(articles))

	prompt, err := summaryPrompt.Format(map[string]any{
		"topic": topic,
		"news":  formatArticles(topic, articles),
	})
	if err != nil {
		return "", err
	}

	summary, err := s.complete(ctx, llm.Prompt{
		User:        prompt,
		MaxTokens:   500,
		Temperature: llm.Float(0.4),
		TopP:        llm.Float(0.9),
	})
	if errors.Is(err, llm.ErrEmptyOutput) {
		return NoSummary, nil
	}
	if err != nil {
		log.Error("Summarizing news failed", "error", err)
		return "", err
	}
	return summary, nil
}

func (s *service) FollowUp(ctx context.Context, summary string, question string) (string, error) {
	log := s.logger.WithTrace(ctx)

	start := time.Now()
	results, err := s.searcher.Search(ctx, question)
	metrics.CaptureExecutionMetrics("web_search", time.Since(start))
	if err != nil {
		log.Error("Web search failed", "error", err)
		return "", err
	}
	if len(results) == 0 {
		return NoWebResults, nil
	}

	prompt, err := followupPrompt.Format(map[string]any{
		"question": question,
		"results":  formatResults(results),
		"summary":  summary,
	})
	if err != nil {
		return "", err
	}

	answer, err := s.complete(ctx, llm.Prompt{
		User:        prompt,
		MaxTokens:   400,
		Temperature: llm.Float(0.5),
		TopK:        40,
		TopP:        llm.Float(0.9),
		Stop:        []string{"</s>"},
	})
	if errors.Is(err, llm.ErrEmptyOutput) {
		return NoAnswer, nil
	}
	if err != nil {
		log.Error("Answering follow up failed", "error", err)
		return "", err
	}
	return answer, nil
}

func (s *service) complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("news_llm", time.Since(start)) }()
	return s.model.Complete(ctx, prompt)
}

func formatArticles(topic string, articles []Article) string {
	if len(articles) == 0 {
		return fmt.Sprintf("No news articles found for %q.", topic)
	}
	lines := make([]string, 0, len(articles))
	for i, a := range articles {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, a.Title, a.Description))
	}
	return strings.Join(lines, "\n")
}

func formatResults(results []SearchResult) string {
	if len(results) > config.MaxWebSearchResults {
		results = results[:config.MaxWebSearchResults]
	}
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("%d. %s - %s (%s)", i+1, r.Title, r.Snippet, r.Link))
	}
	return strings.Join(parts, "\n\n")
}
