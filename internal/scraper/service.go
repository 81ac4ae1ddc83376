package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"
)

// Service fetches pages for the fetch_page demo tool
type Service struct {
	config Config
	logger zerolog.Logger
}

// Config represents scraper configuration
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
}

// Result represents a fetched page
type Result struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	CleanText   string `json:"clean_text"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
}

// NewService creates a new scraper service
func NewService(config Config, logger zerolog.Logger) *Service {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Service{
		config: config,
		logger: logger.With().Str("component", "scraper").Logger(),
	}
}

// ScrapeURL fetches a single page and extracts its title and text. When
// selector is empty the text of <main>, <article> or <body> is used.
func (s *Service) ScrapeURL(ctx context.Context, url string, selector string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Info().Str("url", url).Str("selector", selector).Msg("Starting scrape")

	c := colly.NewCollector()
	if s.config.UserAgent != "" {
		c.UserAgent = s.config.UserAgent
	}
	if s.config.MaxBodySize > 0 {
		c.MaxBodySize = s.config.MaxBodySize
	}
	c.SetRequestTimeout(s.config.Timeout)

	result := &Result{URL: url}

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		result.Title = strings.TrimSpace(e.ChildText("title"))

		if selector != "" {
			result.CleanText = cleanText(e.ChildText(selector))
			return
		}
		for _, sel := range []string{"main", "article", "body"} {
			if text := cleanText(e.ChildText(sel)); text != "" {
				result.CleanText = text
				return
			}
		}
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to scrape URL %s: %w", url, err)
	}
	c.Wait()

	s.logger.Info().
		Str("url", url).
		Int("status", result.StatusCode).
		Int("content_length", len(result.CleanText)).
		Msg("Scraping completed")

	return result, nil
}

// cleanText drops blank lines and surrounding whitespace
func cleanText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
