package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

const (
	// MaxHeadlines caps every provider's result
	MaxHeadlines = 10

	// DefaultNewsAPIURL is the newsapi.org top-headlines endpoint
	DefaultNewsAPIURL = "https://newsapi.org/v2/top-headlines"
)

// NewsProvider looks up current headlines
type NewsProvider interface {
	Headlines(ctx context.Context) ([]v1alpha1.Headline, error)
}

// NewsAPI reads top headlines from a newsapi.org compatible endpoint
type NewsAPI struct {
	endpoint   string
	apiKey     string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNewsAPI creates a provider for the given country code
func NewNewsAPI(endpoint, apiKey, country string, hc *http.Client) *NewsAPI {
	if endpoint == "" {
		endpoint = DefaultNewsAPIURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &NewsAPI{
		endpoint:   endpoint,
		apiKey:     apiKey,
		country:    country,
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Headlines implements NewsProvider
func (n *NewsAPI) Headlines(ctx context.Context) ([]v1alpha1.Headline, error) {
	const op = "NewsAPI.Headlines"

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, werrors.NewFetchError(op, "news request throttled", err)
	}

	u, err := url.Parse(n.endpoint)
	if err != nil {
		return nil, werrors.NewError(werrors.CodeInvalidInput, "invalid news endpoint", op, err)
	}
	q := u.Query()
	if n.country != "" {
		q.Set("country", n.country)
	}
	if n.apiKey != "" {
		q.Set("apiKey", n.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, werrors.NewError(werrors.CodeInvalidInput, "invalid news request", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, werrors.NewFetchError(op, "news request failed", err)
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, werrors.NewFetchError(op, "invalid news response",
			fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}
	if body.Status != "ok" {
		return nil, werrors.NewFetchError(op, "news provider rejected request",
			fmt.Errorf("status %q: %s", body.Status, body.Message))
	}

	count := min(len(body.Articles), MaxHeadlines)
	headlines := make([]v1alpha1.Headline, 0, count)
	for _, a := range body.Articles[:count] {
		h := v1alpha1.Headline{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
		}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			h.PublishedAt = &t
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}

// RSSNews reads headlines from an RSS or Atom feed
type RSSNews struct {
	feedURL string
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

// NewRSSNews creates a provider for feedURL
func NewRSSNews(feedURL string, hc *http.Client) *RSSNews {
	parser := gofeed.NewParser()
	if hc != nil {
		parser.Client = hc
	}
	parser.UserAgent = "wkiosk"
	return &RSSNews{
		feedURL: feedURL,
		parser:  parser,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Headlines implements NewsProvider
func (r *RSSNews) Headlines(ctx context.Context) ([]v1alpha1.Headline, error) {
	const op = "RSSNews.Headlines"

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, werrors.NewFetchError(op, "feed request throttled", err)
	}

	feed, err := r.parser.ParseURLWithContext(r.feedURL, ctx)
	if err != nil {
		return nil, werrors.NewFetchError(op, "failed to fetch feed", err)
	}

	count := min(len(feed.Items), MaxHeadlines)
	headlines := make([]v1alpha1.Headline, 0, count)
	for _, item := range feed.Items[:count] {
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		h := v1alpha1.Headline{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(summary),
			Source:      feed.Title,
			URL:         item.Link,
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			h.PublishedAt = item.UpdatedParsed
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}
