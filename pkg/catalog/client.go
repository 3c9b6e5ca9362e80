package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jbaptiste/cardfolio-backend/pkg/config"
	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
	"github.com/jbaptiste/cardfolio-backend/pkg/logger"
	redislib "github.com/redis/go-redis/v9"
)

const maxResponseBytes = 4 << 20

var errBaseURLRequired = errors.New("catalog base url is required")

// cacheStore is the subset of the redis client the catalog cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogKey(language, cardID string) string
}

// Client wraps the upstream card catalog API with language fallback,
// redis caching, and domain error mapping.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	language         string
	fallbackLanguage string
	cacheTTL         time.Duration
	cache            cacheStore
	logger           *logger.Logger
}

// NewClient initializes the catalog wrapper. The cache is optional; a nil
// cache disables caching without changing lookup behavior.
func NewClient(cfg config.CatalogConfig, cache cacheStore, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:       &http.Client{Timeout: timeout},
		baseURL:          baseURL,
		apiKey:           strings.TrimSpace(cfg.APIKey),
		language:         normalizeLanguage(cfg.Language, "fr"),
		fallbackLanguage: normalizeLanguage(cfg.FallbackLanguage, "en"),
		cacheTTL:         cfg.CacheTTL,
		cache:            cache,
		logger:           logg,
	}, nil
}

// Language returns the preferred catalog language.
func (c *Client) Language() string {
	if c == nil {
		return ""
	}
	return c.language
}

// FallbackLanguage returns the language used for the one-shot retry.
func (c *Client) FallbackLanguage() string {
	if c == nil {
		return ""
	}
	return c.fallbackLanguage
}

// SearchByName queries the catalog for cards whose name matches the query.
// A not-found response yields an empty slice.
func (c *Client) SearchByName(ctx context.Context, query, language string) ([]CardSummary, error) {
	language = normalizeLanguage(language, c.language)

	endpoint := fmt.Sprintf("%s/%s/cards?name=%s", c.baseURL, language, url.QueryEscape(query))
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []CardSummary{}, nil
	}

	var results []CardSummary
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding catalog search response")
	}
	return results, nil
}

// SearchByNameAnyLanguage searches in the preferred language and retries
// exactly once in the fallback language when the first search finds nothing.
func (c *Client) SearchByNameAnyLanguage(ctx context.Context, query, language string) ([]CardSummary, error) {
	language = normalizeLanguage(language, c.language)

	results, err := c.SearchByName(ctx, query, language)
	if err != nil || len(results) > 0 {
		return results, err
	}
	if c.fallbackLanguage == "" || c.fallbackLanguage == language {
		return results, nil
	}
	return c.SearchByName(ctx, query, c.fallbackLanguage)
}

// GetByID fetches a single card in the given language. Not-found returns
// (nil, nil) so callers can distinguish absence from upstream failure.
func (c *Client) GetByID(ctx context.Context, cardID, language string) (*Card, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card id is required")
	}
	language = normalizeLanguage(language, c.language)

	if cached := c.cacheGet(ctx, language, cardID); cached != nil {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/%s/cards/%s", c.baseURL, language, url.PathEscape(cardID))
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var card Card
	if err := json.Unmarshal(body, &card); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding catalog card response")
	}
	card.Language = language

	c.cacheSet(ctx, language, cardID, &card)
	return &card, nil
}

// GetByIDAnyLanguage fetches a card in the preferred language and retries
// exactly once in the fallback language when the first lookup finds nothing.
func (c *Client) GetByIDAnyLanguage(ctx context.Context, cardID, language string) (*Card, error) {
	language = normalizeLanguage(language, c.language)

	card, err := c.GetByID(ctx, cardID, language)
	if err != nil || card != nil {
		return card, err
	}
	if c.fallbackLanguage == "" || c.fallbackLanguage == language {
		return nil, nil
	}
	return c.GetByID(ctx, cardID, c.fallbackLanguage)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "building catalog request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logError(ctx, endpoint, err)
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling catalog")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logError(ctx, endpoint, err)
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading catalog response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, http.StatusNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("catalog returned status %d", resp.StatusCode)
		c.logError(ctx, endpoint, err)
		return nil, resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog request failed")
	}
	return body, resp.StatusCode, nil
}

func (c *Client) cacheGet(ctx context.Context, language, cardID string) *Card {
	if c.cache == nil || c.cacheTTL <= 0 {
		return nil
	}
	raw, err := c.cache.Get(ctx, c.cache.CatalogKey(language, cardID))
	if err != nil {
		if !errors.Is(err, redislib.Nil) && c.logger != nil {
			c.logger.Warn(ctx, "catalog cache read failed")
		}
		return nil
	}

	var card Card
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return nil
	}
	return &card
}

func (c *Client) cacheSet(ctx context.Context, language, cardID string, card *Card) {
	if c.cache == nil || c.cacheTTL <= 0 || card == nil {
		return
	}
	payload, err := json.Marshal(card)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.cache.CatalogKey(language, cardID), string(payload), c.cacheTTL); err != nil && c.logger != nil {
		c.logger.Warn(ctx, "catalog cache write failed")
	}
}

func (c *Client) logError(ctx context.Context, endpoint string, err error) {
	if c.logger == nil {
		return
	}
	ctx = c.logger.WithFields(ctx, map[string]any{"endpoint": endpoint})
	c.logger.Error(ctx, "catalog request failed", err)
}

func normalizeLanguage(raw, fallback string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if lang == "" {
		return fallback
	}
	return lang
}
