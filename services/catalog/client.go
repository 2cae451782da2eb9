package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cinelog/models"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "fr-FR"
	defaultRegion   = "FR"
	artLanguage     = "en-US"
)

// ErrNotFound is returned when the provider has no record for an id/kind.
var ErrNotFound = errors.New("catalog: not found")

// Client talks to the TMDB API. List fetches merge the primary-language
// payload with a best-effort English request so poster and backdrop art
// prefer English variants; the English request failing never fails the call.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client

	// Detail lookups are cached to keep agenda resolution cheap.
	cacheMu  sync.RWMutex
	cache    map[string]*cacheEntry
	cacheTTL time.Duration
}

type cacheEntry struct {
	item      models.MediaItem
	fetchedAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithLanguage overrides the primary content language.
func WithLanguage(language string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(language); trimmed != "" {
			c.language = trimmed
		}
	}
}

// WithRegion overrides the watch-provider region.
func WithRegion(region string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(region); trimmed != "" {
			c.region = trimmed
		}
	}
}

// WithCacheTTL overrides how long detail lookups are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// New creates a TMDB client.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("catalog: api key required")
	}

	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		language:   defaultLanguage,
		region:     defaultRegion,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      make(map[string]*cacheEntry),
		cacheTTL:   time.Hour,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type listResponse struct {
	Page         int                `json:"page"`
	Results      []models.MediaItem `json:"results"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
}

// Trending returns this week's trending movies and series.
func (c *Client) Trending(ctx context.Context) ([]models.MediaItem, error) {
	return c.listWithEnglishArt(ctx, "/trending/all/week", nil)
}

// Search resolves a free-text query into catalog records. A blank query
// yields an empty result without contacting the provider.
func (c *Client) Search(ctx context.Context, query string) ([]models.MediaItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("query", query)
	return c.listWithEnglishArt(ctx, "/search/multi", params)
}

// DiscoverMovies returns popular movies.
func (c *Client) DiscoverMovies(ctx context.Context) ([]models.MediaItem, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	items, err := c.listWithEnglishArt(ctx, "/discover/movie", params)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].MediaType = models.MediaTypeMovie
	}
	return items, nil
}

// DiscoverTV returns popular series.
func (c *Client) DiscoverTV(ctx context.Context) ([]models.MediaItem, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	items, err := c.listWithEnglishArt(ctx, "/discover/tv", params)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].MediaType = models.MediaTypeTV
	}
	return items, nil
}

type imageRef struct {
	FilePath string  `json:"file_path"`
	ISO6391  *string `json:"iso_639_1"`
}

type detailResponse struct {
	models.MediaItem
	Genres []struct {
		ID int64 `json:"id"`
	} `json:"genres"`
	Images *struct {
		Posters   []imageRef `json:"posters"`
		Backdrops []imageRef `json:"backdrops"`
	} `json:"images"`
}

// GetDetails resolves the full catalog record for id/kind. Poster and
// backdrop are overridden by the first English (else language-less) image,
// and the nested genres are flattened onto GenreIDs so detail records pass
// through the same filters as list records.
func (c *Client) GetDetails(ctx context.Context, id int64, kind string) (models.MediaItem, error) {
	if err := validateKind(kind); err != nil {
		return models.MediaItem{}, err
	}

	cacheKey := fmt.Sprintf("%s:%d", kind, id)
	c.cacheMu.RLock()
	if entry, ok := c.cache[cacheKey]; ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		c.cacheMu.RUnlock()
		return entry.item, nil
	}
	c.cacheMu.RUnlock()

	params := url.Values{}
	params.Set("append_to_response", "images")
	params.Set("include_image_language", "en,null")

	var detail detailResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), params, &detail); err != nil {
		return models.MediaItem{}, err
	}

	item := detail.MediaItem
	item.MediaType = kind
	for _, g := range detail.Genres {
		item.GenreIDs = append(item.GenreIDs, g.ID)
	}
	if detail.Images != nil {
		if path := pickEnglishImage(detail.Images.Posters); path != "" {
			item.PosterPath = path
		}
		if path := pickEnglishImage(detail.Images.Backdrops); path != "" {
			item.BackdropPath = path
		}
	}

	c.cacheMu.Lock()
	c.cache[cacheKey] = &cacheEntry{item: item, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	return item, nil
}

// GetCredits returns the top billed cast for id/kind.
func (c *Client) GetCredits(ctx context.Context, id int64, kind string) ([]models.CastMember, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	var payload struct {
		Cast []models.CastMember `json:"cast"`
	}
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", kind, id), nil, &payload); err != nil {
		return nil, err
	}
	if len(payload.Cast) > 10 {
		payload.Cast = payload.Cast[:10]
	}
	return payload.Cast, nil
}

// GetVideos returns published YouTube trailers and teasers for id/kind.
func (c *Client) GetVideos(ctx context.Context, id int64, kind string) ([]models.VideoResult, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	var payload struct {
		Results []models.VideoResult `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", kind, id), nil, &payload); err != nil {
		return nil, err
	}
	videos := make([]models.VideoResult, 0, len(payload.Results))
	for _, v := range payload.Results {
		if v.Site == "YouTube" && (v.Type == "Trailer" || v.Type == "Teaser") {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// GetWatchProviders returns the configured region's flatrate streaming
// offers for id/kind.
func (c *Client) GetWatchProviders(ctx context.Context, id int64, kind string) ([]models.WatchProvider, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	var payload struct {
		Results map[string]struct {
			Link     string                 `json:"link"`
			Flatrate []models.WatchProvider `json:"flatrate"`
		} `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/watch/providers", kind, id), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results[c.region].Flatrate, nil
}

// listWithEnglishArt fetches a list endpoint in the primary language and, in
// parallel, in English; English poster/backdrop paths override the primary
// ones when present. Person records are dropped.
func (c *Client) listWithEnglishArt(ctx context.Context, path string, params url.Values) ([]models.MediaItem, error) {
	type artResult struct {
		items []models.MediaItem
		err   error
	}
	artCh := make(chan artResult, 1)
	go func() {
		artParams := cloneValues(params)
		artParams.Set("language", artLanguage)
		var payload listResponse
		err := c.get(ctx, path, artParams, &payload)
		artCh <- artResult{items: payload.Results, err: err}
	}()

	var primary listResponse
	if err := c.get(ctx, path, params, &primary); err != nil {
		return nil, err
	}

	items := keepMedia(primary.Results)

	art := <-artCh
	if art.err != nil {
		log.Printf("[catalog] english art fetch failed for %s: %v", path, art.err)
		return items, nil
	}

	artByID := make(map[int64]models.MediaItem, len(art.items))
	for _, item := range art.items {
		artByID[item.ID] = item
	}
	for i := range items {
		override, ok := artByID[items[i].ID]
		if !ok {
			continue
		}
		if override.PosterPath != "" {
			items[i].PosterPath = override.PosterPath
		}
		if override.BackdropPath != "" {
			items[i].BackdropPath = override.BackdropPath
		}
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse catalog url: %w", err)
	}

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("language", c.language)
	query.Set("include_adult", "false")
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

// keepMedia drops person records from multi-type result lists.
func keepMedia(items []models.MediaItem) []models.MediaItem {
	kept := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if item.MediaType == "" || item.MediaType == models.MediaTypeMovie || item.MediaType == models.MediaTypeTV {
			kept = append(kept, item)
		}
	}
	return kept
}

// pickEnglishImage prefers an English image, then a language-less one.
func pickEnglishImage(images []imageRef) string {
	for _, img := range images {
		if img.ISO6391 != nil && *img.ISO6391 == "en" {
			return img.FilePath
		}
	}
	for _, img := range images {
		if img.ISO6391 == nil {
			return img.FilePath
		}
	}
	return ""
}

func validateKind(kind string) error {
	if kind != models.MediaTypeMovie && kind != models.MediaTypeTV {
		return fmt.Errorf("catalog: unknown media kind %q", kind)
	}
	return nil
}

func cloneValues(params url.Values) url.Values {
	cloned := url.Values{}
	for key, values := range params {
		for _, value := range values {
			cloned.Add(key, value)
		}
	}
	return cloned
}
