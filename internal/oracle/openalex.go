// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/pdiddy/scipathbench/internal/httputil"
	"github.com/pdiddy/scipathbench/pkg/types"
)

// API base URLs. Declared as vars so tests can substitute httptest servers.
var (
	openAlexBase      = "https://api.openalex.org"
	openCitationsBase = "https://api.opencitations.net/index/v2"
)

// deletedWorkTitle is the title OpenAlex assigns to tombstoned works.
const deletedWorkTitle = "Deleted Work"

// workSelectFields keeps neighbor queries small: metadata piggybacks on the
// same call that returns the edge, so no follow-up lookup is needed.
const workSelectFields = "id,display_name,title,publication_year,doi,concepts"

// maxConcepts bounds how many concept names a Paper carries.
const maxConcepts = 3

// Client implements Source against the OpenAlex API. Responses are cached
// process-wide by (operation, identifier); identical in-flight requests are
// deduplicated so a second caller waits for the first result instead of
// issuing (and billing) a duplicate call. Safe for concurrent use.
type Client struct {
	http    *http.Client
	cfg     types.OracleConfig
	cache   *Cache
	limiter *rate.Limiter
	group   singleflight.Group
	w       io.Writer
}

// NewClient builds a Client from cfg, writing progress and warnings to w.
func NewClient(cfg types.OracleConfig, w io.Writer) (*Client, error) {
	cfg.Normalize()
	if w == nil {
		w = io.Discard
	}

	cache, err := NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		w:       w,
	}, nil
}

// Close releases the response cache.
func (c *Client) Close() error {
	return c.cache.Close()
}

// GetReferences returns the works the given work cites. When an
// OpenCitations key is configured and the identifier is a DOI, the reference
// list comes from OpenCitations; otherwise OpenAlex answers.
func (c *Client) GetReferences(ctx context.Context, id string) ([]types.Paper, bool, error) {
	kind, norm := Classify(id)
	if kind == TypeDOI && c.cfg.OpenCitationsKey != "" {
		return c.referencesFromOpenCitations(ctx, norm)
	}
	return c.neighborQuery(ctx, OpReferences, norm, "cited_by:"+norm)
}

// GetCitations returns the works citing the given work.
func (c *Client) GetCitations(ctx context.Context, id string) ([]types.Paper, bool, error) {
	_, norm := Classify(id)
	return c.neighborQuery(ctx, OpCitations, norm, "cites:"+norm)
}

// SearchPaper resolves a work ID, DOI, or free-text query to a single paper.
// Returns ErrNotFound when nothing matches.
func (c *Client) SearchPaper(ctx context.Context, query string) (types.Paper, bool, error) {
	kind, norm := Classify(query)
	key := OpSearch + ":" + strings.ToLower(norm)

	body, cached, err := c.fetchCached(ctx, key, func(ctx context.Context) ([]byte, error) {
		var work *openAlexWork
		var err error
		switch kind {
		case TypeWorkID:
			work, err = c.singleWork(ctx, "/works/"+norm)
		case TypeDOI:
			work, err = c.singleWork(ctx, "/works/doi:"+norm)
		default:
			work, err = c.freeTextSearch(ctx, norm)
		}
		if err != nil {
			return nil, err
		}
		return json.Marshal(toPaper(*work))
	})
	if err != nil {
		return types.Paper{}, false, err
	}

	var p types.Paper
	if err := json.Unmarshal(body, &p); err != nil {
		return types.Paper{}, false, fmt.Errorf("decoding cached paper: %w", err)
	}
	return p, cached, nil
}

// neighborQuery runs a filtered /works query and returns its results as
// papers. A 404 means the anchoring work is gone: the neighbor set is empty,
// a dead end rather than an error.
func (c *Client) neighborQuery(ctx context.Context, op, id, filter string) ([]types.Paper, bool, error) {
	key := op + ":" + id

	body, cached, err := c.fetchCached(ctx, key, func(ctx context.Context) ([]byte, error) {
		params := url.Values{
			"filter":   {filter},
			"select":   {workSelectFields},
			"per-page": {fmt.Sprintf("%d", c.cfg.MaxNeighbors)},
		}
		status, raw, err := c.getJSON(ctx, openAlexBase+"/works?"+c.withMailto(params).Encode())
		if err != nil {
			return nil, err
		}
		switch {
		case status == http.StatusOK:
		case status == http.StatusNotFound:
			return json.Marshal([]types.Paper{})
		default:
			return nil, fmt.Errorf("%w: OpenAlex returned HTTP %d for %s", ErrUnavailable, status, key)
		}

		var oar openAlexResponse
		if err := json.Unmarshal(raw, &oar); err != nil {
			return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
		}
		papers := make([]types.Paper, 0, len(oar.Results))
		for _, work := range oar.Results {
			papers = append(papers, toPaper(work))
		}
		return json.Marshal(papers)
	})
	if err != nil {
		return nil, false, err
	}

	var papers []types.Paper
	if err := json.Unmarshal(body, &papers); err != nil {
		return nil, false, fmt.Errorf("decoding cached neighbors: %w", err)
	}
	return papers, cached, nil
}

// singleWork fetches one work by path. Returns ErrNotFound on 404.
func (c *Client) singleWork(ctx context.Context, path string) (*openAlexWork, error) {
	status, raw, err := c.getJSON(ctx, openAlexBase+path+"?"+c.withMailto(url.Values{}).Encode())
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	default:
		return nil, fmt.Errorf("%w: OpenAlex returned HTTP %d for %s", ErrUnavailable, status, path)
	}

	var work openAlexWork
	if err := json.Unmarshal(raw, &work); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex work: %w", err)
	}
	return &work, nil
}

// freeTextSearch returns the top relevance-ranked match for a query.
func (c *Client) freeTextSearch(ctx context.Context, query string) (*openAlexWork, error) {
	params := url.Values{
		"search":   {query},
		"select":   {workSelectFields},
		"per-page": {"1"},
	}
	status, raw, err := c.getJSON(ctx, openAlexBase+"/works?"+c.withMailto(params).Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: OpenAlex returned HTTP %d for search %q", ErrUnavailable, status, query)
	}

	var oar openAlexResponse
	if err := json.Unmarshal(raw, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	if len(oar.Results) == 0 {
		return nil, fmt.Errorf("%w: no match for %q", ErrNotFound, query)
	}
	return &oar.Results[0], nil
}

// TopWorks retrieves the most-cited works with DOIs, optionally bounded by
// publication year and concept. Used to build the benchmark task pool.
func (c *Client) TopWorks(ctx context.Context, limit, sinceYear int, conceptID string) ([]types.Paper, error) {
	if limit < 1 || limit > 200 {
		return nil, fmt.Errorf("limit must be between 1 and 200, got %d", limit)
	}

	filters := []string{"has_doi:true"}
	if sinceYear > 0 {
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", sinceYear))
	}
	if conceptID != "" {
		filters = append(filters, "concepts.id:"+conceptID)
	}

	params := url.Values{
		"sort":     {"cited_by_count:desc"},
		"filter":   {strings.Join(filters, ",")},
		"select":   {workSelectFields},
		"per-page": {fmt.Sprintf("%d", limit)},
	}
	status, raw, err := c.getJSON(ctx, openAlexBase+"/works?"+c.withMailto(params).Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: OpenAlex returned HTTP %d for top works", ErrUnavailable, status)
	}

	var oar openAlexResponse
	if err := json.Unmarshal(raw, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	papers := make([]types.Paper, 0, len(oar.Results))
	for _, work := range oar.Results {
		papers = append(papers, toPaper(work))
	}
	return papers, nil
}

// fetchCached answers from the cache when possible, otherwise runs fetch
// exactly once per key across concurrent callers. The boolean reports a
// zero-cost answer: a cache hit, or a result shared with an in-flight call.
func (c *Client) fetchCached(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if body, ok := c.cache.Get(key); ok {
		return body, true, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		body, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Put(key, body)
		return body, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), shared, nil
}

// getJSON issues a throttled GET with retry and returns the status and body.
func (c *Client) getJSON(ctx context.Context, rawURL string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, body, nil
}

// withMailto adds the polite-pool email parameter when configured.
func (c *Client) withMailto(params url.Values) url.Values {
	if c.cfg.Email != "" {
		params.Set("mailto", c.cfg.Email)
	}
	return params
}

// --- OpenCitations ---

// ocWorkPattern extracts OpenAlex work IDs from OpenCitations identifier strings.
var ocWorkPattern = regexp.MustCompile(`openalex:(W\d+)`)

// referencesFromOpenCitations fetches a DOI's reference list from
// OpenCitations and keeps the entries that carry an OpenAlex ID.
func (c *Client) referencesFromOpenCitations(ctx context.Context, doi string) ([]types.Paper, bool, error) {
	key := OpReferences + ":doi:" + strings.ToLower(doi)

	body, cached, err := c.fetchCached(ctx, key, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, openCitationsBase+"/references/doi:"+doi, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Authorization", c.cfg.OpenCitationsKey)

		resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return json.Marshal([]types.Paper{})
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: OpenCitations returned HTTP %d for %s", ErrUnavailable, resp.StatusCode, doi)
		}

		var items []ocItem
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			return nil, fmt.Errorf("parsing OpenCitations response: %w", err)
		}

		seen := make(map[string]struct{})
		var papers []types.Paper
		for _, item := range items {
			for _, m := range ocWorkPattern.FindAllStringSubmatch(item.Cited, -1) {
				id := m[1]
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				papers = append(papers, types.Paper{ID: id, Kind: types.KindUnknown})
				if len(papers) >= c.cfg.MaxNeighbors {
					break
				}
			}
			if len(papers) >= c.cfg.MaxNeighbors {
				break
			}
		}
		return json.Marshal(papers)
	})
	if err != nil {
		return nil, false, err
	}

	var papers []types.Paper
	if err := json.Unmarshal(body, &papers); err != nil {
		return nil, false, fmt.Errorf("decoding cached neighbors: %w", err)
	}
	return papers, cached, nil
}

type ocItem struct {
	Citing string `json:"citing"`
	Cited  string `json:"cited"`
}

// --- OpenAlex API JSON structures ---

type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID              string            `json:"id"`
	DisplayName     string            `json:"display_name"`
	Title           string            `json:"title"`
	DOI             string            `json:"doi"`
	PublicationYear int               `json:"publication_year"`
	Concepts        []openAlexConcept `json:"concepts"`
}

type openAlexConcept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// toPaper converts an OpenAlex work to the benchmark's Paper, marking
// tombstoned works as deleted sentinels.
func toPaper(w openAlexWork) types.Paper {
	title := w.DisplayName
	if title == "" {
		title = w.Title
	}

	p := types.Paper{
		ID:    NormalizeWorkID(w.ID),
		Title: title,
		Year:  w.PublicationYear,
		DOI:   strings.TrimPrefix(w.DOI, "https://doi.org/"),
		Kind:  types.KindPaper,
	}
	for i, concept := range w.Concepts {
		if i >= maxConcepts {
			break
		}
		p.Concepts = append(p.Concepts, concept.DisplayName)
	}
	if title == deletedWorkTitle {
		p.Kind = types.KindDeleted
		p.Concepts = nil
	}
	return p
}
