package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
)

// Paper is one PubMed citation.
type Paper struct {
	PMID    string `json:"pmid"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pub_date"`
}

// PubMedClient queries the NCBI E-utilities esearch/esummary endpoints.
type PubMedClient struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPubMedClient creates a client from the enrichment config.
func NewPubMedClient(cfg *config.Config, logger *zap.Logger) *PubMedClient {
	return &PubMedClient{
		baseURL:    strings.TrimRight(cfg.Enrichment.PubMedBaseURL, "/"),
		maxResults: cfg.Enrichment.MaxResults,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
}

// SearchLiterature finds recent PubMed citations for a free-text query. The
// query is restricted to human studies the way the upstream curators search.
func (c *PubMedClient) SearchLiterature(ctx context.Context, query string) ([]Paper, error) {
	if !strings.Contains(strings.ToLower(query), "humans[mesh]") {
		query = query + " AND humans[MeSH]"
	}

	ids, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Paper{}, nil
	}

	papers, err := c.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Searched PubMed literature",
		zap.String("query", query),
		zap.Int("found", len(papers)),
	)

	return papers, nil
}

func (c *PubMedClient) search(ctx context.Context, term string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(c.maxResults))
	params.Set("retmode", "json")
	params.Set("sort", "relevance")

	reqURL := c.baseURL + "/esearch.fcgi?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build esearch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("esearch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esearch request returned status %d", resp.StatusCode)
	}

	var body esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode esearch response: %w", err)
	}

	return body.ESearchResult.IDList, nil
}

func (c *PubMedClient) summaries(ctx context.Context, ids []string) ([]Paper, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")

	reqURL := c.baseURL + "/esummary.fcgi?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build esummary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("esummary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esummary request returned status %d", resp.StatusCode)
	}

	var body esummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode esummary response: %w", err)
	}

	// The result map is keyed by uid, with a "uids" entry listing the order.
	papers := make([]Paper, 0, len(ids))
	for _, id := range ids {
		raw, ok := body.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		papers = append(papers, Paper{
			PMID:    id,
			Title:   doc.Title,
			Source:  doc.Source,
			PubDate: doc.PubDate,
		})
	}

	return papers, nil
}
