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

// Trial is one recruiting study relevant to a patient's genomic findings.
type Trial struct {
	NCTID  string `json:"nct_id"`
	Title  string `json:"title"`
	Phase  string `json:"phase"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// TrialsClient queries the ClinicalTrials.gov v2 studies API.
type TrialsClient struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTrialsClient creates a client from the enrichment config.
func NewTrialsClient(cfg *config.Config, logger *zap.Logger) *TrialsClient {
	return &TrialsClient{
		baseURL:    strings.TrimRight(cfg.Enrichment.TrialsBaseURL, "/"),
		maxResults: cfg.Enrichment.MaxResults,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type studiesResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus string `json:"overallStatus"`
			} `json:"statusModule"`
			DesignModule struct {
				Phases []string `json:"phases"`
			} `json:"designModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// SearchTrials finds recruiting studies matching the mutated genes and the
// patient's condition. Each gene contributes a "<gene> mutation" clause.
func (c *TrialsClient) SearchTrials(ctx context.Context, genes []string, condition string) ([]Trial, error) {
	if condition == "" {
		condition = "breast cancer"
	}

	var queryParts []string
	if len(genes) > 0 {
		clauses := make([]string, 0, len(genes))
		for _, gene := range genes {
			clauses = append(clauses, gene+" mutation")
		}
		queryParts = append(queryParts, "("+strings.Join(clauses, " OR ")+")")
	}
	queryParts = append(queryParts, condition)
	searchQuery := strings.Join(queryParts, " AND ")

	params := url.Values{}
	params.Set("query.term", searchQuery)
	params.Set("filter.overallStatus", "RECRUITING")
	params.Set("pageSize", strconv.Itoa(c.maxResults))
	params.Set("format", "json")

	reqURL := c.baseURL + "/studies?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build trials request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trials request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trials request returned status %d", resp.StatusCode)
	}

	var body studiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode trials response: %w", err)
	}

	trials := make([]Trial, 0, len(body.Studies))
	for _, study := range body.Studies {
		ident := study.ProtocolSection.IdentificationModule
		trials = append(trials, Trial{
			NCTID:  ident.NCTID,
			Title:  ident.BriefTitle,
			Phase:  strings.Join(study.ProtocolSection.DesignModule.Phases, ", "),
			Status: study.ProtocolSection.StatusModule.OverallStatus,
			URL:    "https://clinicaltrials.gov/study/" + ident.NCTID,
		})
	}

	c.logger.Debug("Searched clinical trials",
		zap.String("query", searchQuery),
		zap.Int("found", len(trials)),
	)

	return trials, nil
}
