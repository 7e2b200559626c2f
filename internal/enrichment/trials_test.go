package enrichment_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/enrichment"
)

const studiesBody = `{
	"studies": [
		{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT01000001", "briefTitle": "Alpelisib in PIK3CA-mutated breast cancer"},
				"statusModule": {"overallStatus": "RECRUITING"},
				"designModule": {"phases": ["PHASE3"]}
			}
		},
		{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT01000002", "briefTitle": "PARP inhibition in BRCA carriers"},
				"statusModule": {"overallStatus": "RECRUITING"},
				"designModule": {"phases": ["PHASE2", "PHASE3"]}
			}
		}
	]
}`

func trialsConfig(baseURL string, maxResults int) *config.Config {
	cfg := &config.Config{}
	cfg.Enrichment.TrialsBaseURL = baseURL
	cfg.Enrichment.PubMedBaseURL = baseURL
	cfg.Enrichment.MaxResults = maxResults
	return cfg
}

func TestTrialsClient_SearchTrials(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/studies", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, studiesBody)
	}))
	defer server.Close()

	client := enrichment.NewTrialsClient(trialsConfig(server.URL, 3), zap.NewNop())

	trials, err := client.SearchTrials(context.Background(), []string{"PIK3CA", "TP53"}, "breast cancer")
	require.NoError(t, err)
	require.Len(t, trials, 2)

	assert.Equal(t, "NCT01000001", trials[0].NCTID)
	assert.Equal(t, "Alpelisib in PIK3CA-mutated breast cancer", trials[0].Title)
	assert.Equal(t, "PHASE3", trials[0].Phase)
	assert.Equal(t, "RECRUITING", trials[0].Status)
	assert.Equal(t, "https://clinicaltrials.gov/study/NCT01000001", trials[0].URL)
	assert.Equal(t, "PHASE2, PHASE3", trials[1].Phase)

	assert.Equal(t, "(PIK3CA mutation OR TP53 mutation) AND breast cancer", gotQuery.Get("query.term"))
	assert.Equal(t, "RECRUITING", gotQuery.Get("filter.overallStatus"))
	assert.Equal(t, "3", gotQuery.Get("pageSize"))
}

func TestTrialsClient_EmptyConditionDefaultsToBreastCancer(t *testing.T) {
	var gotTerm string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTerm = r.URL.Query().Get("query.term")
		fmt.Fprint(w, `{"studies": []}`)
	}))
	defer server.Close()

	client := enrichment.NewTrialsClient(trialsConfig(server.URL, 5), zap.NewNop())

	trials, err := client.SearchTrials(context.Background(), []string{"BRCA1"}, "")
	require.NoError(t, err)
	assert.Empty(t, trials)
	assert.Equal(t, "(BRCA1 mutation) AND breast cancer", gotTerm)
}

func TestTrialsClient_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := enrichment.NewTrialsClient(trialsConfig(server.URL, 5), zap.NewNop())

	_, err := client.SearchTrials(context.Background(), []string{"PIK3CA"}, "breast cancer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
