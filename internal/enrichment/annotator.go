package enrichment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/config"
)

// Annotator combines trial and literature lookups into the context lines
// appended to a genomics finding. Either lookup failing degrades to whatever
// the other one returned; the finding itself is never blocked on enrichment.
type Annotator struct {
	trials *TrialsClient
	pubmed *PubMedClient
	logger *zap.Logger
}

// NewAnnotator creates the combined annotator from the enrichment config.
func NewAnnotator(cfg *config.Config, logger *zap.Logger) *Annotator {
	return &Annotator{
		trials: NewTrialsClient(cfg, logger),
		pubmed: NewPubMedClient(cfg, logger),
		logger: logger,
	}
}

// Annotate returns up to two lines: recruiting trials and key literature for
// the mutated genes. An empty string means nothing relevant was found.
func (a *Annotator) Annotate(ctx context.Context, genes []string, condition string) (string, error) {
	var lines []string

	trials, trialsErr := a.trials.SearchTrials(ctx, genes, condition)
	if trialsErr != nil {
		a.logger.Debug("Trial search failed", zap.Error(trialsErr))
	} else if len(trials) > 0 {
		ids := make([]string, 0, len(trials))
		for _, t := range trials {
			ids = append(ids, t.NCTID)
		}
		lines = append(lines, "Recruiting trials: "+strings.Join(ids, ", "))
	}

	query := strings.TrimSpace(strings.Join(genes, " ") + " " + condition)
	papers, pubmedErr := a.pubmed.SearchLiterature(ctx, query)
	if pubmedErr != nil {
		a.logger.Debug("Literature search failed", zap.Error(pubmedErr))
	} else if len(papers) > 0 {
		pmids := make([]string, 0, len(papers))
		for _, p := range papers {
			pmids = append(pmids, p.PMID)
		}
		lines = append(lines, "Key literature: PMID "+strings.Join(pmids, ", PMID "))
	}

	if len(lines) == 0 {
		if trialsErr != nil && pubmedErr != nil {
			return "", fmt.Errorf("enrichment lookups failed: %v; %v", trialsErr, pubmedErr)
		}
		return "", nil
	}

	return strings.Join(lines, "\n"), nil
}
