package aggregator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mdt-readiness-aggregator/internal/config"
	"mdt-readiness-aggregator/internal/models"
)

// EntryResolver resolves one profile entry into a finding. It never returns
// an error and never panics past its boundary. *sources.Registry implements it.
type EntryResolver interface {
	Resolve(ctx context.Context, entry models.ProfileEntry, patient models.RosterPatient) models.DomainFinding
}

// Collector runs the data-gathering stage: every profile entry's resolver in
// parallel per patient, and patients in parallel across the roster. Each
// checklist entry is written by exactly one producer, and the checklist is
// read only after all producers finished or the gather timeout elapsed.
type Collector struct {
	config     *config.Config
	profile    models.ChecklistProfile
	resolver   EntryResolver
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewCollector creates the gather stage for one profile.
func NewCollector(
	cfg *config.Config,
	profile models.ChecklistProfile,
	resolver EntryResolver,
	aggregator *Aggregator,
	logger *zap.Logger,
) *Collector {
	return &Collector{
		config:     cfg,
		profile:    profile,
		resolver:   resolver,
		aggregator: aggregator,
		logger:     logger,
	}
}

type entryResult struct {
	key     string
	finding models.DomainFinding
}

// GatherPatient resolves every checklist entry for one patient and finalizes
// the readiness verdict. Entries still unresolved when the gather timeout
// fires stay PENDING, which the status rules report as IN_PROGRESS (or
// BLOCKED if a blocker already landed). Late resolver results go into the
// buffered channel and are discarded, so no goroutine leaks.
func (c *Collector) GatherPatient(ctx context.Context, patient models.RosterPatient) models.PatientReadiness {
	start := time.Now()

	timeout := time.Duration(c.config.Runner.Gather.Timeout) * time.Second
	gatherCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(chan entryResult, len(c.profile.Entries))
	for _, entry := range c.profile.Entries {
		entry := entry
		go func() {
			results <- entryResult{
				key:     entry.Key,
				finding: c.resolver.Resolve(gatherCtx, entry, patient),
			}
		}()
	}

	checklist := models.NewPatientChecklist(c.profile)
	remaining := len(c.profile.Entries)
	for remaining > 0 {
		select {
		case r := <-results:
			remaining--
			if err := checklist.Set(r.key, r.finding); err != nil {
				c.logger.Error("Failed to record finding",
					zap.String("patient_id", patient.PatientID),
					zap.String("key", r.key),
					zap.Error(err),
				)
			}
		case <-gatherCtx.Done():
			c.logger.Warn("Gather timed out, unresolved entries stay pending",
				zap.String("patient_id", patient.PatientID),
				zap.Int("unresolved", remaining),
				zap.Duration("timeout", timeout),
			)
			remaining = 0
		}
	}

	readiness := c.aggregator.Finalize(patient.PatientID, checklist)
	readiness.ElapsedMS = time.Since(start).Milliseconds()

	c.logger.Debug("Gathered patient readiness",
		zap.String("patient_id", patient.PatientID),
		zap.String("overall_status", string(readiness.OverallStatus)),
		zap.Int64("elapsed_ms", readiness.ElapsedMS),
	)

	return readiness
}

// GatherRoster runs GatherPatient for every roster patient with a bounded
// degree of parallelism. One patient's failure never aborts the others; a
// patient that could not be gathered simply has no entry in the result map
// and the dashboard builder counts it as an ERROR row.
func (c *Collector) GatherRoster(ctx context.Context, roster models.Roster) map[string]models.PatientReadiness {
	results := make([]models.PatientReadiness, len(roster.Patients))

	limit := c.config.Runner.Gather.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, patient := range roster.Patients {
		i, patient := i, patient
		g.Go(func() error {
			results[i] = c.GatherPatient(ctx, patient)
			return nil
		})
	}
	_ = g.Wait()

	byPatient := make(map[string]models.PatientReadiness, len(results))
	for _, r := range results {
		if r.PatientID == "" {
			continue
		}
		byPatient[r.PatientID] = r
	}
	return byPatient
}
