package sources

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mdt-readiness-aggregator/internal/models"
)

// Resolver produces the finding for one checklist entry. Resolvers never
// return errors: every failure becomes a finding with state ERROR so nothing
// escapes past the aggregation boundary.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, domain models.Domain, patient models.RosterPatient) models.DomainFinding
}

// Registry maps profile source names to resolvers.
type Registry struct {
	resolvers map[string]Resolver
	logger    *zap.Logger
}

// NewRegistry creates an empty resolver registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		resolvers: make(map[string]Resolver),
		logger:    logger,
	}
}

// Register adds a resolver under its name. Later registrations replace
// earlier ones, which lets tests swap in fakes.
func (r *Registry) Register(res Resolver) {
	r.resolvers[res.Name()] = res
}

// Has reports whether a source name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.resolvers[name]
	return ok
}

// Resolve runs the resolver bound to a profile entry. An unregistered source
// or a panicking resolver yields an ERROR finding, never a raised error.
func (r *Registry) Resolve(ctx context.Context, entry models.ProfileEntry, patient models.RosterPatient) (finding models.DomainFinding) {
	res, ok := r.resolvers[entry.Source]
	if !ok {
		return models.NewErrorFinding(entry.Domain, entry.Source,
			fmt.Sprintf("no resolver registered for source: %s", entry.Source))
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Resolver panicked",
				zap.String("source", entry.Source),
				zap.String("patient_id", patient.PatientID),
				zap.Any("panic", rec),
			)
			finding = models.NewErrorFinding(entry.Domain, entry.Source,
				fmt.Sprintf("resolver %s panicked: %v", entry.Source, rec))
		}
	}()

	finding = res.Resolve(ctx, entry.Domain, patient)

	if finding.State == models.StateError {
		r.logger.Warn("Domain finding resolved with error",
			zap.String("source", entry.Source),
			zap.String("patient_id", patient.PatientID),
			zap.String("summary", finding.Summary),
		)
	} else {
		r.logger.Debug("Domain finding resolved",
			zap.String("source", entry.Source),
			zap.String("patient_id", patient.PatientID),
			zap.String("state", string(finding.State)),
		)
	}

	return finding
}
