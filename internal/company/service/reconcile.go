package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"orgbook/internal/company/models"
	"orgbook/internal/enrichment"
	"orgbook/pkg/requestcontext"
	"orgbook/pkg/webdomain"

	id "orgbook/pkg/domain"
	dErrors "orgbook/pkg/domain-errors"
	"orgbook/pkg/platform/sentinel"
)

// keyedCandidate pairs a candidate with its normalized domain. The reconciler
// carries these in stable first-occurrence order; position assignment depends
// on that order.
type keyedCandidate struct {
	key       string
	candidate models.Candidate
}

// Reconcile creates the genuinely new companies out of a candidate batch and
// returns a mapping from normalized domain to company ID covering both
// pre-existing and newly created records.
//
// Candidates without a domain all collapse onto a single key-less entry,
// mapped under the empty string. Enrichment failures degrade individual
// records to a deterministic fallback name; only store failures abort the
// batch.
func (s *Service) Reconcile(ctx context.Context, workspaceID id.WorkspaceID, candidates []models.Candidate) (map[string]id.CompanyID, error) {
	if workspaceID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "workspace is required")
	}

	result := make(map[string]id.CompanyID, len(candidates))
	if len(candidates) == 0 {
		return result, nil
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "company.reconcile", trace.WithAttributes(
		attribute.String("workspace_id", workspaceID.String()),
		attribute.Int("candidate_count", len(candidates)),
	))
	defer span.End()

	if s.metrics != nil {
		s.metrics.ObserveBatchSize(len(candidates))
		defer s.metrics.ObserveReconcile(start)
	}

	deduped := dedupeByDomain(candidates)

	keys := make([]string, len(deduped))
	for i, kc := range deduped {
		keys[i] = kc.key
	}

	existing, err := s.store.FindByDomains(ctx, workspaceID, keys)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to look up existing companies")
	}

	// Stored rows are re-normalized defensively; older records may carry
	// un-normalized domains written before this service owned creation.
	existingByKey := make(map[string]id.CompanyID, len(existing))
	for _, c := range existing {
		key := webdomain.Normalize(c.Domain)
		if _, ok := existingByKey[key]; !ok {
			existingByKey[key] = c.ID
		}
	}

	toCreate := make([]keyedCandidate, 0, len(deduped))
	for _, kc := range deduped {
		if companyID, ok := existingByKey[kc.key]; ok {
			result[kc.key] = companyID
			continue
		}
		toCreate = append(toCreate, kc)
	}

	if len(toCreate) == 0 {
		return result, nil
	}

	maxPos, err := s.store.MaxPosition(ctx, workspaceID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to read max company position")
	}

	profiles := s.enrichAll(ctx, toCreate)

	now := requestcontext.Now(ctx)
	companies := make([]*models.Company, len(toCreate))
	for i, kc := range toCreate {
		name := profiles[i].Name
		if name == "" {
			name = webdomain.DeriveNameFromDomain(kc.key)
		}

		company, err := models.NewCompany(workspaceID, kc.key, name, maxPos+1+int64(i), now)
		if err != nil {
			return nil, err
		}
		company.City = profiles[i].City
		company.Source = kc.candidate.Source
		company.CreatedBy = kc.candidate.CreatedBy
		company.Attribution = kc.candidate.Attribution
		companies[i] = company
	}

	created, err := s.store.BulkCreate(ctx, companies)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to create companies")
	}

	if s.metrics != nil {
		s.metrics.IncrementCompaniesCreated(len(created))
	}
	s.notifyBatchCreated(ctx, workspaceID, created, now)

	// Created entries win on key collision, though dedup should prevent any.
	for _, c := range created {
		result[webdomain.Normalize(c.Domain)] = c.ID
	}
	return result, nil
}

// dedupeByDomain normalizes candidate domains and keeps the first occurrence
// per normalized key, preserving input order. All key-less candidates collapse
// onto the single "" entry.
func dedupeByDomain(candidates []models.Candidate) []keyedCandidate {
	seen := make(map[string]struct{}, len(candidates))
	deduped := make([]keyedCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.NormalizedDomain()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, keyedCandidate{key: key, candidate: c})
	}
	return deduped
}

// enrichAll runs lookups for the to-create set concurrently, slotting results
// by index so downstream position assignment stays in dedup order. A failed or
// absent lookup leaves the zero Profile; the caller substitutes fallbacks.
func (s *Service) enrichAll(ctx context.Context, toCreate []keyedCandidate) []enrichment.Profile {
	profiles := make([]enrichment.Profile, len(toCreate))
	if s.lookup == nil {
		return profiles
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)
	for i, kc := range toCreate {
		g.Go(func() error {
			profile, err := s.lookup.Lookup(gctx, kc.key)
			if err != nil {
				if s.metrics != nil {
					s.metrics.IncrementEnrichmentFallbacks()
				}
				s.logDebug(gctx, "enrichment failed, using fallback",
					"domain", kc.key,
					"category", enrichment.CategoryOf(err),
					"error", err,
				)
				return nil
			}
			profiles[i] = profile
			return nil
		})
	}
	// Goroutines never return errors; enrichment must not abort the batch.
	_ = g.Wait()
	return profiles
}

func (s *Service) notifyBatchCreated(ctx context.Context, workspaceID id.WorkspaceID, created []*models.Company, now time.Time) {
	if s.notifier == nil || len(created) == 0 {
		return
	}

	entries := make([]models.CreatedEntry, len(created))
	for i, c := range created {
		entries[i] = models.CreatedEntry{
			ID:       c.ID,
			Domain:   c.Domain,
			Name:     c.Name,
			Position: c.Position,
		}
	}

	event := models.CompanyBatchCreated{
		WorkspaceID: workspaceID,
		RecordType:  models.RecordTypeCompany,
		Entries:     entries,
		OccurredAt:  now,
	}
	if err := s.notifier.CompanyBatchCreated(ctx, event); err != nil {
		s.logWarn(ctx, "batch-created notification failed",
			"workspace_id", workspaceID,
			"entries", len(entries),
			"error", err,
		)
	}
}

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "company domain already exists in workspace")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
