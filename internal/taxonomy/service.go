package taxonomy

import (
	"context"
	"errors"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// Service reconciles taxonomy candidates against the shared rows of a group
// and prunes rows no longer referenced by any content item.
type Service interface {
	Resolve(ctx context.Context, groupID uuid.UUID, candidate *Taxonomy, kind Kind) (uuid.UUID, error)
	ReplaceReferences(ctx context.Context, contentID uuid.UUID, taxonomyIDs []uuid.UUID) error
	References(ctx context.Context, contentID uuid.UUID) ([]*Taxonomy, error)
	ClearReferences(ctx context.Context, contentID uuid.UUID) error
	PruneUnused(ctx context.Context, groupID uuid.UUID) error
	List(ctx context.Context, groupID uuid.UUID, kind Kind) ([]*Taxonomy, error)
}

// IDGenerator produces identifiers for new rows.
type IDGenerator func() uuid.UUID

// Option mutates the taxonomy service.
type Option func(*service)

// WithClock overrides the clock used for created/modified stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the id generator used for new rows.
func WithIDGenerator(generator IDGenerator) Option {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithSlugNormalizer overrides slug derivation.
func WithSlugNormalizer(normalizer slug.Normalizer) Option {
	return func(s *service) {
		if normalizer != nil {
			s.slugs = normalizer
		}
	}
}

// WithLogger injects the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxRetries bounds how often a conflicted create is re-resolved.
func WithMaxRetries(retries int) Option {
	return func(s *service) {
		if retries >= 0 {
			s.maxRetries = retries
		}
	}
}

// NewService constructs a taxonomy reconciler over the supplied repository.
func NewService(repo Repository, opts ...Option) Service {
	svc := &service{
		repo:       repo,
		now:        func() time.Time { return time.Now().UTC() },
		id:         uuid.New,
		slugs:      slug.Default(),
		logger:     logging.NoOp(),
		maxRetries: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

type service struct {
	repo       Repository
	now        func() time.Time
	id         IDGenerator
	slugs      slug.Normalizer
	logger     interfaces.Logger
	maxRetries int
}

// Resolve matches the candidate against existing rows by id, then slug, then
// title, creating a new row when nothing matches. The candidate is rewritten
// in place with the canonical id, title, and slug so the caller's in-memory
// model reflects the stored row. A uniqueness violation during create means
// a concurrent save won the race; resolution is retried a bounded number of
// times before surfacing ErrOperationFailed.
func (s *service) Resolve(ctx context.Context, groupID uuid.UUID, candidate *Taxonomy, kind Kind) (uuid.UUID, error) {
	if s == nil || s.repo == nil {
		return uuid.Nil, errors.New("taxonomy service unavailable")
	}
	if groupID == uuid.Nil {
		return uuid.Nil, ErrGroupRequired
	}
	if candidate == nil || (strings.TrimSpace(candidate.Title) == "" && strings.TrimSpace(candidate.Slug) == "" && candidate.ID == uuid.Nil) {
		return uuid.Nil, ErrTitleRequired
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		resolved, err := s.lookup(ctx, groupID, candidate, kind)
		if err != nil {
			return uuid.Nil, err
		}
		if resolved != nil {
			rewrite(candidate, resolved)
			return resolved.ID, nil
		}

		created, err := s.create(ctx, groupID, candidate, kind)
		if err == nil {
			rewrite(candidate, created)
			return created.ID, nil
		}
		if !errors.Is(err, ErrSlugConflict) {
			return uuid.Nil, err
		}

		// Another save created the row between lookup and create; the next
		// lookup pass resolves against it.
		lastErr = err
		s.logger.Debug("taxonomy.resolve.conflict_retry", "group_id", groupID.String(), "slug", candidate.Slug, "attempt", attempt+1)
	}

	return uuid.Nil, errors.Join(ErrOperationFailed, lastErr)
}

func (s *service) lookup(ctx context.Context, groupID uuid.UUID, candidate *Taxonomy, kind Kind) (*Taxonomy, error) {
	if candidate.ID != uuid.Nil {
		existing, err := s.repo.GetByID(ctx, candidate.ID)
		if err == nil && existing.GroupID == groupID && existing.Type == kind {
			return existing, nil
		}
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}

	if normalized := s.normalizeSlug(candidate.Slug); normalized != "" {
		existing, err := s.repo.GetBySlug(ctx, groupID, kind, normalized)
		if err == nil {
			return existing, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	if title := strings.TrimSpace(candidate.Title); title != "" {
		existing, err := s.repo.GetByTitle(ctx, groupID, kind, title)
		if err == nil {
			return existing, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	return nil, nil
}

func (s *service) create(ctx context.Context, groupID uuid.UUID, candidate *Taxonomy, kind Kind) (*Taxonomy, error) {
	title := strings.TrimSpace(candidate.Title)
	derived := s.normalizeSlug(candidate.Slug)
	if derived == "" {
		derived = s.normalizeSlug(title)
	}
	if title == "" && derived == "" {
		return nil, ErrTitleRequired
	}
	if title == "" {
		title = derived
	}

	id := candidate.ID
	if id == uuid.Nil {
		id = s.id()
	}
	now := s.now()
	record := &Taxonomy{
		ID:        id,
		GroupID:   groupID,
		Type:      kind,
		Title:     title,
		Slug:      derived,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.Create(ctx, record)
}

func (s *service) ReplaceReferences(ctx context.Context, contentID uuid.UUID, taxonomyIDs []uuid.UUID) error {
	if s == nil || s.repo == nil {
		return errors.New("taxonomy service unavailable")
	}
	return s.repo.ReplaceReferences(ctx, contentID, taxonomyIDs)
}

// References loads the taxonomy rows a content item points at. Rows removed
// by a concurrent prune are skipped.
func (s *service) References(ctx context.Context, contentID uuid.UUID) ([]*Taxonomy, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("taxonomy service unavailable")
	}
	ids, err := s.repo.ListReferences(ctx, contentID)
	if err != nil {
		return nil, err
	}
	out := make([]*Taxonomy, 0, len(ids))
	for _, id := range ids {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *service) ClearReferences(ctx context.Context, contentID uuid.UUID) error {
	if s == nil || s.repo == nil {
		return errors.New("taxonomy service unavailable")
	}
	return s.repo.DeleteReferences(ctx, contentID)
}

// PruneUnused deletes every row of the group not referenced by any surviving
// content item. Idempotent: a second run finds nothing to remove.
func (s *service) PruneUnused(ctx context.Context, groupID uuid.UUID) error {
	if s == nil || s.repo == nil {
		return errors.New("taxonomy service unavailable")
	}
	if groupID == uuid.Nil {
		return ErrGroupRequired
	}
	removed, err := s.repo.DeleteUnreferenced(ctx, groupID)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		s.logger.Debug("taxonomy.prune.removed", "group_id", groupID.String(), "count", len(removed))
	}
	return nil
}

func (s *service) List(ctx context.Context, groupID uuid.UUID, kind Kind) ([]*Taxonomy, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("taxonomy service unavailable")
	}
	return s.repo.List(ctx, groupID, kind)
}

func (s *service) normalizeSlug(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	normalized, err := s.slugs.Normalize(value)
	if err != nil {
		return ""
	}
	return normalized
}

func rewrite(candidate, canonical *Taxonomy) {
	candidate.ID = canonical.ID
	candidate.GroupID = canonical.GroupID
	candidate.Type = canonical.Type
	candidate.Title = canonical.Title
	candidate.Slug = canonical.Slug
	candidate.CreatedAt = canonical.CreatedAt
	candidate.UpdatedAt = canonical.UpdatedAt
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
