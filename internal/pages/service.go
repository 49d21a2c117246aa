package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// Service owns the page tree. Save, Move, and Delete keep every
// (site, parent) scope's sort orders contiguous from 0 and return the ids of
// pages whose structural position changed, the invalidation signal for any
// external cache.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error)
	ListSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]*Page, error)
	Save(ctx context.Context, model *Page) ([]uuid.UUID, error)
	Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, sortOrder int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type IDGenerator func() uuid.UUID

type service struct {
	repo       Repository
	schemas    *schema.Registry
	blocks     blocks.Service
	now        func() time.Time
	id         IDGenerator
	slugs      slug.Normalizer
	logger     interfaces.Logger
	maxRetries int
}

type Option func(*service)

func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) Option {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithSlugNormalizer(normalizer slug.Normalizer) Option {
	return func(s *service) {
		if normalizer != nil {
			s.slugs = normalizer
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxRetries bounds how often a conflicted resequence is reattempted.
func WithMaxRetries(retries int) Option {
	return func(s *service) {
		if retries >= 0 {
			s.maxRetries = retries
		}
	}
}

// NewService constructs the page service. blockService may be nil when the
// caller never uses block-backed page types.
func NewService(repo Repository, schemas *schema.Registry, blockService blocks.Service, opts ...Option) Service {
	svc := &service{
		repo:       repo,
		schemas:    schemas,
		blocks:     blockService,
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

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachBlocks(ctx, page)
}

func (s *service) GetBySlug(ctx context.Context, siteID uuid.UUID, value string) (*Page, error) {
	page, err := s.repo.GetBySlug(ctx, siteID, value)
	if err != nil {
		return nil, err
	}
	return s.attachBlocks(ctx, page)
}

func (s *service) ListSiblings(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]*Page, error) {
	return s.repo.ListSiblings(ctx, siteID, parentID)
}

// Save validates the model against its registered page type, persists it,
// and restores sibling contiguity in every scope it touched.
func (s *service) Save(ctx context.Context, model *Page) ([]uuid.UUID, error) {
	if model == nil {
		return nil, errors.New("pages: model is required")
	}
	if model.SiteID == uuid.Nil {
		return nil, ErrSiteRequired
	}
	if strings.TrimSpace(model.Title) == "" {
		return nil, ErrTitleRequired
	}

	pageType, err := s.schemas.GetKind(model.TypeID, schema.KindPage)
	if err != nil {
		return nil, err
	}
	if err := s.validateCopy(ctx, model); err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, model.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	isNew := existing == nil
	if isNew {
		if model.ID == uuid.Nil {
			model.ID = s.id()
		}
		model.CreatedAt = now
	} else {
		model.CreatedAt = existing.CreatedAt
	}
	model.UpdatedAt = now
	if strings.TrimSpace(model.Slug) == "" {
		model.Slug = s.normalizeSlug(model.Title)
	}

	changed, err := s.persistWithRetry(ctx, model, existing, isNew)
	if err != nil {
		return nil, err
	}

	if pageType.UseBlocks && s.blocks != nil {
		if err := s.blocks.Replace(ctx, model.ID, model.Blocks); err != nil {
			if isNew {
				s.discardCreate(ctx, model)
			}
			return nil, err
		}
	}

	if isNew || titleChanged(existing, model) {
		changed = appendID(changed, model.ID)
	}
	s.logger.Debug("pages.save", "page_id", model.ID.String(), "site_id", model.SiteID.String(), "invalidated", len(changed))
	return changed, nil
}

// Move repositions a page without touching its content fields.
func (s *service) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, sortOrder int) ([]uuid.UUID, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	model := existing.Clone()
	model.ParentID = parentID
	model.SortOrder = sortOrder
	model.UpdatedAt = s.now()

	changed, err := s.persistWithRetry(ctx, model, existing, false)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("pages.move", "page_id", id.String(), "invalidated", len(changed))
	return changed, nil
}

// Delete removes a page, failing while copies or children still reference
// it, and closes the sort-order gap it leaves behind.
func (s *service) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	copies, err := s.repo.CountCopies(ctx, id)
	if err != nil {
		return nil, err
	}
	if copies > 0 {
		return nil, ErrHasCopies
	}
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		return nil, ErrHasChildren
	}

	if s.blocks != nil {
		if err := s.blocks.DeleteForContent(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	changed, err := s.closeGapWithRetry(ctx, existing.SiteID, existing.ParentID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("pages.delete", "page_id", id.String(), "invalidated", len(changed))
	return changed, nil
}

// discardCreate removes the row a failed save left behind and closes the
// gap in its scope. Cleanup failures are only logged, the save's own error
// is what the caller reports.
func (s *service) discardCreate(ctx context.Context, model *Page) {
	if err := s.repo.Delete(ctx, model.ID); err != nil {
		s.logger.Error("pages.save_cleanup", "page_id", model.ID.String(), "step", "delete_row", "error", err.Error())
		return
	}
	if _, err := s.closeGapWithRetry(ctx, model.SiteID, model.ParentID); err != nil {
		s.logger.Error("pages.save_cleanup", "page_id", model.ID.String(), "step", "close_gap", "error", err.Error())
	}
}

// closeGapWithRetry closes the gap a removed row left in its scope,
// recomputing from fresh reads when a concurrent writer rearranged it.
func (s *service) closeGapWithRetry(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]uuid.UUID, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		changed, err := s.resequenceScope(ctx, siteID, parentID, uuid.Nil, -1)
		if err == nil {
			return changed, nil
		}
		if !errors.Is(err, ErrSortConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("pages.sort_conflict_retry", "scope_site", siteID.String(), "attempt", attempt+1)
	}
	return nil, errors.Join(ErrOperationFailed, lastErr)
}

func (s *service) attachBlocks(ctx context.Context, page *Page) (*Page, error) {
	if s.blocks == nil {
		return page, nil
	}
	tree, err := s.blocks.Load(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	page.Blocks = tree
	return page, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

// validateCopy enforces that a copy points at a non-copy original of the
// same content type.
func (s *service) validateCopy(ctx context.Context, model *Page) error {
	if model.OriginalPageID == nil {
		return nil
	}
	original, err := s.repo.GetByID(ctx, *model.OriginalPageID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return &CopyError{PageID: model.ID.String(), Original: model.OriginalPageID.String(), Reason: "original does not exist"}
		}
		return err
	}
	if original.IsCopy() {
		return &CopyError{PageID: model.ID.String(), Original: original.ID.String(), Reason: "original is itself a copy"}
	}
	if original.TypeID != model.TypeID {
		return &CopyError{PageID: model.ID.String(), Original: original.ID.String(), Reason: "original has a different content type"}
	}
	return nil
}

// persistWithRetry writes the row and resequences the scopes it touched.
// A sort conflict means another writer rearranged a scope concurrently; the
// arrangement is recomputed from fresh reads a bounded number of times.
func (s *service) persistWithRetry(ctx context.Context, model, existing *Page, isNew bool) ([]uuid.UUID, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		changed, err := s.persist(ctx, model, existing, isNew)
		if err == nil {
			return changed, nil
		}
		if !errors.Is(err, ErrSortConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("pages.sort_conflict_retry", "page_id", model.ID.String(), "attempt", attempt+1)
		isNew = false
	}
	return nil, errors.Join(ErrOperationFailed, lastErr)
}

func (s *service) persist(ctx context.Context, model, existing *Page, isNew bool) ([]uuid.UUID, error) {
	// Clamp the requested position into the target scope before writing.
	target, err := s.repo.ListSiblings(ctx, model.SiteID, model.ParentID)
	if err != nil {
		return nil, err
	}
	target = exclude(target, model.ID)
	if model.SortOrder < 0 || model.SortOrder > len(target) {
		model.SortOrder = len(target)
	}

	if isNew {
		if _, err := s.repo.Create(ctx, model); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.repo.Update(ctx, model); err != nil {
			return nil, err
		}
	}

	changed, err := s.resequenceScope(ctx, model.SiteID, model.ParentID, model.ID, model.SortOrder)
	if err != nil {
		return nil, err
	}

	// A move across scopes leaves a gap in the old one.
	if existing != nil && !sameScope(existing, model) {
		closed, err := s.resequenceScope(ctx, existing.SiteID, existing.ParentID, uuid.Nil, -1)
		if err != nil {
			return nil, err
		}
		changed = append(changed, closed...)
	}
	if existing != nil && (!sameScope(existing, model) || existing.SortOrder != model.SortOrder) {
		changed = appendID(changed, model.ID)
	}
	return changed, nil
}

// resequenceScope rewrites one scope's arrangement so sort orders are exactly
// 0..n-1. When insertID is set it is placed at the requested position, any
// stale row it may still occupy in the list is dropped first. Returns the
// sibling ids whose position changed.
func (s *service) resequenceScope(ctx context.Context, siteID uuid.UUID, parentID *uuid.UUID, insertID uuid.UUID, position int) ([]uuid.UUID, error) {
	siblings, err := s.repo.ListSiblings(ctx, siteID, parentID)
	if err != nil {
		return nil, err
	}
	previous := make(map[uuid.UUID]int, len(siblings))
	expected := make([]uuid.UUID, 0, len(siblings))
	for _, sibling := range siblings {
		previous[sibling.ID] = sibling.SortOrder
		expected = append(expected, sibling.ID)
	}

	ordered := make([]uuid.UUID, 0, len(siblings)+1)
	for _, sibling := range siblings {
		if sibling.ID == insertID {
			continue
		}
		ordered = append(ordered, sibling.ID)
	}
	if insertID != uuid.Nil {
		if position < 0 || position > len(ordered) {
			position = len(ordered)
		}
		ordered = append(ordered[:position], append([]uuid.UUID{insertID}, ordered[position:]...)...)
	}

	if err := s.repo.ResequenceSiblings(ctx, siteID, parentID, expected, ordered); err != nil {
		return nil, err
	}

	changed := make([]uuid.UUID, 0)
	for order, id := range ordered {
		if id == insertID {
			continue
		}
		if prev, ok := previous[id]; !ok || prev != order {
			changed = append(changed, id)
		}
	}
	return changed, nil
}

func (s *service) normalizeSlug(value string) string {
	normalized, err := s.slugs.Normalize(strings.TrimSpace(value))
	if err != nil {
		return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", "-"))
	}
	return normalized
}

func sameScope(a, b *Page) bool {
	if a.SiteID != b.SiteID {
		return false
	}
	if a.ParentID == nil || b.ParentID == nil {
		return a.ParentID == nil && b.ParentID == nil
	}
	return *a.ParentID == *b.ParentID
}

func titleChanged(existing, model *Page) bool {
	if existing == nil {
		return true
	}
	if existing.Title != model.Title {
		return true
	}
	oldNav, newNav := "", ""
	if existing.NavigationTitle != nil {
		oldNav = *existing.NavigationTitle
	}
	if model.NavigationTitle != nil {
		newNav = *model.NavigationTitle
	}
	return oldNav != newNav
}

func exclude(siblings []*Page, id uuid.UUID) []*Page {
	out := siblings[:0]
	for _, sibling := range siblings {
		if sibling.ID != id {
			out = append(out, sibling)
		}
	}
	return out
}

func appendID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
