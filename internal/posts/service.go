package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// BlogResolver checks that a post's blog archive page exists. Satisfied by
// the pages repository.
type BlogResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

// Service owns posts and the taxonomy side effects of saving and deleting
// them. Both operations end with a prune of the blog's taxonomy group so
// unreferenced categories and tags never outlive their last referencer.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*Post, error)
	ListForBlog(ctx context.Context, blogID uuid.UUID) ([]*Post, error)
	Save(ctx context.Context, model *Post) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type IDGenerator func() uuid.UUID

type service struct {
	repo     Repository
	schemas  *schema.Registry
	taxos    taxonomy.Service
	blocks   blocks.Service
	blogs    BlogResolver
	now      func() time.Time
	id       IDGenerator
	slugs    slug.Normalizer
	logger   interfaces.Logger
	pageSize int
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

// WithBlogResolver wires the blog existence check. Without it blog ids are
// taken at face value.
func WithBlogResolver(resolver BlogResolver) Option {
	return func(s *service) {
		s.blogs = resolver
	}
}

// WithArchivePageSize caps how many posts an archive listing returns. Zero
// means unbounded.
func WithArchivePageSize(size int) Option {
	return func(s *service) {
		if size >= 0 {
			s.pageSize = size
		}
	}
}

// NewService constructs the post service. blockService may be nil when no
// post type uses blocks.
func NewService(repo Repository, schemas *schema.Registry, taxos taxonomy.Service, blockService blocks.Service, opts ...Option) Service {
	svc := &service{
		repo:    repo,
		schemas: schemas,
		taxos:   taxos,
		blocks:  blockService,
		now:     func() time.Time { return time.Now().UTC() },
		id:      uuid.New,
		slugs:   slug.Default(),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, post)
}

func (s *service) GetBySlug(ctx context.Context, blogID uuid.UUID, value string) (*Post, error) {
	post, err := s.repo.GetBySlug(ctx, blogID, value)
	if err != nil {
		return nil, err
	}
	return s.attach(ctx, post)
}

func (s *service) ListForBlog(ctx context.Context, blogID uuid.UUID) ([]*Post, error) {
	return s.repo.ListForBlog(ctx, blogID, s.pageSize)
}

// Save persists the post after reconciling its category and tags against
// the blog's shared taxonomy rows. The invalidation set is the post plus
// its blog archive page.
func (s *service) Save(ctx context.Context, model *Post) ([]uuid.UUID, error) {
	if model == nil {
		return nil, errors.New("posts: model is required")
	}
	if model.BlogID == uuid.Nil {
		return nil, ErrBlogRequired
	}
	if strings.TrimSpace(model.Title) == "" {
		return nil, ErrTitleRequired
	}
	postType, err := s.schemas.GetKind(model.TypeID, schema.KindPost)
	if err != nil {
		return nil, err
	}
	if s.blogs != nil {
		if _, err := s.blogs.GetByID(ctx, model.BlogID); err != nil {
			var notFound *pages.NotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrUnknownBlog
			}
			return nil, err
		}
	}
	if model.Category == nil {
		return nil, ErrCategoryRequired
	}

	existing, err := s.load(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if existing == nil {
		if model.ID == uuid.Nil {
			model.ID = s.id()
		}
		model.CreatedAt = now
	} else {
		model.CreatedAt = existing.CreatedAt
	}
	model.UpdatedAt = now
	if strings.TrimSpace(model.Slug) == "" {
		if normalized, err := s.slugs.Normalize(model.Title); err == nil {
			model.Slug = normalized
		}
	}

	categoryID, err := s.taxos.Resolve(ctx, model.BlogID, model.Category, taxonomy.KindCategory)
	if err != nil {
		return nil, err
	}
	model.CategoryID = categoryID

	refs := []uuid.UUID{categoryID}
	for _, tag := range model.Tags {
		tagID, err := s.taxos.Resolve(ctx, model.BlogID, tag, taxonomy.KindTag)
		if err != nil {
			return nil, s.discardSave(ctx, model, existing == nil, false, err)
		}
		refs = append(refs, tagID)
	}

	// The post row goes first: references must never outlive a row that
	// failed to materialize.
	if existing == nil {
		if _, err := s.repo.Create(ctx, model); err != nil {
			return nil, s.discardSave(ctx, model, true, false, err)
		}
	} else {
		if _, err := s.repo.Update(ctx, model); err != nil {
			return nil, s.discardSave(ctx, model, false, false, err)
		}
	}

	if err := s.taxos.ReplaceReferences(ctx, model.ID, refs); err != nil {
		return nil, s.discardSave(ctx, model, existing == nil, true, err)
	}

	if postType.UseBlocks && s.blocks != nil {
		if err := s.blocks.Replace(ctx, model.ID, model.Blocks); err != nil {
			return nil, s.discardSave(ctx, model, existing == nil, true, err)
		}
	}

	// References are committed above, so rows the retag orphaned can go now.
	if err := s.taxos.PruneUnused(ctx, model.BlogID); err != nil {
		return nil, err
	}

	s.logger.Debug("posts.save", "post_id", model.ID.String(), "blog_id", model.BlogID.String())
	return []uuid.UUID{model.ID, model.BlogID}, nil
}

// discardSave unwinds a failed save. A new post's row, references, and
// blocks are removed again; in every case freshly created taxonomy rows
// nothing references anymore are pruned. The original cause is returned,
// cleanup failures are only logged.
func (s *service) discardSave(ctx context.Context, model *Post, isNew, rowWritten bool, cause error) error {
	if isNew && rowWritten {
		if err := s.taxos.ClearReferences(ctx, model.ID); err != nil {
			s.logger.Error("posts.save_cleanup", "post_id", model.ID.String(), "step", "clear_references", "error", err.Error())
		}
		if s.blocks != nil {
			if err := s.blocks.DeleteForContent(ctx, model.ID); err != nil {
				s.logger.Error("posts.save_cleanup", "post_id", model.ID.String(), "step", "delete_blocks", "error", err.Error())
			}
		}
		if err := s.repo.Delete(ctx, model.ID); err != nil {
			s.logger.Error("posts.save_cleanup", "post_id", model.ID.String(), "step", "delete_row", "error", err.Error())
		}
	}
	if err := s.taxos.PruneUnused(ctx, model.BlogID); err != nil {
		s.logger.Error("posts.save_cleanup", "blog_id", model.BlogID.String(), "step", "prune", "error", err.Error())
	}
	return cause
}

// Delete removes the post, its owned blocks, and any taxonomy rows it was
// the last referencer of.
func (s *service) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.taxos.ClearReferences(ctx, id); err != nil {
		return nil, err
	}
	if s.blocks != nil {
		if err := s.blocks.DeleteForContent(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := s.taxos.PruneUnused(ctx, existing.BlogID); err != nil {
		return nil, err
	}

	s.logger.Debug("posts.delete", "post_id", id.String(), "blog_id", existing.BlogID.String())
	return []uuid.UUID{id, existing.BlogID}, nil
}

func (s *service) attach(ctx context.Context, post *Post) (*Post, error) {
	refs, err := s.taxos.References(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		switch {
		case ref.ID == post.CategoryID:
			post.Category = ref
		case ref.Type == taxonomy.KindTag:
			post.Tags = append(post.Tags, ref)
		}
	}
	if s.blocks != nil {
		tree, err := s.blocks.Load(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		post.Blocks = tree
	}
	return post, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*Post, error) {
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
