package blocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// Service loads and replaces whole block trees for content items.
type Service interface {
	Load(ctx context.Context, contentID uuid.UUID) ([]*Block, error)
	Replace(ctx context.Context, contentID uuid.UUID, tree []*Block) error
	DeleteForContent(ctx context.Context, contentID uuid.UUID) error
}

type IDGenerator func() uuid.UUID

type service struct {
	repo      Repository
	clock     func() time.Time
	generator IDGenerator
	logger    interfaces.Logger
	reusable  bool
}

type Option func(*service)

func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) Option {
	return func(s *service) {
		if generator != nil {
			s.generator = generator
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

// WithReusableBlocks toggles shared reusable blocks. When disabled every
// block is treated as owned by its content item, reuse flags are ignored.
func WithReusableBlocks(enabled bool) Option {
	return func(s *service) {
		s.reusable = enabled
	}
}

func NewService(repo Repository, opts ...Option) Service {
	s := &service{
		repo:      repo,
		clock:     time.Now,
		generator: uuid.New,
		logger:    logging.NoOp(),
		reusable:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Load(ctx context.Context, contentID uuid.UUID) ([]*Block, error) {
	rows, err := s.repo.ListForContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return Rebuild(rows)
}

func (s *service) Replace(ctx context.Context, contentID uuid.UUID, tree []*Block) error {
	if contentID == uuid.Nil {
		return ErrContentRequired
	}
	s.stampIDs(tree)
	if !s.reusable {
		clearReuse(tree)
	}
	rows, refs := Flatten(contentID, tree)
	now := s.clock()
	for _, row := range rows {
		row.CreatedAt = now
		row.UpdatedAt = now
	}
	for _, ref := range refs {
		if ref.ID == uuid.Nil {
			ref.ID = s.generator()
		}
		ref.CreatedAt = now
	}
	s.logger.Debug("replacing blocks", "content_id", contentID, "rows", len(rows), "shared", len(refs))
	return s.repo.ReplaceForContent(ctx, contentID, rows, refs)
}

func (s *service) DeleteForContent(ctx context.Context, contentID uuid.UUID) error {
	if contentID == uuid.Nil {
		return ErrContentRequired
	}
	return s.repo.DeleteForContent(ctx, contentID)
}

func (s *service) stampIDs(tree []*Block) {
	for _, node := range tree {
		if node == nil {
			continue
		}
		if node.ID == uuid.Nil {
			node.ID = s.generator()
		}
		s.stampIDs(node.Items)
	}
}

func clearReuse(tree []*Block) {
	for _, node := range tree {
		if node == nil {
			continue
		}
		node.IsReusable = false
		clearReuse(node.Items)
	}
}
