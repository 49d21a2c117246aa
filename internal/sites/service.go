package sites

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/factory"
	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/internal/schema"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// Service owns the singleton content of each site. CreateContent hands out a
// zero-valued dynamic instance for the requested site type so callers always
// start from a schema-shaped model.
type Service interface {
	GetContent(ctx context.Context, siteID uuid.UUID, typeID string) (*Content, error)
	CreateContent(ctx context.Context, typeID string) (*factory.DynamicContent, error)
	SaveContent(ctx context.Context, model *Content) error
	DeleteContent(ctx context.Context, siteID uuid.UUID, typeID string) error
}

type IDGenerator func() uuid.UUID

type service struct {
	repo    Repository
	schemas *schema.Registry
	factory *factory.Factory
	now     func() time.Time
	id      IDGenerator
	logger  interfaces.Logger
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

func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo Repository, schemas *schema.Registry, contentFactory *factory.Factory, opts ...Option) Service {
	svc := &service{
		repo:    repo,
		schemas: schemas,
		factory: contentFactory,
		now:     func() time.Time { return time.Now().UTC() },
		id:      uuid.New,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func (s *service) GetContent(ctx context.Context, siteID uuid.UUID, typeID string) (*Content, error) {
	if siteID == uuid.Nil {
		return nil, ErrSiteRequired
	}
	if _, err := s.schemas.GetKind(typeID, schema.KindSite); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, siteID, typeID)
}

func (s *service) CreateContent(_ context.Context, typeID string) (*factory.DynamicContent, error) {
	if _, err := s.schemas.GetKind(typeID, schema.KindSite); err != nil {
		return nil, err
	}
	return s.factory.CreateDynamic(typeID)
}

func (s *service) SaveContent(ctx context.Context, model *Content) error {
	if model == nil {
		return errors.New("sites: model is required")
	}
	if model.SiteID == uuid.Nil {
		return ErrSiteRequired
	}
	if _, err := s.schemas.GetKind(model.TypeID, schema.KindSite); err != nil {
		return err
	}
	if strings.TrimSpace(model.Title) == "" {
		model.Title = model.TypeID
	}
	now := s.now()
	if model.ID == uuid.Nil {
		model.ID = s.id()
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	if _, err := s.repo.Upsert(ctx, model); err != nil {
		return err
	}
	s.logger.Debug("sites.save_content", "site_id", model.SiteID.String(), "type_id", model.TypeID)
	return nil
}

func (s *service) DeleteContent(ctx context.Context, siteID uuid.UUID, typeID string) error {
	if siteID == uuid.Nil {
		return ErrSiteRequired
	}
	return s.repo.Delete(ctx, siteID, typeID)
}
