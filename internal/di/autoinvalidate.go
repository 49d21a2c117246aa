package di

import (
	"context"

	"github.com/google/uuid"

	cachecmd "github.com/piranhacms/piranha-go/internal/commands/cache"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

// invalidatingPageService dispatches the cache invalidation command after
// every successful structural write. Dispatch failures are logged, never
// surfaced: the write already committed.
type invalidatingPageService struct {
	pages.Service
	handler *cachecmd.InvalidateContentHandler
	log     interfaces.Logger
}

func (s *invalidatingPageService) Save(ctx context.Context, model *pages.Page) ([]uuid.UUID, error) {
	changed, err := s.Service.Save(ctx, model)
	if err != nil {
		return changed, err
	}
	s.dispatch(ctx, changed)
	return changed, nil
}

func (s *invalidatingPageService) Move(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, sortOrder int) ([]uuid.UUID, error) {
	changed, err := s.Service.Move(ctx, id, parentID, sortOrder)
	if err != nil {
		return changed, err
	}
	s.dispatch(ctx, changed)
	return changed, nil
}

func (s *invalidatingPageService) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	changed, err := s.Service.Delete(ctx, id)
	if err != nil {
		return changed, err
	}
	s.dispatch(ctx, changed)
	return changed, nil
}

func (s *invalidatingPageService) dispatch(ctx context.Context, changed []uuid.UUID) {
	dispatchInvalidation(ctx, s.handler, s.log, changed)
}

type invalidatingPostService struct {
	posts.Service
	handler *cachecmd.InvalidateContentHandler
	log     interfaces.Logger
}

func (s *invalidatingPostService) Save(ctx context.Context, model *posts.Post) ([]uuid.UUID, error) {
	changed, err := s.Service.Save(ctx, model)
	if err != nil {
		return changed, err
	}
	dispatchInvalidation(ctx, s.handler, s.log, changed)
	return changed, nil
}

func (s *invalidatingPostService) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	changed, err := s.Service.Delete(ctx, id)
	if err != nil {
		return changed, err
	}
	dispatchInvalidation(ctx, s.handler, s.log, changed)
	return changed, nil
}

func dispatchInvalidation(ctx context.Context, handler *cachecmd.InvalidateContentHandler, log interfaces.Logger, changed []uuid.UUID) {
	if len(changed) == 0 {
		return
	}
	if err := handler.Execute(ctx, cachecmd.InvalidateContentCommand{ContentIDs: changed}); err != nil {
		if log != nil {
			log.Error("cache invalidation dispatch failed", "error", err, "content_ids", len(changed))
		}
	}
}
