package cachecmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/internal/commands"
	"github.com/piranhacms/piranha-go/internal/logging"
	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

const invalidateContentMessageType = "piranha.cache.invalidate"

// InvalidateContentCommand fans the structural-change signal of a Save,
// Move, or Delete out to the external cache. ContentIDs is the invalidation
// set those operations return.
type InvalidateContentCommand struct {
	ContentIDs []uuid.UUID `json:"content_ids"`
}

// Type implements command.Message.
func (InvalidateContentCommand) Type() string { return invalidateContentMessageType }

// Validate ensures the command carries usable identifiers.
func (m InvalidateContentCommand) Validate() error {
	errs := validation.Errors{}
	if len(m.ContentIDs) == 0 {
		errs["content_ids"] = validation.NewError("piranha.cache.invalidate.ids_required", "content_ids must not be empty")
	}
	for _, id := range m.ContentIDs {
		if id == uuid.Nil {
			errs["content_ids"] = validation.NewError("piranha.cache.invalidate.ids_invalid", "content_ids must not contain nil identifiers")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// InvalidateContentHandler forwards invalidation sets to the wired cache.
type InvalidateContentHandler struct {
	inner *commands.Handler[InvalidateContentCommand]
}

// NewInvalidateContentHandler constructs a handler around the cache
// invalidator collaborator.
func NewInvalidateContentHandler(invalidator interfaces.CacheInvalidator, logger interfaces.Logger, opts ...commands.HandlerOption[InvalidateContentCommand]) *InvalidateContentHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg InvalidateContentCommand) error {
		if invalidator == nil {
			return nil
		}
		return invalidator.Invalidate(ctx, msg.ContentIDs)
	}

	handlerOpts := []commands.HandlerOption[InvalidateContentCommand]{
		commands.WithLogger[InvalidateContentCommand](baseLogger),
		commands.WithOperation[InvalidateContentCommand]("cache.invalidate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &InvalidateContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander[InvalidateContentCommand].
func (h *InvalidateContentHandler) Execute(ctx context.Context, msg InvalidateContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
