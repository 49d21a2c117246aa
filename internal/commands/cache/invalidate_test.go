package cachecmd

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/piranhacms/piranha-go/pkg/interfaces"
)

func TestInvalidateForwardsIDsToCache(t *testing.T) {
	var received []uuid.UUID
	invalidator := interfaces.CacheInvalidatorFunc(func(_ context.Context, ids []uuid.UUID) error {
		received = ids
		return nil
	})
	h := NewInvalidateContentHandler(invalidator, nil)

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	if err := h.Execute(context.Background(), InvalidateContentCommand{ContentIDs: ids}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(received) != 2 || received[0] != ids[0] || received[1] != ids[1] {
		t.Fatalf("cache did not receive the invalidation set: %v", received)
	}
}

func TestInvalidateRejectsEmptyAndNilIDs(t *testing.T) {
	h := NewInvalidateContentHandler(nil, nil)

	err := h.Execute(context.Background(), InvalidateContentCommand{})
	if err == nil || !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty set, got %v", err)
	}
	err = h.Execute(context.Background(), InvalidateContentCommand{ContentIDs: []uuid.UUID{uuid.Nil}})
	if err == nil || !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for nil id, got %v", err)
	}
}
