package piranha

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/pages"
	"github.com/piranhacms/piranha-go/internal/posts"
	"github.com/piranhacms/piranha-go/internal/sites"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
)

// Models returns the bun models the engine persists, in creation order.
func Models() []any {
	return []any{
		(*pages.Page)(nil),
		(*posts.Post)(nil),
		(*blocks.Row)(nil),
		(*blocks.Reference)(nil),
		(*taxonomy.Taxonomy)(nil),
		(*taxonomy.Reference)(nil),
		(*sites.Content)(nil),
	}
}

// CreateTables creates the engine tables on the provided database. Embedded
// hosts with their own migration tooling can use Models instead.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return nil
}
