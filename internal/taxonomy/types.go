package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind distinguishes categories from tags. Uniqueness and lookups are always
// scoped by kind: a category and a tag may share a slug within one group.
type Kind string

const (
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
)

// Taxonomy is a shared, deduplicated term referenced by many content items
// within a group. Rows are created lazily the first time content references
// an unresolved title or slug, and deleted when the last reference goes
// away. The id is stable once created.
type Taxonomy struct {
	bun.BaseModel `bun:"table:taxonomies,alias:tx"`

	ID        uuid.UUID `bun:",pk,type:uuid"            json:"id"`
	GroupID   uuid.UUID `bun:"group_id,notnull,type:uuid,unique:taxonomies_group_type_slug" json:"group_id"`
	Type      Kind      `bun:"type,notnull,unique:taxonomies_group_type_slug" json:"type"`
	Title     string    `bun:"title,notnull"            json:"title"`
	Slug      string    `bun:"slug,notnull,unique:taxonomies_group_type_slug" json:"slug"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Reference links a content item to a taxonomy row. The pair is the natural
// key; prune walks this table to find rows with no surviving referencer.
type Reference struct {
	bun.BaseModel `bun:"table:taxonomy_references,alias:txr"`

	ID         uuid.UUID `bun:",pk,type:uuid"                 json:"id"`
	ContentID  uuid.UUID `bun:"content_id,notnull,type:uuid"  json:"content_id"`
	TaxonomyID uuid.UUID `bun:"taxonomy_id,notnull,type:uuid" json:"taxonomy_id"`
}
