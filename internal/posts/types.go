package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/blocks"
	"github.com/piranhacms/piranha-go/internal/taxonomy"
)

// Post is archive content under a blog page. Its category and tags are
// shared taxonomy rows scoped by the blog id.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:po"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	BlogID     uuid.UUID      `bun:"blog_id,notnull,type:uuid" json:"blog_id"`
	TypeID     string         `bun:"type_id,notnull" json:"type_id"`
	Slug       string         `bun:"slug,notnull" json:"slug"`
	Title      string         `bun:"title,notnull" json:"title"`
	Excerpt    *string        `bun:"excerpt,nullzero" json:"excerpt,omitempty"`
	CategoryID uuid.UUID      `bun:"category_id,type:uuid,nullzero" json:"category_id"`
	Regions    map[string]any `bun:"regions,type:jsonb,nullzero" json:"regions,omitempty"`

	Category *taxonomy.Taxonomy   `bun:"-" json:"category,omitempty"`
	Tags     []*taxonomy.Taxonomy `bun:"-" json:"tags,omitempty"`
	Blocks   []*blocks.Block      `bun:"-" json:"blocks,omitempty"`

	Published *time.Time `bun:"published,nullzero" json:"published,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Clone returns a copy safe to hand out of a repository. Taxonomies and
// blocks are reattached per read.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Excerpt != nil {
		excerpt := *p.Excerpt
		clone.Excerpt = &excerpt
	}
	if p.Published != nil {
		published := *p.Published
		clone.Published = &published
	}
	if p.Regions != nil {
		clone.Regions = make(map[string]any, len(p.Regions))
		for k, v := range p.Regions {
			clone.Regions[k] = v
		}
	}
	clone.Category = nil
	clone.Tags = nil
	clone.Blocks = nil
	return &clone
}
