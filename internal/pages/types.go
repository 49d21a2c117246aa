package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/piranhacms/piranha-go/internal/blocks"
)

// Page is a hierarchical content item. Sibling order within one
// (site_id, parent_id) scope is a contiguous sequence starting at 0.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:pg"`

	ID              uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	SiteID          uuid.UUID      `bun:"site_id,notnull,type:uuid" json:"site_id"`
	TypeID          string         `bun:"type_id,notnull" json:"type_id"`
	ParentID        *uuid.UUID     `bun:"parent_id,type:uuid,nullzero" json:"parent_id,omitempty"`
	SortOrder       int            `bun:"sort_order,notnull" json:"sort_order"`
	OriginalPageID  *uuid.UUID     `bun:"original_page_id,type:uuid,nullzero" json:"original_page_id,omitempty"`
	Slug            string         `bun:"slug,notnull" json:"slug"`
	Title           string         `bun:"title,notnull" json:"title"`
	NavigationTitle *string        `bun:"navigation_title,nullzero" json:"navigation_title,omitempty"`
	IsHidden        bool           `bun:"is_hidden,notnull,default:false" json:"is_hidden"`
	Regions         map[string]any `bun:"regions,type:jsonb,nullzero" json:"regions,omitempty"`

	Blocks []*blocks.Block `bun:"-" json:"blocks,omitempty"`

	Published *time.Time `bun:"published,nullzero" json:"published,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsCopy reports whether the page mirrors another page's content.
func (p *Page) IsCopy() bool {
	return p != nil && p.OriginalPageID != nil
}

// Clone returns a copy safe to hand out of a repository. Blocks are shared,
// the trees are rebuilt per read anyway.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	clone := *p
	if p.ParentID != nil {
		id := *p.ParentID
		clone.ParentID = &id
	}
	if p.OriginalPageID != nil {
		id := *p.OriginalPageID
		clone.OriginalPageID = &id
	}
	if p.NavigationTitle != nil {
		title := *p.NavigationTitle
		clone.NavigationTitle = &title
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
	return &clone
}
