package blocks

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Block is an in-memory node of a content item's block tree. Group blocks
// carry their children in Items; leaf blocks leave it empty.
type Block struct {
	ID         uuid.UUID      `json:"id"`
	Type       string         `json:"type"`
	IsReusable bool           `json:"is_reusable"`
	Fields     map[string]any `json:"fields,omitempty"`
	Items      []*Block       `json:"items,omitempty"`
}

// Clone returns a deep copy of the node and its descendants.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	clone := &Block{
		ID:         b.ID,
		Type:       b.Type,
		IsReusable: b.IsReusable,
	}
	if b.Fields != nil {
		clone.Fields = make(map[string]any, len(b.Fields))
		for k, v := range b.Fields {
			clone.Fields[k] = v
		}
	}
	if len(b.Items) > 0 {
		clone.Items = make([]*Block, len(b.Items))
		for i, item := range b.Items {
			clone.Items[i] = item.Clone()
		}
	}
	return clone
}

// Row is the persisted, flat form of a block. Rows owned by one content item
// are read back ordered by sort_order, which guarantees parents precede
// children. Reusable rows and their descendants carry no content_id at all;
// a Reference row per displaying content item positions them in its tree.
type Row struct {
	bun.BaseModel `bun:"table:blocks,alias:blk"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	ContentID  *uuid.UUID     `bun:"content_id,type:uuid,nullzero" json:"content_id,omitempty"`
	ParentID   *uuid.UUID     `bun:"parent_id,type:uuid,nullzero" json:"parent_id,omitempty"`
	Type       string         `bun:"type,notnull" json:"type"`
	IsReusable bool           `bun:"is_reusable,notnull,default:false" json:"is_reusable"`
	SortOrder  int            `bun:"sort_order,notnull" json:"sort_order"`
	Fields     map[string]any `bun:"fields,type:jsonb,nullzero" json:"fields,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Reference links a content item to a reusable block it displays. The block
// row itself has no owner; parent and sort order here place the shared block
// inside this content item's tree.
type Reference struct {
	bun.BaseModel `bun:"table:block_references,alias:blkr"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ContentID uuid.UUID  `bun:"content_id,notnull,type:uuid,unique:block_references_content_block" json:"content_id"`
	BlockID   uuid.UUID  `bun:"block_id,notnull,type:uuid,unique:block_references_content_block" json:"block_id"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid,nullzero" json:"parent_id,omitempty"`
	SortOrder int        `bun:"sort_order,notnull" json:"sort_order"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Clone returns a copy of the reference.
func (ref *Reference) Clone() *Reference {
	if ref == nil {
		return nil
	}
	clone := *ref
	if ref.ParentID != nil {
		id := *ref.ParentID
		clone.ParentID = &id
	}
	return &clone
}

// Clone returns a shallow copy with its own Fields map.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	clone := *r
	if r.ContentID != nil {
		id := *r.ContentID
		clone.ContentID = &id
	}
	if r.ParentID != nil {
		id := *r.ParentID
		clone.ParentID = &id
	}
	if r.Fields != nil {
		clone.Fields = make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			clone.Fields[k] = v
		}
	}
	return &clone
}
