package sites

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Content is the singleton, schema-backed content of one site and type,
// global settings, footer data, and the like. Exactly one row exists per
// (site_id, type_id).
type Content struct {
	bun.BaseModel `bun:"table:site_content,alias:sc"`

	ID      uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	SiteID  uuid.UUID      `bun:"site_id,notnull,type:uuid,unique:site_content_site_type" json:"site_id"`
	TypeID  string         `bun:"type_id,notnull,unique:site_content_site_type" json:"type_id"`
	Title   string         `bun:"title,nullzero" json:"title,omitempty"`
	Regions map[string]any `bun:"regions,type:jsonb,nullzero" json:"regions,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Regions != nil {
		clone.Regions = make(map[string]any, len(c.Regions))
		for k, v := range c.Regions {
			clone.Regions[k] = v
		}
	}
	return &clone
}
