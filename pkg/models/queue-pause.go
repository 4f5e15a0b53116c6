package models

import (
	"time"

	"github.com/uptrace/bun"
)

// QueuePause marks a named job queue as paused. Presence of a row means the
// worker will not fetch pending jobs of that type.
type QueuePause struct {
	bun.BaseModel `bun:"table:queue_pauses,alias:qp" tstype:"-"`

	Name      string    `bun:",pk,nullzero" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
