package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	//tygo:emit export type AssetType = typeof AssetTypeImage | typeof AssetTypeVideo;
	AssetTypeImage = "image"
	AssetTypeVideo = "video"
)

type Asset struct {
	bun.BaseModel `bun:"table:assets,alias:a" tstype:"-"`

	ID               int        `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	OwnerID          int        `bun:",nullzero" json:"owner_id"`
	LibraryID        int        `bun:",nullzero" json:"library_id"`
	OriginalPath     string     `bun:",nullzero" json:"original_path"`
	Checksum         string     `bun:",nullzero" json:"checksum"`
	Type             string     `bun:",nullzero" json:"type" tstype:"AssetType"`
	FileCreatedAt    time.Time  `json:"file_created_at"`
	FileModifiedAt   time.Time  `json:"file_modified_at"`
	LocalDateTime    time.Time  `json:"local_date_time"`
	IsOffline        bool       `json:"is_offline"`
	IsReadOnly       bool       `json:"is_read_only"`
	IsExternal       bool       `json:"is_external"`
	IsVisible        bool       `json:"is_visible"`
	SidecarPath      *string    `json:"sidecar_path,omitempty"`
	LivePhotoVideoID *int       `json:"live_photo_video_id,omitempty"`
	MetadataAt       *time.Time `json:"metadata_at,omitempty"`
}
