package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	//tygo:emit export type LibraryType = typeof LibraryTypeExternal | typeof LibraryTypeUpload;
	LibraryTypeExternal = "external"
	LibraryTypeUpload   = "upload"
)

type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:l" tstype:"-"`

	ID                int                 `bun:",pk,nullzero" json:"id"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	OwnerID           int                 `bun:",nullzero" json:"owner_id"`
	Name              string              `bun:",nullzero" json:"name"`
	Type              string              `bun:",nullzero" json:"type" tstype:"LibraryType"`
	IsVisible         bool                `json:"is_visible"`
	ImportPaths       []*LibraryPath      `bun:"rel:has-many" json:"import_paths,omitempty" tstype:"LibraryPath[]"`
	ExclusionPatterns []*LibraryExclusion `bun:"rel:has-many" json:"exclusion_patterns,omitempty" tstype:"LibraryExclusion[]"`
	RefreshedAt       *time.Time          `json:"refreshed_at,omitempty"`
	DeletedAt         *time.Time          `json:"deleted_at,omitempty"`
}

// ImportPathStrings flattens the import path rows into their filepaths,
// preserving row order.
func (l *Library) ImportPathStrings() []string {
	paths := make([]string, 0, len(l.ImportPaths))
	for _, p := range l.ImportPaths {
		paths = append(paths, p.Filepath)
	}
	return paths
}

// ExclusionPatternStrings flattens the exclusion rows into their glob
// patterns, preserving row order.
func (l *Library) ExclusionPatternStrings() []string {
	patterns := make([]string, 0, len(l.ExclusionPatterns))
	for _, p := range l.ExclusionPatterns {
		patterns = append(patterns, p.Pattern)
	}
	return patterns
}
