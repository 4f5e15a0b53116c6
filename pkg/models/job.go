package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	//tygo:emit export type JobStatus = typeof JobStatusPending | typeof JobStatusInProgress | typeof JobStatusCompleted | typeof JobStatusFailed;
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeLibraryScan        = "library_scan"
	JobTypeLibraryScanAsset   = "library_scan_asset"
	JobTypeMarkAssetOffline   = "library_mark_asset_offline"
	JobTypeLibraryDelete      = "library_delete"
	JobTypeQueueCleanup       = "library_queue_cleanup"
	JobTypeRemoveOffline      = "library_remove_offline"
	JobTypeMetadataExtraction = "metadata_extraction"
	JobTypeVideoConversion    = "video_conversion"
	JobTypeAssetDeletion      = "asset_deletion"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j" tstype:"-"`

	ID         int         `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status" tstype:"JobStatus"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	Progress   int         `json:"progress"`
	Attempts   int         `json:"attempts"`
	ProcessID  *string     `json:"process_id,omitempty"`
	LibraryID  *int        `json:"library_id,omitempty"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeLibraryScan:
		job.DataParsed = &JobLibraryScanData{}
	case JobTypeLibraryScanAsset:
		job.DataParsed = &JobScanAssetData{}
	case JobTypeMarkAssetOffline:
		job.DataParsed = &JobMarkAssetOfflineData{}
	case JobTypeLibraryDelete:
		job.DataParsed = &JobLibraryDeleteData{}
	case JobTypeQueueCleanup:
		job.DataParsed = &JobQueueCleanupData{}
	case JobTypeRemoveOffline:
		job.DataParsed = &JobRemoveOfflineData{}
	case JobTypeMetadataExtraction:
		job.DataParsed = &JobMetadataExtractionData{}
	case JobTypeVideoConversion:
		job.DataParsed = &JobVideoConversionData{}
	case JobTypeAssetDeletion:
		job.DataParsed = &JobAssetDeletionData{}
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// JobLibraryScanData requests a full scan of one external library.
type JobLibraryScanData struct {
	LibraryID            int  `json:"library_id"`
	RefreshModifiedFiles bool `json:"refresh_modified_files"`
	RefreshAllFiles      bool `json:"refresh_all_files"`
}

// JobScanAssetData requests an import or refresh of a single file path.
type JobScanAssetData struct {
	LibraryID int    `json:"library_id"`
	OwnerID   int    `json:"owner_id"`
	AssetPath string `json:"asset_path"`
	Force     bool   `json:"force"`
}

// JobMarkAssetOfflineData flags the asset at a path as offline without
// deleting its record.
type JobMarkAssetOfflineData struct {
	LibraryID int    `json:"library_id"`
	AssetPath string `json:"asset_path"`
}

type JobLibraryDeleteData struct {
	LibraryID int `json:"library_id"`
}

type JobQueueCleanupData struct{}

type JobRemoveOfflineData struct {
	LibraryID int `json:"library_id"`
}

type JobMetadataExtractionData struct {
	AssetID int `json:"asset_id"`
}

type JobVideoConversionData struct {
	AssetID int `json:"asset_id"`
}

// JobAssetDeletionData removes one asset record. FromExternalLibrary marks
// jobs produced by library deletion or offline removal so the handler never
// deletes a non-owned upload by mistake.
type JobAssetDeletionData struct {
	AssetID             int  `json:"asset_id"`
	FromExternalLibrary bool `json:"from_external_library"`
}
