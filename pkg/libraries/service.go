package libraries

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveLibraryOptions struct {
	ID *int
	// IncludeDeleted also matches soft-deleted libraries. The deletion
	// handler needs this; everything user-facing does not.
	IncludeDeleted bool
}

type ListLibrariesOptions struct {
	Limit          *int
	Offset         *int
	OwnerID        *int
	Type           *string
	IncludeDeleted bool
	OnlyDeleted    bool

	includeTotal bool
}

type UpdateLibraryOptions struct {
	Columns                 []string
	UpdateImportPaths       bool
	UpdateExclusionPatterns bool
}

type Statistics struct {
	Photos int `json:"photos"`
	Videos int `json:"videos"`
	Total  int `json:"total"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLibrary(ctx context.Context, library *models.Library) error {
	if library.Type != models.LibraryTypeExternal && library.Type != models.LibraryTypeUpload {
		return errcodes.ValidationError("Library type must be external or upload")
	}
	if library.Type == models.LibraryTypeUpload && (len(library.ImportPaths) > 0 || len(library.ExclusionPatterns) > 0) {
		return errcodes.ValidationError("Upload libraries cannot have import paths or exclusion patterns")
	}

	now := time.Now()
	if library.CreatedAt.IsZero() {
		library.CreatedAt = now
	}
	library.UpdatedAt = library.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(library).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		for _, path := range library.ImportPaths {
			path.LibraryID = library.ID
			path.CreatedAt = library.CreatedAt
		}

		if len(library.ImportPaths) > 0 {
			_, err := tx.
				NewInsert().
				Model(&library.ImportPaths).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		for _, pattern := range library.ExclusionPatterns {
			pattern.LibraryID = library.ID
			pattern.CreatedAt = library.CreatedAt
		}

		if len(library.ExclusionPatterns) > 0 {
			_, err := tx.
				NewInsert().
				Model(&library.ExclusionPatterns).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveLibrary(ctx context.Context, opts RetrieveLibraryOptions) (*models.Library, error) {
	library := &models.Library{}

	q := svc.db.
		NewSelect().
		Model(library).
		Relation("ImportPaths", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("id ASC")
		}).
		Relation("ExclusionPatterns", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("id ASC")
		})

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}
	if !opts.IncludeDeleted {
		q = q.Where("l.deleted_at IS NULL")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Library")
		}
		return nil, errors.WithStack(err)
	}

	return library, nil
}

func (svc *Service) ListLibraries(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, error) {
	l, _, err := svc.listLibrariesWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	opts.includeTotal = true
	return svc.listLibrariesWithTotal(ctx, opts)
}

func (svc *Service) listLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	libraries := []*models.Library{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&libraries).
		Relation("ImportPaths", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("id ASC")
		}).
		Relation("ExclusionPatterns", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("id ASC")
		}).
		Order("l.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.OwnerID != nil {
		q = q.Where("l.owner_id = ?", *opts.OwnerID)
	}
	if opts.Type != nil {
		q = q.Where("l.type = ?", *opts.Type)
	}
	if opts.OnlyDeleted {
		q = q.Where("l.deleted_at IS NOT NULL")
	} else if !opts.IncludeDeleted {
		q = q.Where("l.deleted_at IS NULL")
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return libraries, total, nil
}

func (svc *Service) UpdateLibrary(ctx context.Context, library *models.Library, opts UpdateLibraryOptions) error {
	if len(opts.Columns) == 0 && !opts.UpdateImportPaths && !opts.UpdateExclusionPatterns {
		return nil
	}

	if library.Type == models.LibraryTypeUpload && (opts.UpdateImportPaths || opts.UpdateExclusionPatterns) {
		return errcodes.ValidationError("Upload libraries cannot have import paths or exclusion patterns")
	}

	now := time.Now()
	library.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewUpdate().
			Model(library).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Library")
			}
			return errors.WithStack(err)
		}

		if opts.UpdateImportPaths {
			_, err := tx.
				NewDelete().
				Model((*models.LibraryPath)(nil)).
				Where("library_id = ?", library.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			for _, path := range library.ImportPaths {
				path.ID = 0
				path.LibraryID = library.ID
				path.CreatedAt = now
			}

			if len(library.ImportPaths) > 0 {
				_, err := tx.
					NewInsert().
					Model(&library.ImportPaths).
					Returning("*").
					Exec(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
			}
		}

		if opts.UpdateExclusionPatterns {
			_, err := tx.
				NewDelete().
				Model((*models.LibraryExclusion)(nil)).
				Where("library_id = ?", library.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			for _, pattern := range library.ExclusionPatterns {
				pattern.ID = 0
				pattern.LibraryID = library.ID
				pattern.CreatedAt = now
			}

			if len(library.ExclusionPatterns) > 0 {
				_, err := tx.
					NewInsert().
					Model(&library.ExclusionPatterns).
					Returning("*").
					Exec(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// SoftDeleteLibrary marks a library for deletion. The row survives until the
// deletion job has drained every owned asset. Deleting the owner's last
// upload library is rejected.
func (svc *Service) SoftDeleteLibrary(ctx context.Context, library *models.Library) error {
	if library.DeletedAt != nil {
		return nil
	}

	if library.Type == models.LibraryTypeUpload {
		remaining, err := svc.db.
			NewSelect().
			Model((*models.Library)(nil)).
			Where("owner_id = ?", library.OwnerID).
			Where("type = ?", models.LibraryTypeUpload).
			Where("id != ?", library.ID).
			Where("deleted_at IS NULL").
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if remaining == 0 {
			return errcodes.ValidationError("Cannot delete the last upload library")
		}
	}

	now := time.Now()
	library.DeletedAt = &now
	return svc.UpdateLibrary(ctx, library, UpdateLibraryOptions{Columns: []string{"deleted_at"}})
}

// HardDeleteLibrary removes the library row together with its import paths
// and exclusion patterns. Callers must have confirmed the library owns no
// assets.
func (svc *Service) HardDeleteLibrary(ctx context.Context, libraryID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewDelete().
			Model((*models.LibraryPath)(nil)).
			Where("library_id = ?", libraryID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model((*models.LibraryExclusion)(nil)).
			Where("library_id = ?", libraryID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.
			NewDelete().
			Model((*models.Library)(nil)).
			Where("id = ?", libraryID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveStatistics(ctx context.Context, libraryID int) (*Statistics, error) {
	stats := &Statistics{}

	err := svc.db.
		NewSelect().
		Model((*models.Asset)(nil)).
		ColumnExpr("count(*) FILTER (WHERE a.type = ?) AS photos", models.AssetTypeImage).
		ColumnExpr("count(*) FILTER (WHERE a.type = ?) AS videos", models.AssetTypeVideo).
		ColumnExpr("count(*) AS total").
		Where("a.library_id = ?", libraryID).
		Scan(ctx, &stats.Photos, &stats.Videos, &stats.Total)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}

func (svc *Service) CountByOwner(ctx context.Context, ownerID int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Library)(nil)).
		Where("owner_id = ?", ownerID).
		Where("deleted_at IS NULL").
		Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return count, nil
}

// UpdateRefreshedAt stamps the library after a completed scan.
func (svc *Service) UpdateRefreshedAt(ctx context.Context, libraryID int) error {
	_, err := svc.db.
		NewUpdate().
		Model((*models.Library)(nil)).
		Set("refreshed_at = CURRENT_TIMESTAMP").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", libraryID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
