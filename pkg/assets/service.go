package assets

import (
	"context"
	"database/sql"
	"time"

	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAssetOptions struct {
	ID           *int
	LibraryID    *int
	OriginalPath *string
}

type ListAssetsOptions struct {
	Limit     *int
	Offset    *int
	LibraryID *int
	OwnerID   *int
	IsOffline *bool
	// WithoutMetadata selects assets that have never had metadata extracted.
	WithoutMetadata bool
	WithSidecar     bool

	includeTotal bool
}

type UpdateAssetOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateAsset(ctx context.Context, asset *models.Asset) error {
	now := time.Now()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = asset.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(asset).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveAsset(ctx context.Context, opts RetrieveAssetOptions) (*models.Asset, error) {
	asset := &models.Asset{}

	q := svc.db.
		NewSelect().
		Model(asset)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.LibraryID != nil {
		q = q.Where("a.library_id = ?", *opts.LibraryID)
	}
	if opts.OriginalPath != nil {
		q = q.Where("a.original_path = ?", *opts.OriginalPath)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Asset")
		}
		return nil, errors.WithStack(err)
	}

	return asset, nil
}

func (svc *Service) RetrieveAssetsByIDs(ctx context.Context, ids []int) ([]*models.Asset, error) {
	assets := []*models.Asset{}
	if len(ids) == 0 {
		return assets, nil
	}

	err := svc.db.
		NewSelect().
		Model(&assets).
		Where("a.id IN (?)", bun.In(ids)).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return assets, nil
}

func (svc *Service) ListAssets(ctx context.Context, opts ListAssetsOptions) ([]*models.Asset, error) {
	a, _, err := svc.listAssetsWithTotal(ctx, opts)
	return a, errors.WithStack(err)
}

func (svc *Service) ListAssetsWithTotal(ctx context.Context, opts ListAssetsOptions) ([]*models.Asset, int, error) {
	opts.includeTotal = true
	return svc.listAssetsWithTotal(ctx, opts)
}

func (svc *Service) listAssetsWithTotal(ctx context.Context, opts ListAssetsOptions) ([]*models.Asset, int, error) {
	assets := []*models.Asset{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&assets).
		Order("a.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.LibraryID != nil {
		q = q.Where("a.library_id = ?", *opts.LibraryID)
	}
	if opts.OwnerID != nil {
		q = q.Where("a.owner_id = ?", *opts.OwnerID)
	}
	if opts.IsOffline != nil {
		q = q.Where("a.is_offline = ?", *opts.IsOffline)
	}
	if opts.WithoutMetadata {
		q = q.Where("a.metadata_at IS NULL")
	}
	if opts.WithSidecar {
		q = q.Where("a.sidecar_path IS NOT NULL")
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return assets, total, nil
}

func (svc *Service) UpdateAsset(ctx context.Context, asset *models.Asset, opts UpdateAssetOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	asset.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(asset).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// UpdateAssets applies the same partial update to every asset in ids.
func (svc *Service) UpdateAssets(ctx context.Context, ids []int, partial *models.Asset, opts UpdateAssetOptions) error {
	if len(ids) == 0 || len(opts.Columns) == 0 {
		return nil
	}

	partial.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(partial).
		Column(columns...).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// OnlinePaths returns the original paths of every asset in the library that is
// not currently marked offline.
func (svc *Service) OnlinePaths(ctx context.Context, libraryID int) ([]string, error) {
	paths := []string{}

	err := svc.db.
		NewSelect().
		Model((*models.Asset)(nil)).
		Column("a.original_path").
		Where("a.library_id = ?", libraryID).
		Where("a.is_offline = ?", false).
		Scan(ctx, &paths)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return paths, nil
}

func (svc *Service) AssetIDs(ctx context.Context, libraryID int) ([]int, error) {
	ids := []int{}

	err := svc.db.
		NewSelect().
		Model((*models.Asset)(nil)).
		Column("a.id").
		Where("a.library_id = ?", libraryID).
		Order("a.id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return ids, nil
}

func (svc *Service) CountAssets(ctx context.Context, libraryID int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Asset)(nil)).
		Where("a.library_id = ?", libraryID).
		Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return count, nil
}

func (svc *Service) DeleteAsset(ctx context.Context, asset *models.Asset) error {
	_, err := svc.db.
		NewDelete().
		Model(asset).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
