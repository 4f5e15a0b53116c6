package libraries

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/jobs"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	libraryService *Service
	jobService     *jobs.Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	isVisible := true
	if params.IsVisible != nil {
		isVisible = *params.IsVisible
	}

	library := &models.Library{
		Name:              params.Name,
		Type:              params.Type,
		OwnerID:           params.OwnerID,
		IsVisible:         isVisible,
		ImportPaths:       make([]*models.LibraryPath, 0, len(params.ImportPaths)),
		ExclusionPatterns: make([]*models.LibraryExclusion, 0, len(params.ExclusionPatterns)),
	}
	for _, path := range params.ImportPaths {
		library.ImportPaths = append(library.ImportPaths, &models.LibraryPath{
			Filepath: path,
		})
	}
	for _, pattern := range params.ExclusionPatterns {
		library.ExclusionPatterns = append(library.ExclusionPatterns, &models.LibraryExclusion{
			Pattern: pattern,
		})
	}

	err := h.libraryService.CreateLibrary(ctx, library)
	if err != nil {
		return err
	}

	library, err = h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &library.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, library))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListLibrariesOptions{
		Limit:       &params.Limit,
		Offset:      &params.Offset,
		OwnerID:     params.OwnerID,
		OnlyDeleted: params.Deleted,
	}

	libraries, total, err := h.libraryService.ListLibrariesWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Libraries []*models.Library `json:"libraries"`
		Total     int               `json:"total"`
	}{libraries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	params := UpdateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateLibraryOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != library.Name {
		library.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.IsVisible != nil && *params.IsVisible != library.IsVisible {
		library.IsVisible = *params.IsVisible
		opts.Columns = append(opts.Columns, "is_visible")
	}
	if params.ImportPaths != nil {
		library.ImportPaths = make([]*models.LibraryPath, 0, len(params.ImportPaths))
		for _, path := range params.ImportPaths {
			library.ImportPaths = append(library.ImportPaths, &models.LibraryPath{
				Filepath: path,
			})
		}
		opts.UpdateImportPaths = true
	}
	if params.ExclusionPatterns != nil {
		library.ExclusionPatterns = make([]*models.LibraryExclusion, 0, len(params.ExclusionPatterns))
		for _, pattern := range params.ExclusionPatterns {
			library.ExclusionPatterns = append(library.ExclusionPatterns, &models.LibraryExclusion{
				Pattern: pattern,
			})
		}
		opts.UpdateExclusionPatterns = true
	}

	err = h.libraryService.UpdateLibrary(ctx, library, opts)
	if err != nil {
		return err
	}

	library, err = h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, library))
}

// delete soft-deletes the library and queues the deletion job. The row stays
// until the job has drained every owned asset.
func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	err = h.libraryService.SoftDeleteLibrary(ctx, library)
	if err != nil {
		return err
	}

	_, err = h.jobService.Enqueue(ctx, models.JobTypeLibraryDelete, &models.JobLibraryDeleteData{
		LibraryID: library.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) statistics(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	if _, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	stats, err := h.libraryService.RetrieveStatistics(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}

func (h *handler) scan(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	params := ScanLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if library.Type != models.LibraryTypeExternal {
		return errcodes.ValidationError("Only external libraries can be scanned")
	}

	job, err := h.jobService.Enqueue(ctx, models.JobTypeLibraryScan, &models.JobLibraryScanData{
		LibraryID:            library.ID,
		RefreshModifiedFiles: params.RefreshModifiedFiles,
		RefreshAllFiles:      params.RefreshAllFiles,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}

func (h *handler) removeOffline(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	job, err := h.jobService.Enqueue(ctx, models.JobTypeRemoveOffline, &models.JobRemoveOfflineData{
		LibraryID: library.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusAccepted, job))
}
