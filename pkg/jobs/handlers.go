package jobs

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lumierephotos/lumiere/pkg/errcodes"
	"github.com/lumierephotos/lumiere/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	jobService *Service
	queuer     ScanQueuer
}

func (h *handler) queueAllScans(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := QueueAllScansPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Refuse to pile a second full sweep on top of one still in flight.
	hasActive, err := h.jobService.HasActiveJob(ctx, models.JobTypeLibraryScan, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	if hasActive {
		return errcodes.Conflict("A library scan is already running or pending.")
	}

	if err := h.queuer.QueueAllScans(ctx, params.Force); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusAccepted))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Job")
	}

	job, err := h.jobService.RetrieveJob(ctx, RetrieveJobOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, job))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListJobsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	jobs, total, err := h.jobService.ListJobsWithTotal(ctx, ListJobsOptions{
		Limit:     &params.Limit,
		Offset:    &params.Offset,
		Statuses:  params.Status,
		Types:     params.Type,
		LibraryID: params.LibraryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Jobs  []*models.Job `json:"jobs"`
		Total int           `json:"total"`
	}{jobs, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
