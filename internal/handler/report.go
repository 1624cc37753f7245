package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
)

// ReportSource is implemented by repository.BookingRepo.
type ReportSource interface {
	Summary(ctx context.Context, from, to *model.Date) (*model.ReportSummary, error)
}

type ReportHandler struct {
	Reports ReportSource
}

func NewReportHandler(r ReportSource) *ReportHandler { return &ReportHandler{Reports: r} }

// Summary handles GET /reports/summary?from=&to=.  Both bounds are optional
// and inclusive.
func (h *ReportHandler) Summary(c echo.Context) error {
	fields := map[string]string{}
	from, ok := queryDate(c, "from")
	if !ok {
		fields["from"] = "must be a date as YYYY-MM-DD"
	}
	to, ok := queryDate(c, "to")
	if !ok {
		fields["to"] = "must be a date as YYYY-MM-DD"
	}
	if from != nil && to != nil && to.Before(from.Time) {
		fields["to"] = "must not be before from"
	}
	if len(fields) > 0 {
		return response.Invalid(c, fields)
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	sum, err := h.Reports.Summary(ctx, from, to)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, sum)
}
