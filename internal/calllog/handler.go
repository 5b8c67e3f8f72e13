package calllog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"calllog/internal/logger"
	"calllog/pkg/errors"
	"calllog/pkg/models"
)

type Handler struct {
	service      *Service
	defaultLimit int
	queryTimeout time.Duration
	logger       logger.Logger
}

// NewHandler serves queries over HTTP. defaultLimit applies when a request
// carries no limit; a negative value means unbounded.
func NewHandler(service *Service, defaultLimit int, log logger.Logger) *Handler {
	return &Handler{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// WithQueryTimeout bounds every query; a timed out query answers 408.
func (h *Handler) WithQueryTimeout(timeout time.Duration) *Handler {
	h.queryTimeout = timeout
	return h
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		calls := v1.Group("/call-logs")
		{
			calls.GET("", h.ListCallLogs)
			calls.POST("/query", h.QueryCallLogs)
		}
	}
}

// ListCallLogs godoc
// @Summary      List call log entries
// @Description  Returns calls newest first, filtered by the optional criteria. List parameters are JSON array literals.
// @Tags         call-logs
// @Produce      json
// @Param        limit         query     int     false  "Maximum number of calls, negative for all"
// @Param        minTimestamp  query     string  false  "Inclusive lower bound in epoch ms, \"0\" for none"
// @Param        maxTimestamp  query     string  false  "Inclusive upper bound in epoch ms, \"-1\" for none"
// @Param        types         query     string  false  "JSON array of call types, e.g. [\"INCOMING\"]"
// @Param        phoneNumbers  query     string  false  "JSON array of phone numbers"
// @Param        expression    query     string  false  "CEL boolean expression"
// @Success      200  {object}  models.CallLogResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /call-logs [get]
func (h *Handler) ListCallLogs(c *gin.Context) {
	limit := h.defaultLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleError(c, errors.ErrValidation.WithCause(err).WithDetail("field", "limit"))
			return
		}
		limit = n
	}

	spec := &models.FilterSpec{
		MinTimestamp: queryPtr(c, "minTimestamp"),
		MaxTimestamp: queryPtr(c, "maxTimestamp"),
		Types:        queryPtr(c, "types"),
		PhoneNumbers: queryPtr(c, "phoneNumbers"),
		Expression:   queryPtr(c, "expression"),
	}

	h.respond(c, limit, spec)
}

// QueryCallLogs godoc
// @Summary      Query call log entries
// @Description  Same as the list endpoint with the filter carried in the body
// @Tags         call-logs
// @Accept       json
// @Produce      json
// @Param        query  body      models.CallLogQuery  true  "Limit and filter"
// @Success      200    {object}  models.CallLogResponse
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /call-logs/query [post]
func (h *Handler) QueryCallLogs(c *gin.Context) {
	var req models.CallLogQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err))
		return
	}

	limit := h.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	h.respond(c, limit, req.Filter)
}

func (h *Handler) respond(c *gin.Context, limit int, spec *models.FilterSpec) {
	ctx := c.Request.Context()
	if h.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.queryTimeout)
		defer cancel()
	}

	records, err := h.service.LoadWithFilter(ctx, limit, spec)
	if err != nil {
		h.HandleError(c, ToAppError(err))
		return
	}

	c.JSON(http.StatusOK, models.CallLogResponse{
		Count:   len(records),
		Records: ToMaps(records),
	})
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.logger.InfowCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

// ToAppError maps query failures onto coded application errors.
func ToAppError(err error) *errors.Error {
	if mfe, ok := AsMalformedFilter(err); ok {
		return errors.ErrMalformedFilter.WithCause(err).
			WithDetail("field", mfe.Field).
			WithDetail("value", mfe.Value)
	}
	if IsTimeout(err) {
		return errors.Wrap(err, errors.ErrTimeout)
	}
	if IsSourceUnavailable(err) {
		return errors.Wrap(err, errors.ErrSourceUnavailable)
	}
	return errors.Wrap(err, errors.ErrSourceRead)
}

// ToMaps drops the named type for encoders that want plain maps.
func ToMaps(records []OutputRecord) []map[string]string {
	out := make([]map[string]string, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

func queryPtr(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok {
		return &v
	}
	return nil
}
