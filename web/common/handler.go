package common

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"axiapac.com/backoffice/core"
	"axiapac.com/backoffice/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler is embedded by endpoints that talk to the tenant database.
type Handler struct {
	Dm     *core.DatabaseManager
	Logger *slog.Logger
}

func GetHostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// Tenant is the schema that serves the request host.
func (h *Handler) Tenant(c *gin.Context) string {
	return h.Dm.SchemaFor(GetHostname(c.Request.Host))
}

// Exec runs fn against the database of the request's tenant.
func (h *Handler) Exec(c *gin.Context, fn func(db *gorm.DB) error) error {
	return h.Dm.Exec(c.Request.Context(), GetHostname(c.Request.Host), fn)
}

// Fail maps domain errors to a status code and writes the error response.
func (h *Handler) Fail(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, NewErrorResponse(ve.Error()))
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(err.Error()))
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, NewErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
		if h.Logger != nil {
			h.Logger.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
	}
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse("Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// Paging reads limit and offset query params.
func Paging(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if val, err := strconv.Atoi(c.Query("limit")); err == nil && val > 0 {
		limit = val
	}
	if val, err := strconv.Atoi(c.Query("offset")); err == nil && val >= 0 {
		offset = val
	}
	return limit, offset
}
