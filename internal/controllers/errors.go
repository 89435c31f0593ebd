package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-cafe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// respondError maps service errors onto APIError responses. Unknown errors
// are logged and reported as 500 without internal detail.
func respondError(c *gin.Context, err error) {
	var (
		notFound *services.ItemNotFoundError
		badRef   *services.InvalidItemReferenceError
		invalid  validator.ValidationErrors
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrItemNotFound, err.Error(), map[string]interface{}{
			"missing_item_ids": notFound.Missing,
		}))
	case errors.As(err, &badRef):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidItemReference, err.Error(), map[string]interface{}{
			"line":    badRef.Line + 1,
			"item_id": badRef.Value,
		}))
	case errors.As(err, &invalid):
		fields := make(map[string]interface{}, len(invalid))
		for _, fe := range invalid {
			fields[fe.Namespace()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Validation failed", fields))
	case errors.Is(err, services.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrNoItemsProvided, err.Error()))
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidStatus, err.Error(), map[string]interface{}{
			"allowed": models.OrderStatuses,
		}))
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidOrderType),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrOrderNotFound, err.Error()))
	case errors.Is(err, services.ErrOrderItemNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrOrderItemNotFound, err.Error()))
	case errors.Is(err, services.ErrInventoryNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrInventoryNotFound, err.Error()))
	case errors.Is(err, services.ErrMenuItemNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrMenuItemNotFound, err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrUserNotFound, err.Error()))
	case errors.Is(err, services.ErrClientNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, err.Error()))
	case errors.Is(err, services.ErrStatusConflict):
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrStatusConflict, err.Error()))
	case errors.Is(err, services.ErrUserExists):
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrUserExists, err.Error()))
	case errors.Is(err, services.ErrCannotDeleteSelf):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrCannotDeleteSelf, err.Error()))
	case errors.Is(err, services.ErrLastManager):
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrLastManager, err.Error()))
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body", map[string]interface{}{
		"reason": err.Error(),
	}))
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" format"))
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an optional integer query parameter; absent or malformed values yield 0.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

// actor identifies the caller for audit rows.
func actor(c *gin.Context) services.Actor {
	id := middleware.CurrentUserID(c)
	if id == 0 {
		return services.PublicActor
	}
	return services.StaffActor(id, middleware.CurrentUserName(c))
}
