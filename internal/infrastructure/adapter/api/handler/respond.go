package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError writes the JSON error body for err. Server-side failures are
// logged and their details withheld from the client.
func respondError(c *gin.Context, logger coreport.Logger, operation string, err error) {
	status := domainerr.HTTPStatus(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		fields := domainerr.LogFieldsOf(err)
		fields["operation"] = operation
		fields["path"] = c.Request.URL.Path
		logger.Error("Request failed", fields)
		message = http.StatusText(status)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}

// bindError maps a binding failure to the domain error of the first field
// that failed one of the domain tags
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			var sentinel error
			switch fe.Tag() {
			case "gamemode":
				sentinel = domainerr.ErrInvalidGameMode
			case "selection":
				sentinel = domainerr.ErrInvalidSelection
			case "money":
				sentinel = domainerr.ErrInvalidAmount
			case "market":
				sentinel = domainerr.ErrInvalidMarket
			default:
				continue
			}
			return fmt.Errorf("%w: %s", sentinel, fe.Field())
		}
	}
	return fmt.Errorf("%w: %s", domainerr.ErrInvalidRequest, err.Error())
}

// bindJSON decodes the body into req and writes the error response on failure
func bindJSON(c *gin.Context, logger coreport.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, logger, "bind", bindError(err))
		return false
	}
	return true
}

// bindQuery decodes the query string into req and writes the error response on failure
func bindQuery(c *gin.Context, logger coreport.Logger, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, logger, "bind", bindError(err))
		return false
	}
	return true
}

// pathUserID parses the :userId path parameter
func pathUserID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", domainerr.ErrInvalidUserID, c.Param("userId"))
	}
	return id, nil
}
