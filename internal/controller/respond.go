package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals do not leak.
func respondError(ctx *gin.Context, err error) {
	switch {
	case apperror.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperror.ErrUnauthorized):
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid credentials"})
	case errors.Is(err, apperror.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperror.ErrConflict):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, apperror.ErrPreconditionFailed):
		ctx.JSON(http.StatusPreconditionFailed, dto.ErrorResponse{Message: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}
