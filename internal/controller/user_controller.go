package controller

import (
	"net/http"

	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/middleware"
	"github.com/Tapananshu17/HCI/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Home godoc
// @Summary Dashboard payload for the logged-in user
// @Description Profile, resumable assessment if any, completed attempts and completion stats.
// @Tags User
// @Produce json
// @Success 200 {object} dto.HomeResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /home [get]
func (c *UserController) Home(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	resp, err := c.userService.Home(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Description Only the fields present in the body are changed.
// @Tags User
// @Accept json
// @Produce json
// @Param profile body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /profile [patch]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.userService.UpdateProfile(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteAccount godoc
// @Summary Delete the account and everything it owns
// @Tags User
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /profile [delete]
func (c *UserController) DeleteAccount(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	if err := c.userService.DeleteAccount(ctx.Request.Context(), userID); err != nil {
		respondError(ctx, err)
		return
	}
	log.Info().Uint("userID", userID).Msg("Account deletion handled")
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Account deleted"})
}
