// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/middleware"
)

// requireIdentity returns the authenticated caller or writes a 401 response
func requireIdentity(ctx *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return models.Identity{}, false
	}
	return identity, true
}
