package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/acadhub/portal-api/internal/middleware"
	"github.com/acadhub/portal-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}
