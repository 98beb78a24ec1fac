package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assist-scheduler-api/internal/dto"
	"github.com/noah-isme/assist-scheduler-api/internal/middleware"
	"github.com/noah-isme/assist-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/assist-scheduler-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// policyOverride reads escalate_faculty and escalate_room. Absent flags keep the configured default.
func policyOverride(c *gin.Context) (dto.PolicyOverride, error) {
	var override dto.PolicyOverride
	for name, target := range map[string]**bool{
		"escalate_faculty": &override.EscalateFaculty,
		"escalate_room":    &override.EscalateRoom,
	} {
		raw, ok := c.GetQuery(name)
		if !ok || raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return override, appErrors.Clone(appErrors.ErrValidation, name+" must be a boolean")
		}
		*target = &value
	}
	return override, nil
}
