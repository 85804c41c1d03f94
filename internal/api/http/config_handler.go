package http

import (
	"net/http"

	"chinitsu-server/internal/config"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	rules config.Rules
}

func NewConfigHandler(rules config.Rules) *ConfigHandler {
	return &ConfigHandler{rules: rules}
}

// GetRulesHandler returns the rules every new session is created with
// @Summary Get session rules
// @Tags Config
// @Produce json
// @Success 200 {object} config.Rules
// @Router /config/rules [get]
func (h *ConfigHandler) GetRulesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.rules})
}
