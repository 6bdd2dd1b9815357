package proxy

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"compass-backend/internal/llm"
	"compass-backend/internal/shared/metrics"
	"compass-backend/internal/shared/server/respond"
)

// Handler serves POST /api/proxy.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the proxy under r, normally the /api group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/proxy", h.proxy)
}

type proxyRequest struct {
	Prompt     string `json:"prompt" binding:"required"`
	IsJSONMode bool   `json:"isJsonMode"`
}

func (h *Handler) proxy(c *gin.Context) {
	var req proxyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		metrics.ObserveProxy(metrics.OutcomeValidationError, req.IsJSONMode)
		respond.Error(c, http.StatusBadRequest, "validation_error", MessageInvalidRequest, bindDetails(err))
		return
	}
	c.Set("proxyMode", metrics.Mode(req.IsJSONMode))

	out, err := h.svc.Forward(c.Request.Context(), req.Prompt, req.IsJSONMode)
	if err != nil {
		h.writeError(c, err, req.IsJSONMode)
		return
	}
	metrics.ObserveProxy(metrics.OutcomeOK, req.IsJSONMode)
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func (h *Handler) writeError(c *gin.Context, err error, jsonMode bool) {
	var (
		upErr  *llm.UpstreamError
		badErr *MalformedJSONError
	)
	switch {
	case errors.Is(err, ErrConfigIncomplete):
		metrics.ObserveProxy(metrics.OutcomeConfigIncomplete, jsonMode)
		respond.Error(c, http.StatusInternalServerError, "config_incomplete", MessageConfigIncomplete, nil)
	case errors.Is(err, ErrEmptyPrompt):
		metrics.ObserveProxy(metrics.OutcomeValidationError, jsonMode)
		respond.Error(c, http.StatusBadRequest, "validation_error", MessageInvalidRequest, nil)
	case errors.As(err, &upErr):
		metrics.ObserveProxy(metrics.OutcomeUpstreamError, jsonMode)
		details := upErr.Details
		if details == nil {
			details = upErr.Message
		}
		respond.Error(c, relayStatus(upErr.Status), "upstream_error", MessageUpstreamError, details)
	case errors.Is(err, llm.ErrInvalidResponse):
		metrics.ObserveProxy(metrics.OutcomeInvalidStructure, jsonMode)
		respond.Error(c, http.StatusBadGateway, "invalid_response_structure", MessageUpstreamError, MessageInvalidStructure)
	case errors.As(err, &badErr):
		metrics.ObserveProxy(metrics.OutcomeMalformedJSON, jsonMode)
		respond.Error(c, http.StatusBadGateway, "malformed_json", MessageMalformedJSON, gin.H{"raw": badErr.Raw})
	default:
		metrics.ObserveProxy(metrics.OutcomeUpstreamError, jsonMode)
		respond.Error(c, http.StatusInternalServerError, "upstream_error", MessageUpstreamError, err.Error())
	}
}

// relayStatus keeps upstream error statuses and maps anything else to 500.
func relayStatus(status int) int {
	if status >= 400 && status <= 599 {
		return status
	}
	return http.StatusInternalServerError
}

func bindDetails(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
