package recommend

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"compass-backend/internal/compass"
	"compass-backend/internal/scoring"
	"compass-backend/internal/shared/metrics"
	"compass-backend/internal/shared/server/respond"
)

// Handler serves the compass catalog and offline scoring endpoints.
type Handler struct {
	catalog *compass.Catalog
	engine  *scoring.Engine
}

func NewHandler(catalog *compass.Catalog, engine *scoring.Engine) *Handler {
	return &Handler{catalog: catalog, engine: engine}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/compass", h.getCatalog)
	r.GET("/compass/modules", h.listModules)
	r.POST("/compass/score", h.score)
}

func (h *Handler) getCatalog(c *gin.Context) {
	respond.OK(c, h.catalog)
}

type modulesResponse struct {
	Category string                  `json:"category"`
	Modules  []compass.ModuleSummary `json:"modules"`
}

func (h *Handler) listModules(c *gin.Context) {
	category := c.DefaultQuery("category", compass.CategoryAll)
	respond.OK(c, modulesResponse{
		Category: category,
		Modules:  h.catalog.ModuleSummaries(category),
	})
}

type scoreRequest struct {
	Selections map[string]string `json:"selections" binding:"required"`
	Scheme     string            `json:"scheme"`
}

type scoreResponse struct {
	Scores         scoring.ScoreVector `json:"scores"`
	Chart          ChartData           `json:"chart"`
	Recommendation Result              `json:"recommendation"`
}

func (h *Handler) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "请求参数无效。", err.Error())
		return
	}

	sel, err := scoring.SelectionsFromMap(req.Selections)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "存在未知的维度。", err.Error())
		return
	}
	if missing := sel.Missing(); len(missing) > 0 {
		respond.Error(c, http.StatusBadRequest, "incomplete_selections", "请完成所有五个维度的选择", gin.H{"missing": missing})
		return
	}

	engine := h.engine
	if req.Scheme != "" {
		name, err := scoring.ParseScheme(req.Scheme)
		if err == nil && name != engine.Scheme() {
			engine, err = scoring.NewEngine(name)
		}
		if err != nil {
			if errors.Is(err, scoring.ErrUnknownScheme) {
				respond.Error(c, http.StatusBadRequest, "validation_error", "评分方案无效。", req.Scheme)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			return
		}
	}

	scores := engine.Score(sel)
	metrics.IncScore(string(scores.Scheme))
	respond.OK(c, scoreResponse{
		Scores:         scores,
		Chart:          NewChartData(scores),
		Recommendation: StaticRecommendation(sel),
	})
}
