package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type PolicyHandler struct {
	service *service.PolicyService
}

func NewPolicyHandler(service *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{service: service}
}

// PolicyRequest carries a raw demand series. Unset parameters take the
// configured defaults. r, ld and k are the periodic parameters;
// continuous_ld and continuous_k the continuous ones.
type PolicyRequest struct {
	Series        []float64 `json:"series"`
	R             *int      `json:"r"`
	LD            *int      `json:"ld"`
	K             *float64  `json:"k"`
	ContinuousLD  *int      `json:"continuous_ld"`
	ContinuousK   *float64  `json:"continuous_k"`
	ReviewPeriods []int     `json:"review_periods"`
}

func (h *PolicyHandler) bind(c *gin.Context) (PolicyRequest, bool) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.InvalidInputf("malformed request body: %v", err))
		return req, false
	}
	return req, true
}

// params applies the request overrides, each policy keeping its own
// defaults.
func (h *PolicyHandler) params(req PolicyRequest) service.Params {
	p := h.service.Defaults()
	if req.R != nil {
		p.Periodic.R = *req.R
	}
	if req.LD != nil {
		p.Periodic.LD = *req.LD
	}
	if req.K != nil {
		p.Periodic.K = *req.K
	}
	if req.ContinuousLD != nil {
		p.Continuous.LD = *req.ContinuousLD
	}
	if req.ContinuousK != nil {
		p.Continuous.K = *req.ContinuousK
	}
	if len(req.ReviewPeriods) > 0 {
		p.ReviewPeriods = req.ReviewPeriods
	}
	return p
}

// continuousParams is params for the continuous-only endpoint, where plain
// ld and k also address the continuous policy.
func (h *PolicyHandler) continuousParams(req PolicyRequest) policy.ContinuousParams {
	if req.ContinuousLD == nil {
		req.ContinuousLD = req.LD
	}
	if req.ContinuousK == nil {
		req.ContinuousK = req.K
	}
	return h.params(req).Continuous
}

func (h *PolicyHandler) Statistics(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	stats, err := h.service.Calculator().Statistics(req.Series)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *PolicyHandler) Periodic(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := h.service.Calculator().Periodic(req.Series, h.params(req).Periodic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PolicyHandler) Continuous(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := h.service.Calculator().Continuous(req.Series, h.continuousParams(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PolicyHandler) Compare(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	p := h.params(req)
	points, err := h.service.Calculator().CompareReviewPeriods(req.Series, p.ReviewPeriods, p.Periodic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"LD": p.Periodic.LD, "k": p.Periodic.K, "points": points})
}

func (h *PolicyHandler) Evaluate(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	analysis, err := h.service.Evaluate(req.Series, h.params(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *PolicyHandler) ListItems(c *gin.Context) {
	items, err := h.service.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *PolicyHandler) AnalyzeItem(c *gin.Context) {
	p, err := h.queryParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	analysis, err := h.service.AnalyzeItem(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *PolicyHandler) CompareItem(c *gin.Context) {
	p, err := h.queryParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cmp, err := h.service.CompareReviewPeriods(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// queryParams reads r, ld, k (periodic), continuous_ld, continuous_k and
// review_periods (comma separated) from the query string.
func (h *PolicyHandler) queryParams(c *gin.Context) (service.Params, error) {
	p := h.service.Defaults()

	intFields := []struct {
		key string
		dst *int
	}{
		{"r", &p.Periodic.R},
		{"ld", &p.Periodic.LD},
		{"continuous_ld", &p.Continuous.LD},
	}
	for _, f := range intFields {
		if raw := strings.TrimSpace(c.Query(f.key)); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return p, domain.InvalidInputf("%s must be an integer, got %q", f.key, raw)
			}
			*f.dst = n
		}
	}

	floatFields := []struct {
		key string
		dst *float64
	}{
		{"k", &p.Periodic.K},
		{"continuous_k", &p.Continuous.K},
	}
	for _, f := range floatFields {
		if raw := strings.TrimSpace(c.Query(f.key)); raw != "" {
			v, err := cast.ToFloat64E(raw)
			if err != nil {
				return p, domain.InvalidInputf("%s must be a number, got %q", f.key, raw)
			}
			*f.dst = v
		}
	}

	if raw := strings.TrimSpace(c.Query("review_periods")); raw != "" {
		var periods []int
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return p, domain.InvalidInputf("review_periods must be integers, got %q", raw)
			}
			periods = append(periods, n)
		}
		p.ReviewPeriods = periods
	}

	return p, nil
}
