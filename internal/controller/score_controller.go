package controller

import (
	"assessment_results_backend/internal/scoring"
	"assessment_results_backend/internal/service"
	"assessment_results_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

type ScoreController struct {
	Service *service.ScoreService
}

func NewScoreController(svc *service.ScoreService) *ScoreController {
	return &ScoreController{Service: svc}
}

// @Summary DOAR score of a main student record
// @Tags scores
// @Produce json
// @Param id path string true "assessment student ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /v1/students/{id}/score [get]
func (c *ScoreController) ScoreStudent(ctx *gin.Context) {
	score, err := c.Service.ScoreStudent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, score)
}

// @Summary History rows of a main student record
// @Tags scores
// @Produce json
// @Param id path string true "assessment student ID"
// @Success 200 {object} util.Response
// @Router /v1/students/{id}/history [get]
func (c *ScoreController) History(ctx *gin.Context) {
	history, err := c.Service.History(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": history, "total": len(history)})
}

// @Summary Cohort section report for an assessment
// @Tags reports
// @Produce json
// @Param id path string true "assessment ID"
// @Param scope query string false "PROVINCE, STAGING, SCHOOL or PUBLIC" default(PROVINCE)
// @Param schoolId query string false "school of record filter for SCHOOL scope"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /v1/reports/assessments/{id}/sections [get]
func (c *ScoreController) SectionReport(ctx *gin.Context) {
	scope := scoring.ReportScope(strings.ToUpper(ctx.DefaultQuery("scope", string(scoring.ScopeProvince))))
	report, err := c.Service.SectionReport(ctx.Request.Context(), ctx.Param("id"), scope, ctx.Query("schoolId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
