package controller

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/service"
	"assessment_results_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StagingController struct {
	Service *service.StagingService
	Scores  *service.ScoreService
}

func NewStagingController(svc *service.StagingService, scores *service.ScoreService) *StagingController {
	return &StagingController{Service: svc, Scores: scores}
}

// LoadResult accepts one batch result row.
// @Summary Load a batch result row
// @Tags staging
// @Accept json
// @Produce json
// @Param body body model.StagedStudentResult true "batch result row"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /v1/staged-results [post]
func (c *StagingController) LoadResult(ctx *gin.Context) {
	var req model.StagedStudentResult
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Service.LoadResult(ctx.Request.Context(), &req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, req)
}

// @Summary Stage one loaded result row
// @Tags staging
// @Produce json
// @Param id path string true "staged result ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /v1/staged-results/{id}/stage [post]
func (c *StagingController) StageResult(ctx *gin.Context) {
	staged, err := c.Service.StageResult(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, staged)
}

// @Summary Stage a batch of loaded result rows
// @Tags staging
// @Produce json
// @Param limit query int false "maximum rows to process" default(200)
// @Success 200 {object} util.Response
// @Router /v1/staged-results/process [post]
func (c *StagingController) ProcessLoaded(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "200"))
	if err != nil || limit <= 0 {
		util.BadRequest(ctx, "limit must be a positive integer")
		return
	}
	processed, failed, err := c.Service.ProcessLoadedResults(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"processed": processed, "failed": failed})
}

// @Summary Get a staged student with its components
// @Tags staging
// @Produce json
// @Param id path string true "staged student ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /v1/staged-students/{id} [get]
func (c *StagingController) GetStagedStudent(ctx *gin.Context) {
	staged, err := c.Service.Staged.FindByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, staged)
}

// @Summary DOAR score of a staged student
// @Tags scores
// @Produce json
// @Param id path string true "staged student ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /v1/staged-students/{id}/score [get]
func (c *StagingController) ScoreStagedStudent(ctx *gin.Context) {
	score, err := c.Scores.ScoreStagedStudent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, score)
}
