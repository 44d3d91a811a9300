package controller

import (
	"assessment_results_backend/internal/service"
	"assessment_results_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TransferController struct {
	Service *service.TransferService
	Worker  *service.TransferWorker
}

func NewTransferController(svc *service.TransferService, worker *service.TransferWorker) *TransferController {
	return &TransferController{Service: svc, Worker: worker}
}

// @Summary Mark matched and merged staged students ready for transfer
// @Tags transfer
// @Produce json
// @Success 200 {object} util.Response
// @Router /v1/transfer/mark-ready [post]
func (c *TransferController) MarkReady(ctx *gin.Context) {
	n, err := c.Service.MarkStagedStudentsReadyForTransfer(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"marked": n})
}

// Run drains one batch with the configured worker pool.
// @Summary Run one transfer batch
// @Tags transfer
// @Produce json
// @Success 200 {object} util.Response
// @Router /v1/transfer/run [post]
func (c *TransferController) Run(ctx *gin.Context) {
	summary, err := c.Worker.RunOnce(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// TransferOne claims and promotes a single staged student.
// @Summary Transfer one staged student to the main tables
// @Tags transfer
// @Produce json
// @Param id path string true "staged student ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /v1/transfer/{id} [post]
func (c *TransferController) TransferOne(ctx *gin.Context) {
	id := ctx.Param("id")
	ok, err := c.Service.ClaimForTransfer(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !ok {
		util.Conflict(ctx, "staged student is not awaiting transfer")
		return
	}
	student, err := c.Service.TransferStagedStudentToMainTables(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}
