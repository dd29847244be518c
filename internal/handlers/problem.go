package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/services"
)

type ProblemHandler struct {
	log            *logger.Logger
	problemService services.ProblemService
}

func NewProblemHandler(log *logger.Logger, problemService services.ProblemService) *ProblemHandler {
	return &ProblemHandler{
		log:            log.With("handler", "ProblemHandler"),
		problemService: problemService,
	}
}

func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var in services.CreateProblemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	problem, err := h.problemService.Create(c.Request.Context(), nil, in)
	if err != nil {
		h.log.Error("CreateProblem failed", "error", err, "title", in.Title)
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, gin.H{"problem": problem})
}

func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	problemSlug := c.Param("slug")

	problem, err := h.problemService.SoftDelete(c.Request.Context(), nil, problemSlug)
	if err != nil {
		h.log.Error("DeleteProblem failed", "error", err, "slug", problemSlug)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"problem": problem})
}

func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	problemSlug := c.Param("slug")

	var in services.UpdateProblemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	problem, err := h.problemService.Update(c.Request.Context(), nil, problemSlug, in)
	if err != nil {
		h.log.Error("UpdateProblem failed", "error", err, "slug", problemSlug)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"problem": problem})
}

func (h *ProblemHandler) ListProblems(c *gin.Context) {
	// A missing or non-numeric page falls back to the first page.
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.problemService.ListActive(c.Request.Context(), nil, page)
	if err != nil {
		h.log.Error("ListProblems failed", "error", err, "page", page)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ProblemHandler) ListInactiveProblems(c *gin.Context) {
	problems, err := h.problemService.ListInactive(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListInactiveProblems failed", "error", err)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"problems": problems})
}
