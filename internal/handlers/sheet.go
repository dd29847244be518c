package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/services"
)

type SheetHandler struct {
	log          *logger.Logger
	sheetService services.SheetService
}

func NewSheetHandler(log *logger.Logger, sheetService services.SheetService) *SheetHandler {
	return &SheetHandler{
		log:          log.With("handler", "SheetHandler"),
		sheetService: sheetService,
	}
}

func (h *SheetHandler) CreateSheet(c *gin.Context) {
	var in services.CreateSheetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	sheet, err := h.sheetService.CreateSheet(c.Request.Context(), nil, in)
	if err != nil {
		h.log.Error("CreateSheet failed", "error", err, "title", in.Title)
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, gin.H{"sheet": sheet})
}

func (h *SheetHandler) CreateSection(c *gin.Context) {
	sheetSlug := c.Param("sheetSlug")

	var in services.CreateSectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	section, err := h.sheetService.CreateSection(c.Request.Context(), nil, sheetSlug, in)
	if err != nil {
		h.log.Error("CreateSection failed", "error", err, "sheet_slug", sheetSlug)
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, gin.H{"section": section})
}

func (h *SheetHandler) AttachProblems(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_section_id", err)
		return
	}

	var body struct {
		Problems []uuid.UUID `json:"problems"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	count, err := h.sheetService.AttachProblems(c.Request.Context(), sectionID, body.Problems)
	if err != nil {
		h.log.Error("AttachProblems failed", "error", err, "section_id", sectionID)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"count": count})
}

func (h *SheetHandler) ListSheets(c *gin.Context) {
	sheets, err := h.sheetService.ListSheets(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListSheets failed", "error", err)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"sheets": sheets})
}

func (h *SheetHandler) GetSheet(c *gin.Context) {
	sheetSlug := c.Param("slug")

	sheet, err := h.sheetService.GetSheetTree(c.Request.Context(), nil, sheetSlug)
	if err != nil {
		h.log.Error("GetSheet failed", "error", err, "slug", sheetSlug)
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"sheet": sheet})
}
