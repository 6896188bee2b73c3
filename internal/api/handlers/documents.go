package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vahan-ai/chat-gateway/internal/api/dto"
	"github.com/vahan-ai/chat-gateway/internal/api/middleware"
	domainerrors "github.com/vahan-ai/chat-gateway/internal/domain/errors"
	"github.com/vahan-ai/chat-gateway/internal/services/knowledge"
)

// DocumentsHandler handles document upload and listing.
type DocumentsHandler struct {
	knowledge *knowledge.Service
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(knowledgeService *knowledge.Service) *DocumentsHandler {
	return &DocumentsHandler{knowledge: knowledgeService}
}

// Upload handles the POST /documents endpoint.
// @Summary Ingest a document into the caller's knowledge base
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UploadDocumentRequest true "Document to ingest"
// @Success 201 {object} dto.UploadDocumentResponse "Document ingested"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /documents [post]
func (h *DocumentsHandler) Upload(c *gin.Context) {
	var req dto.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid upload request", err.Error()))
		return
	}

	record, err := h.knowledge.Ingest(c.Request.Context(), middleware.GetSubjectID(c), req.Filename, req.Content)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadDocumentResponse{
		ID:         record.ID,
		Filename:   record.Filename,
		ChunkCount: record.ChunkCount,
	})
}

// List handles the GET /documents endpoint.
// @Summary List the caller's uploaded documents, newest first
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DocumentListResponse "Uploaded documents"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /documents [get]
func (h *DocumentsHandler) List(c *gin.Context) {
	records, err := h.knowledge.List(c.Request.Context(), middleware.GetSubjectID(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DocumentListResponse{Documents: records})
}
