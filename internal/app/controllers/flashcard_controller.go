package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/services"
	"github.com/yigit/flashclass/internal/middleware"
	"github.com/yigit/flashclass/internal/pkg/helpers"
)

// FlashcardController handles flashcard endpoints
type FlashcardController struct {
	flashcardService services.FlashcardService
	logger           zerolog.Logger
}

// NewFlashcardController creates a new FlashcardController
func NewFlashcardController(flashcardService services.FlashcardService, logger zerolog.Logger) *FlashcardController {
	return &FlashcardController{
		flashcardService: flashcardService,
		logger:           logger,
	}
}

// CreateFlashcard creates a card owned by the caller
// @Summary Create flashcard
// @Tags flashcards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FlashcardRequest true "Card"
// @Success 201 {object} dto.APIResponse{data=dto.FlashcardResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /flashcards [post]
func (c *FlashcardController) CreateFlashcard(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.FlashcardRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	card, err := c.flashcardService.CreateFlashcard(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromFlashcard(card), "Flashcard created"))
}

// ListFlashcards lists the caller's cards
// @Summary List flashcards
// @Description Admins see every card. folder=unorganized lists cards without a folder; cards whose folder was deleted are included only with treatDanglingAsUnorganized.
// @Tags flashcards
// @Produce json
// @Security BearerAuth
// @Param folder query string false "all, unorganized or a folder id" default(all)
// @Param treatDanglingAsUnorganized query bool false "Count cards with a missing folder as unorganized"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.FlashcardListResponse}
// @Router /flashcards [get]
func (c *FlashcardController) ListFlashcards(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var filter dto.FlashcardFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	cards, err := c.flashcardService.ListFlashcards(ctx.Request.Context(), identity, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	items, info := helpers.Paginate(cards, page, size)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FlashcardListResponse{
		Flashcards:     dto.FromFlashcards(items),
		PaginationInfo: info,
	}, ""))
}

// GetFlashcard returns one card
// @Summary Get flashcard
// @Tags flashcards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flashcard ID"
// @Success 200 {object} dto.APIResponse{data=dto.FlashcardResponse}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Flashcard not found"
// @Router /flashcards/{id} [get]
func (c *FlashcardController) GetFlashcard(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	card, err := c.flashcardService.GetFlashcard(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromFlashcard(card), ""))
}

// UpdateFlashcard replaces the editable fields of a card
// @Summary Update flashcard
// @Tags flashcards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flashcard ID"
// @Param request body dto.FlashcardRequest true "Card"
// @Success 200 {object} dto.APIResponse{data=dto.FlashcardPatchResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Flashcard not found"
// @Router /flashcards/{id} [put]
func (c *FlashcardController) UpdateFlashcard(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.FlashcardRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	patch, err := c.flashcardService.UpdateFlashcard(ctx.Request.Context(), identity, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FlashcardPatchResponse{Patch: patch}, "Flashcard updated"))
}

// DeleteFlashcard removes a card. Classes keep dangling references to it.
// @Summary Delete flashcard
// @Tags flashcards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flashcard ID"
// @Success 200 {object} dto.APIResponse{data=dto.FlashcardPatchResponse}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Flashcard not found"
// @Router /flashcards/{id} [delete]
func (c *FlashcardController) DeleteFlashcard(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	patch, err := c.flashcardService.DeleteFlashcard(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FlashcardPatchResponse{Patch: patch}, "Flashcard deleted"))
}
