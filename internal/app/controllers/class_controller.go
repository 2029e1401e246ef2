package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models"
	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/services"
	"github.com/yigit/flashclass/internal/middleware"
)

// EventStreamer attaches an authorized request to the live events of a class
type EventStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, classID string, viewer models.Identity) error
}

// ClassController handles class, membership and materials endpoints
type ClassController struct {
	classService      services.ClassService
	membershipService services.MembershipService
	events            EventStreamer
	logger            zerolog.Logger
}

// NewClassController creates a new ClassController. events may be nil, which disables the
// event stream endpoint.
func NewClassController(
	classService services.ClassService,
	membershipService services.MembershipService,
	events EventStreamer,
	logger zerolog.Logger,
) *ClassController {
	return &ClassController{
		classService:      classService,
		membershipService: membershipService,
		events:            events,
		logger:            logger,
	}
}

// CreateClass creates an empty class
// @Summary Create class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class"
// @Success 201 {object} dto.APIResponse{data=dto.ClassResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	class, err := c.classService.CreateClass(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromClass(class), "Class created"))
}

// ListClasses lists the classes visible to the caller
// @Summary List classes
// @Description Admins see every class. Other users see the classes they belong to, including through a manual member entry with their email.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ClassResponse}
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	classes, err := c.classService.ListClasses(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClasses(classes), ""))
}

// GetClass returns one class
// @Summary Get class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	class, err := c.classService.GetClass(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClass(class), ""))
}

// DeleteClass removes a class
// @Summary Delete class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClassPatchResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	patch, err := c.classService.DeleteClass(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ClassPatchResponse{Patch: patch}, "Class deleted"))
}

// GetMaterials resolves the cards shared with a class
// @Summary Get class materials
// @Description Direct cards first, then the cards of each shared folder. A card reachable both ways appears twice; ids that no longer resolve are skipped.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClassMaterialsResponse}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 503 {object} dto.ErrorResponse "Backend unavailable"
// @Router /classes/{id}/materials [get]
func (c *ClassController) GetMaterials(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	class, cards, err := c.classService.GetMaterials(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ClassMaterialsResponse{
		ClassID:    class.ID,
		Flashcards: dto.FromFlashcards(cards),
		Count:      len(cards),
	}, ""))
}

// GetRoster returns the member counts of a class
// @Summary Get class roster counts
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.RosterCounts}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/roster [get]
func (c *ClassController) GetRoster(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	roster, err := c.classService.GetRoster(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(roster, ""))
}

// SetMembers replaces the registered members
// @Summary Set class members
// @Description The body is the complete member list. Manual members are not affected.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param request body dto.SetMembersRequest true "Members"
// @Success 200 {object} dto.APIResponse{data=dto.ClassPatchResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/members [put]
func (c *ClassController) SetMembers(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.SetMembersRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	patch, err := c.membershipService.SetMembers(ctx.Request.Context(), identity, ctx.Param("id"), req.Members)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ClassPatchResponse{Patch: patch}, "Members updated"))
}

// AddManualMember adds a person without an account
// @Summary Add manual member
// @Description Appends an entry even if the same person is already listed. An invitation email is sent when mail is configured.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param request body dto.ManualMemberRequest true "Member"
// @Success 200 {object} dto.APIResponse{data=dto.ClassPatchResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/manual-members [post]
func (c *ClassController) AddManualMember(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.ManualMemberRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	patch, err := c.membershipService.AddManualMember(ctx.Request.Context(), identity, ctx.Param("id"), req.Name, req.Email, req.Roll)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ClassPatchResponse{Patch: patch}, "Member added"))
}

// SetMaterials replaces the shared cards and folders
// @Summary Set class materials
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param request body dto.SetMaterialsRequest true "Materials"
// @Success 200 {object} dto.APIResponse{data=dto.ClassPatchResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/materials [put]
func (c *ClassController) SetMaterials(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.SetMaterialsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	patch, err := c.membershipService.SetMaterials(ctx.Request.Context(), identity, ctx.Param("id"), req.Flashcards, req.Folders)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ClassPatchResponse{Patch: patch}, "Materials updated"))
}

// Events streams class patches over a websocket
// @Summary Class event stream
// @Description Upgrades to a websocket and pushes class.patched and class.deleted events. Pass the token as a query parameter.
// @Tags classes
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/events [get]
func (c *ClassController) Events(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}
	if c.events == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBackendUnavailable, "Event stream disabled")
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
		return
	}

	class, err := c.classService.GetClass(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// the upgrader writes its own error response
	if err := c.events.Serve(ctx.Writer, ctx.Request, class.ID, identity); err != nil {
		c.logger.Warn().Err(err).Str("classID", class.ID).Msg("Event stream not established")
	}
}

