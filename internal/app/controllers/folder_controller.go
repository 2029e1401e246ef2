package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/app/services"
	"github.com/yigit/flashclass/internal/middleware"
)

// FolderController handles folder endpoints
type FolderController struct {
	folderService services.FolderService
	logger        zerolog.Logger
}

// NewFolderController creates a new FolderController
func NewFolderController(folderService services.FolderService, logger zerolog.Logger) *FolderController {
	return &FolderController{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a folder owned by the caller
// @Summary Create folder
// @Tags folders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FolderRequest true "Folder"
// @Success 201 {object} dto.APIResponse{data=dto.FolderResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /folders [post]
func (c *FolderController) CreateFolder(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.FolderRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	folder, err := c.folderService.CreateFolder(ctx.Request.Context(), identity, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromFolder(folder), "Folder created"))
}

// ListFolders lists the caller's folders
// @Summary List folders
// @Tags folders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.FolderResponse}
// @Router /folders [get]
func (c *FolderController) ListFolders(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	folders, err := c.folderService.ListFolders(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromFolders(folders), ""))
}

// GetFolder returns one folder
// @Summary Get folder
// @Tags folders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Folder ID"
// @Success 200 {object} dto.APIResponse{data=dto.FolderResponse}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Folder not found"
// @Router /folders/{id} [get]
func (c *FolderController) GetFolder(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	folder, err := c.folderService.GetFolder(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromFolder(folder), ""))
}

// RenameFolder changes a folder name
// @Summary Rename folder
// @Tags folders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Folder ID"
// @Param request body dto.FolderRequest true "New name"
// @Success 200 {object} dto.APIResponse{data=dto.FolderPatchResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Folder not found"
// @Router /folders/{id} [put]
func (c *FolderController) RenameFolder(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	var req dto.FolderRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	patch, err := c.folderService.RenameFolder(ctx.Request.Context(), identity, ctx.Param("id"), req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FolderPatchResponse{Patch: patch}, "Folder renamed"))
}

// DeleteFolder removes a folder. Its cards keep their folder reference.
// @Summary Delete folder
// @Tags folders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Folder ID"
// @Success 200 {object} dto.APIResponse{data=dto.FolderPatchResponse}
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Failure 404 {object} dto.ErrorResponse "Folder not found"
// @Router /folders/{id} [delete]
func (c *FolderController) DeleteFolder(ctx *gin.Context) {
	identity, ok := requireIdentity(ctx)
	if !ok {
		return
	}

	patch, err := c.folderService.DeleteFolder(ctx.Request.Context(), identity, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FolderPatchResponse{Patch: patch}, "Folder deleted"))
}
