package handler

import (
	"net/http"

	"github.com/arclyte/accounts/internal/constants"
	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/service"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   *service.UserService
	uploadService *service.UploadService
}

func NewUserHandler(userService *service.UserService, uploadService *service.UploadService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		uploadService: uploadService,
	}
}

// List returns a paginated, searchable user listing.
func (h *UserHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "List")

	params := constants.ParsePaginationParams(c)

	users, total, err := h.userService.Search(ctx, params.Limit, params.Offset, params.Search)
	if err != nil {
		logger.ErrorWithContext(ctx, "User listing failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Failed to list users", apperrors.GetErrorMessage(err)))
		return
	}

	pageTotal := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	c.JSON(http.StatusOK, constants.BuildListResponse(total, params.Page, params.Limit, pageTotal, users))
}

// Get returns a single user's public profile.
func (h *UserHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Get")

	user, err := h.userService.GetByID(ctx, c.Param("id"))
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Failed to get user", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadProfileImage stores the authenticated user's profile image.
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UploadProfileImage")

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}
	ctx = ctxutil.WithUserID(ctx, userID)

	header, err := c.FormFile("file")
	if err != nil {
		logger.WarnWithContext(ctx, "Profile image upload without file").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", "A file field named \"file\" is required."))
		return
	}

	filename, err := h.uploadService.SaveProfileImage(ctx, userID, header)
	if err != nil {
		logger.WarnWithContext(ctx, "Profile image upload failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Profile image upload failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"profileImage": filename})
}

// UploadDocuments stores identity documents for the authenticated user.
// Each multipart field names the document it carries.
func (h *UserHandler) UploadDocuments(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UploadDocuments")

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}
	ctx = ctxutil.WithUserID(ctx, userID)

	form, err := c.MultipartForm()
	if err != nil {
		logger.WarnWithContext(ctx, "Invalid document upload form").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	docs, err := h.uploadService.SaveDocuments(ctx, userID, form)
	if err != nil {
		logger.WarnWithContext(ctx, "Document upload failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Document upload failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"documents": docs})
}

// ListDocuments returns the authenticated user's stored documents.
func (h *UserHandler) ListDocuments(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListDocuments")

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	docs, err := h.uploadService.ListDocuments(ctx, userID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Failed to list documents", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// PresignDocumentUpload returns a direct upload URL for object storage
// deployments.
func (h *UserHandler) PresignDocumentUpload(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "PresignDocumentUpload")

	if userID := c.GetString("user_id"); userID == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	presigned, err := h.uploadService.PresignDocumentUpload(ctx)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Failed to presign upload", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, presigned)
}
