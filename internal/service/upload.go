package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/arclyte/accounts/internal/constants"
	"github.com/arclyte/accounts/internal/dto"
	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/model"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
	"github.com/arclyte/accounts/pkg/storage"
)

// MaxProfileImageSize caps profile image uploads at 5MB.
const MaxProfileImageSize = 5 << 20

var profileImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadService stores profile images and identity documents and
// records their metadata.
type UploadService struct {
	users     UserStore
	documents DocumentStore
	store     storage.Store
	presigner storage.Presigner
}

func NewUploadService(users UserStore, documents DocumentStore, store storage.Store, presigner storage.Presigner) *UploadService {
	return &UploadService{
		users:     users,
		documents: documents,
		store:     store,
		presigner: presigner,
	}
}

// SaveProfileImage validates and stores a profile image, then persists
// the stored filename on the user record.
func (s *UploadService) SaveProfileImage(ctx context.Context, userID string, header *multipart.FileHeader) (string, error) {
	ctx = ctxutil.WithScope(ctx, "service", "SaveProfileImage")

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !profileImageExts[ext] {
		logger.WarnWithContext(ctx, "Profile image rejected, unsupported type").
			String("extension", ext).
			Log()
		return "", apperrors.NewDomainError(apperrors.CodeInvalidInput, "Only jpg, jpeg and png images are allowed.")
	}
	if header.Size > MaxProfileImageSize {
		logger.WarnWithContext(ctx, "Profile image rejected, too large").
			Int64("size", header.Size).
			Log()
		return "", apperrors.NewDomainError(apperrors.CodeInvalidInput, "Image must be 5MB or smaller.")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return "", apperrors.ErrUserNotFound
	}

	f, err := header.Open()
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	defer f.Close()

	filename := uploadFilename(ext)
	key := "profile-images/" + filename
	if err := s.store.Save(ctx, key, f, header.Size, header.Header.Get("Content-Type")); err != nil {
		logger.ErrorWithContext(ctx, "Failed to store profile image").
			String("key", key).
			Err(err).
			Log()
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"profile_image": filename}); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Profile image stored").
		String("filename", filename).
		Log()

	return filename, nil
}

// SaveDocuments stores every file in the multipart form and records one
// Document row per file. The form field name picks the document title.
func (s *UploadService) SaveDocuments(ctx context.Context, userID string, form *multipart.Form) ([]dto.DocumentResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "SaveDocuments")

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	var docs []model.Document
	for field, headers := range form.File {
		title := documentTitle(field)
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				return nil, apperrors.WrapError(apperrors.ErrInternal, err)
			}

			filename := uploadFilename(strings.ToLower(filepath.Ext(header.Filename)))
			key := "documents/" + filename
			err = s.store.Save(ctx, key, f, header.Size, header.Header.Get("Content-Type"))
			f.Close()
			if err != nil {
				logger.ErrorWithContext(ctx, "Failed to store document").
					String("key", key).
					Err(err).
					Log()
				return nil, apperrors.WrapError(apperrors.ErrInternal, err)
			}

			docs = append(docs, model.Document{
				UserID:   user.ID,
				Title:    title,
				Filename: filename,
				Username: user.UserName,
			})
		}
	}

	if len(docs) == 0 {
		return nil, apperrors.NewDomainError(apperrors.CodeInvalidInput, "No files were uploaded.")
	}

	if err := s.documents.CreateBatch(ctx, docs); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Documents stored").
		Int("document_count", len(docs)).
		Log()

	responses := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		responses = append(responses, dto.DocumentResponse{
			ID:       d.ID,
			UserID:   d.UserID,
			Title:    d.Title,
			Filename: d.Filename,
			Username: d.Username,
		})
	}
	return responses, nil
}

// ListDocuments returns the stored document metadata for a user.
func (s *UploadService) ListDocuments(ctx context.Context, userID string) ([]dto.DocumentResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "ListDocuments")

	docs, err := s.documents.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	responses := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		responses = append(responses, dto.DocumentResponse{
			ID:       d.ID,
			UserID:   d.UserID,
			Title:    d.Title,
			Filename: d.Filename,
			Username: d.Username,
		})
	}
	return responses, nil
}

// PresignDocumentUpload hands the client a direct upload URL when the
// storage backend supports it.
func (s *UploadService) PresignDocumentUpload(ctx context.Context) (*dto.PresignResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "PresignDocumentUpload")

	if s.presigner == nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, storage.ErrPresignUnsupported)
	}

	key := storage.RandomKey("documents")
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrPresignUnsupported) {
			return nil, apperrors.NewDomainError(apperrors.CodeInvalidInput, "Direct uploads are not available on this deployment.")
		}
		logger.ErrorWithContext(ctx, "Failed to presign upload").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.PresignResponse{Key: key, URL: url}, nil
}

// documentTitle maps a multipart field name to a known document title.
func documentTitle(field string) string {
	switch field {
	case constants.DocumentTitleAadhar, constants.DocumentTitlePan, constants.DocumentTitlePassport:
		return field
	default:
		return constants.DocumentTitleUnknown
	}
}

// uploadFilename builds a timestamped, collision-resistant filename.
func uploadFilename(ext string) string {
	return fmt.Sprintf("%d-%06d%s", time.Now().UnixMilli(), rand.Intn(1000000), ext)
}
