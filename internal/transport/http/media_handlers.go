package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Steve1314/ChatBackend/internal/store"
)

// maxUploadSize caps a single media upload at 25 MiB.
const maxUploadSize = 25 << 20

// MediaHandlers stores uploaded files on disk and their metadata in the
// database.
type MediaHandlers struct {
	store     store.Store
	uploadDir string
	log       *zerolog.Logger
}

// NewMediaHandlers creates a new media handlers instance.
func NewMediaHandlers(st store.Store, uploadDir string, logger *zerolog.Logger) *MediaHandlers {
	return &MediaHandlers{store: st, uploadDir: uploadDir, log: logger}
}

// Upload accepts multipart file uploads under the "files" field and
// returns the stored metadata. Files land on disk under random names so
// uploads can never collide or traverse paths.
// POST /media/upload
func (h *MediaHandlers) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files provided"})
		return
	}

	userID := c.GetString(ContextKeyUserID)
	uploaded := make([]MediaView, 0, len(files))

	for _, fh := range files {
		if fh.Size > maxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: fmt.Sprintf("%s exceeds upload limit", fh.Filename)})
			return
		}

		stored := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		dst := filepath.Join(h.uploadDir, stored)
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			h.log.Error().Err(err).Str("filename", fh.Filename).Msg("failed to save upload")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		media, err := h.store.CreateMedia(c.Request.Context(), &store.Media{
			Filename:   fh.Filename,
			MimeType:   fh.Header.Get("Content-Type"),
			Size:       fh.Size,
			Path:       stored,
			UploaderID: userID,
		})
		if err != nil {
			h.log.Error().Err(err).Str("filename", fh.Filename).Msg("failed to store media metadata")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		uploaded = append(uploaded, mediaView(media))
	}

	c.JSON(http.StatusCreated, gin.H{"media": uploaded})
}

// Serve streams a stored file back by its on-disk name.
// GET /media/:filename
func (h *MediaHandlers) Serve(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == ".." || name == "/" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid filename"})
		return
	}
	c.File(filepath.Join(h.uploadDir, name))
}
