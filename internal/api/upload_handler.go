package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/phrazzld/skincare-api/internal/api/shared"
	"github.com/phrazzld/skincare-api/internal/imageprep"
	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/task"
)

// ImageField is the multipart field carrying the upload.
const ImageField = "image"

// multipartMemory is how much of a multipart body is held in memory before
// spilling to disk.
const multipartMemory = 8 << 20

// TaskSubmitter accepts uploads for background classification.
type TaskSubmitter interface {
	Submit(ctx context.Context, upload io.Reader) (string, error)
}

// UploadHandler handles POST /upload.
type UploadHandler struct {
	submitter TaskSubmitter
	maxBytes  int64
	logger    *slog.Logger
}

// NewUploadHandler creates an UploadHandler. maxBytes bounds the request
// body; zero or less disables the bound.
func NewUploadHandler(submitter TaskSubmitter, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		submitter: submitter,
		maxBytes:  maxBytes,
		logger:    logger.With("handler", "upload"),
	}
}

// Upload saves the image, queues classification and returns 202 with the
// task id without waiting for the result.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	file, header, err := h.formFile(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, MsgUploadTooLarge, err)
		case errors.Is(err, http.ErrMissingFile) && h.hasEmptyFilePart(r):
			shared.RespondWithError(w, r, http.StatusBadRequest, MsgNoSelectedFile)
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgMissingImage, err)
		}
		return
	}
	defer func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	if header.Filename == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgNoSelectedFile)
		return
	}
	if !imageprep.HasImageExtension(header.Filename) {
		log.Warn("upload does not have an image extension", "filename", header.Filename)
	}

	taskID, err := h.submitter.Submit(r.Context(), file)
	if err != nil {
		if errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed) {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, MsgQueueFull, err)
			return
		}
		shared.RespondWithInternalError(w, r, err)
		return
	}

	log.Info("upload accepted", "task_id", taskID, "size", header.Size)

	shared.RespondWithJSON(w, r, http.StatusAccepted, UploadResponse{
		Success:   true,
		Message:   MsgUploadAccepted,
		TaskID:    taskID,
		StatusURL: "/result/" + taskID,
	})
}

func (h *UploadHandler) formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, err
	}
	return r.FormFile(ImageField)
}

// hasEmptyFilePart reports whether the image field was sent without a
// filename, which the multipart reader files under plain values.
func (h *UploadHandler) hasEmptyFilePart(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value[ImageField]
	return ok
}
