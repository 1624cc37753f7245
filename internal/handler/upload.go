package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/logger"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/storage"
)

// maxUploadBytes caps the multipart file before decoding.
const maxUploadBytes = 10 << 20

// PhotoStore is implemented by storage.S3Storage.
type PhotoStore interface {
	PutPhoto(ctx context.Context, data []byte, contentType, ext string) (string, error)
}

type UploadHandler struct {
	Store     PhotoStore
	Processor storage.PhotoProcessor
}

func NewUploadHandler(s PhotoStore, p storage.PhotoProcessor) *UploadHandler {
	return &UploadHandler{Store: s, Processor: p}
}

// Photo handles POST /uploads/photos.  The multipart field "file" is
// decoded, resized and stored as JPEG; the response carries its URL.
func (h *UploadHandler) Photo(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Invalid(c, map[string]string{"file": "is required"})
	}
	if fh.Size > maxUploadBytes {
		return response.Invalid(c, map[string]string{"file": "must be at most 10 MiB"})
	}
	f, err := fh.Open()
	if err != nil {
		return response.FromError(c, err)
	}
	defer f.Close()

	data, err := h.Processor.Process(f)
	if errors.Is(err, storage.ErrNotImage) {
		return response.Invalid(c, map[string]string{"file": "must be a JPEG, PNG or GIF image"})
	}
	if err != nil {
		return response.FromError(c, err)
	}
	url, err := h.Store.PutPhoto(c.Request().Context(), data, "image/jpeg", ".jpg")
	if err != nil {
		return response.FromError(c, err)
	}
	logger.FromContext(c.Request().Context()).Info().Str("url", url).Int("bytes", len(data)).Msg("photo stored")
	return response.OK(c, http.StatusCreated, map[string]string{"url": url})
}
