package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadImage 处理图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxUploadSize+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "File too large. Max size: 5MB")
			return
		}
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}

	src, err := file.Open()
	if err != nil {
		a.respondInternal(c, "Failed to upload file", err)
		return
	}
	defer src.Close()

	result, err := a.uploads.Save(src, file.Size, file.Header.Get("Content-Type"))
	switch {
	case errors.Is(err, service.ErrUploadTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "File too large. Max size: 5MB")
		return
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		respondError(c, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, GIF, WebP, SVG")
		return
	case errors.Is(err, service.ErrUploadCorrupt):
		respondError(c, http.StatusBadRequest, "File content does not match its type")
		return
	case err != nil:
		a.respondInternal(c, "Failed to upload file", err)
		return
	}

	a.logger.Info("file uploaded", zap.String("filename", result.Filename), zap.Int64("size", file.Size))
	c.JSON(http.StatusOK, result)
}
