package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/swatch/internal/colour"
	simage "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/version"
)

func (s *Server) welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome!")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.GetInfo(),
	})
}

// processImage reads the multipart "image" field and returns its Record.
func (s *Server) processImage(c *gin.Context) {
	if c.Request.ContentLength > s.opts.MaxUploadBytes {
		s.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	header, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
		return
	}

	record, err := s.extractor.ExtractBytes(c.Request.Context(), data)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("extraction failed", "filename", header.Filename, "status", status,
			"request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.logger.Debug("extracted", "filename", header.Filename,
		"dominant", record.DominantColorName, "pattern", record.Pattern)
	c.JSON(http.StatusOK, record)
}

func (s *Server) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds upload limit"})
}

// statusFor maps pipeline errors to HTTP status codes. Bad input is the
// client's fault; everything else, inference included, is a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, simage.ErrEmptyInput),
		errors.Is(err, simage.ErrInvalidImage),
		errors.Is(err, colour.ErrCropOutOfBounds),
		errors.Is(err, colour.ErrInvalidClusterCount),
		errors.Is(err, colour.ErrInvalidCropSize):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
