package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricelens/backend/internal/domain"
)

// maxImageBytes caps uploaded image size (clients downscale before upload)
const maxImageBytes = 10 << 20

// ScanRunner is the scan pipeline as the handler sees it
type ScanRunner interface {
	Scan(ctx context.Context, request *domain.ScanRequest) (*domain.ProductResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scans ScanRunner
}

// NewHandler creates a new HTTP handler
func NewHandler(scans ScanRunner) *Handler {
	return &Handler{scans: scans}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// scanURLRequest is the JSON body accepted when the image is already hosted
type scanURLRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// Scan handles a scan request: either a multipart image upload or a JSON
// body with an already-public image URL.
func (h *Handler) Scan(c *gin.Context) {
	if h.scans == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "scan service not configured",
		})
		return
	}

	request, err := parseScanRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.scans.Scan(c.Request.Context(), request)
	if err != nil {
		status, message := mapScanError(err)
		c.JSON(status, gin.H{
			"error":  message,
			"scanId": c.GetString(scanIDKey),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scanId": c.GetString(scanIDKey),
		"result": result,
	})
}

// parseScanRequest extracts the image from a multipart form or a JSON body
func parseScanRequest(c *gin.Context) (*domain.ScanRequest, error) {
	if c.ContentType() == "multipart/form-data" {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return nil, errors.New("multipart request must carry an 'image' file")
		}
		if fileHeader.Size > maxImageBytes {
			return nil, errors.New("image exceeds the 10MB limit")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, errors.New("could not read uploaded image")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil || len(data) == 0 {
			return nil, errors.New("could not read uploaded image")
		}
		return &domain.ScanRequest{ImageData: data, FileName: fileHeader.Filename}, nil
	}

	var body scanURLRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, errors.New("request must be a multipart image or JSON with imageUrl")
	}
	return &domain.ScanRequest{ImageURL: body.ImageURL}, nil
}

// mapScanError translates the domain error taxonomy to HTTP statuses
func mapScanError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid scan request"
	case errors.Is(err, domain.ErrIdentificationFailure):
		return http.StatusUnprocessableEntity, "could not identify a product in the image"
	case errors.Is(err, domain.ErrNoQualifyingCandidate):
		return http.StatusNotFound, "could not price this item"
	case errors.Is(err, domain.ErrUploadFailure):
		return http.StatusBadGateway, "image upload failed"
	case errors.Is(err, domain.ErrSearchFailure):
		return http.StatusBadGateway, "shopping search failed"
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusServiceUnavailable, "service credentials not configured"
	default:
		return http.StatusInternalServerError, "scan failed"
	}
}
