package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
	apperrors "github.com/kurihiro0119/github-leak-audit/internal/errors"
	"github.com/kurihiro0119/github-leak-audit/internal/report"
)

// RunFunc performs one audit
type RunFunc func(ctx context.Context) (*domain.Report, error)

// Handler handles API requests
type Handler struct {
	run RunFunc
}

// NewHandler creates a new API handler
func NewHandler(run RunFunc) *Handler {
	return &Handler{
		run: run,
	}
}

// RunAudit runs an audit and returns the report
// POST /api/v1/audits
func (h *Handler) RunAudit(c *gin.Context) {
	rep, err := h.run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": rep,
	})
}

// AuditReportHTML runs an audit and returns the rendered HTML report
// POST /api/v1/audits/report.html
func (h *Handler) AuditReportHTML(c *gin.Context) {
	rep, err := h.run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, rep); err != nil {
		respondError(c, apperrors.NewInternalError("failed to render report", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func statusFor(code apperrors.ErrCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeAuth:
		return http.StatusUnauthorized
	case apperrors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	c.JSON(statusFor(code), gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
