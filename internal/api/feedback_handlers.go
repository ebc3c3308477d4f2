package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/feedback"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (s *Server) handleSaveFeedback(c *gin.Context) {
	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	fb, err := req.Feedback()
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if err := s.feedback.Save(c.Request.Context(), fb); err != nil {
		s.logger.WithError(err).Error("Failed to save feedback")
		abortWithDomainError(c, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"assessment_id": fb.AssessmentID,
		"agreed":        fb.Agreed,
	}).Info("Recorded clinician feedback")

	c.JSON(http.StatusCreated, fb)
}

func (s *Server) handleGetFeedback(c *gin.Context) {
	fb, err := s.feedback.Get(c.Request.Context(), c.Param("assessment_id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

func (s *Server) handleListFeedback(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		abortWithError(c, http.StatusBadRequest, domain.ErrValidation, "limit must be between 1 and 500", "limit")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		abortWithError(c, http.StatusBadRequest, domain.ErrValidation, "offset must be non-negative", "offset")
		return
	}

	ctx := c.Request.Context()
	items, err := s.feedback.List(ctx, limit, offset)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	total, err := s.feedback.Count(ctx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if items == nil {
		items = []*feedback.Feedback{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleDeleteFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, domain.ErrValidation, "id must be a positive integer", "id")
		return
	}

	if err := s.feedback.Delete(c.Request.Context(), id); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportFeedback(c *gin.Context) {
	// Probe first so a disabled store still gets a JSON error body.
	if _, err := s.feedback.Count(c.Request.Context()); err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="feedback-export.json"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := s.feedback.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		s.logger.WithError(err).Error("Feedback export failed mid-stream")
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
