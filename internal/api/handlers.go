package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "RA risk API is running",
		"endpoints": gin.H{
			"health_check":             "GET /api/health",
			"progress_tracking":        "POST /api/compare-ra-risk",
			"single_prediction":        "POST /api/predict-ra-risk",
			"generate_recommendations": "POST /api/generate-recommendations",
			"feedback":                 "POST /api/v1/feedback",
		},
		"model_loaded": s.engine.ModelAvailable(),
		"model_name":   s.engine.ModelName(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	modelType := RuleOnlyModelName
	if s.engine.ModelAvailable() {
		modelType = s.engine.ModelName()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"message":      "RA risk prediction API",
		"model_loaded": s.engine.ModelAvailable(),
		"model_type":   modelType,
		"timestamp":    time.Now().UTC(),
	})
}

func (s *Server) handleRecommendationsHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"message":      "Recommendations API is running",
		"model_loaded": s.engine.ModelAvailable(),
		"endpoints":    []string{"POST /api/generate-recommendations"},
	})
}

func (s *Server) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReadiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true
	for _, chk := range s.readiness {
		if err := chk.Check(ctx); err != nil {
			ready = false
			checks[chk.Name] = err.Error()
			s.logger.WithError(err).WithField("check", chk.Name).Warn("Readiness check failed")
			continue
		}
		checks[chk.Name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

func (s *Server) handlePredict(c *gin.Context) {
	var req PredictRequest
	if !bindJSON(c, &req) {
		return
	}

	panel, err := req.Panel()
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	prediction := s.engine.Predict(c.Request.Context(), panel)
	c.JSON(http.StatusOK, NewPredictResponse(prediction))
}

func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if !bindJSON(c, &req) {
		return
	}

	previous, current, months, err := req.Panels()
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	result := s.engine.Compare(c.Request.Context(), previous, current, months)
	c.JSON(http.StatusOK, NewCompareResponse(result))
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req RecommendRequest
	if !bindJSON(c, &req) {
		return
	}

	panel, lifestyle, err := req.Inputs()
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	assessment, set := s.engine.Recommend(c.Request.Context(), panel, lifestyle)
	c.JSON(http.StatusOK, NewRecommendResponse(assessment, set))
}
