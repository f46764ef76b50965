package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Server exposes the classification pipeline over HTTP for the UI and report
// collaborators. Activities are never persisted; only correction audit rows
// touch the database.
type Server struct {
	cfg         Config
	rules       *KeywordRules
	cache       *ClassificationCache
	svc         *EnhancementService
	corrections *CorrectionStore
}

func NewServer(cfg Config, rules *KeywordRules, cache *ClassificationCache, svc *EnhancementService, corrections *CorrectionStore) *Server {
	return &Server{cfg: cfg, rules: rules, cache: cache, svc: svc, corrections: corrections}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	api.POST("/extract", s.handleExtract)
	api.POST("/classify", s.handleClassify)
	api.POST("/classify-batch", s.handleClassifyBatch)
	api.POST("/enhance", s.handleEnhance)
	api.POST("/corrections", s.handleCorrection)
	api.GET("/health", s.handleHealth)
	api.GET("/cache/stats", s.handleCacheStats)
	api.POST("/cache/clear", s.handleCacheClear)
	return r
}

func sendJSONError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

type extractRequest struct {
	Pages [][]Fragment `json:"pages"`
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Pages == nil {
		sendJSONError(c, http.StatusBadRequest, "pages must be a list of fragment lists")
		return
	}
	activities := ExtractActivities(req.Pages, s.rules)
	c.JSON(http.StatusOK, gin.H{"activities": activities, "total": len(activities)})
}

type classifyRequest struct {
	Activity    string   `json:"activity"`
	Context     []string `json:"context"`
	ProjectType string   `json:"project_type"`
}

func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Activity) == "" {
		sendJSONError(c, http.StatusBadRequest, "activity is required")
		return
	}
	result := s.svc.Classify(c.Request.Context(), req.Activity, req.Context, s.projectType(req.ProjectType))
	c.JSON(http.StatusOK, result)
}

type classifyBatchRequest struct {
	Activities  []string `json:"activities"`
	ProjectType string   `json:"project_type"`
}

func (s *Server) handleClassifyBatch(c *gin.Context) {
	var req classifyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Activities == nil {
		sendJSONError(c, http.StatusBadRequest, "activities must be a list")
		return
	}
	activities := make([]Activity, len(req.Activities))
	for i, text := range req.Activities {
		activities[i] = Activity{RawText: text, Name: text}
	}
	results := s.svc.ClassifyBatch(c.Request.Context(), activities, s.projectType(req.ProjectType))
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

type enhanceRequest struct {
	Activities  []Activity `json:"activities"`
	ProjectType string     `json:"project_type"`
}

func (s *Server) handleEnhance(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Activities == nil {
		sendJSONError(c, http.StatusBadRequest, "activities must be a list")
		return
	}
	summary := s.svc.EnhanceActivities(c.Request.Context(), req.Activities, s.projectType(req.ProjectType))
	c.JSON(http.StatusOK, summary)
}

type correctionRequest struct {
	Activity               string   `json:"activity"`
	Context                []string `json:"context"`
	WasFireProtection      bool     `json:"was_fire_protection"`
	ShouldBeFireProtection bool     `json:"should_be_fire_protection"`
	Note                   string   `json:"note"`
}

func (s *Server) handleCorrection(c *gin.Context) {
	var req correctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendJSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Activity) == "" {
		sendJSONError(c, http.StatusBadRequest, "activity is required")
		return
	}
	rec, err := RecordCorrection(s.corrections, s.cache,
		req.Activity, req.Context, req.WasFireProtection, req.ShouldBeFireProtection, req.Note)
	if err != nil {
		sendJSONError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded", "id": rec.ID})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Health(c.Request.Context()))
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"key_count": s.cache.Len(),
		"stats":     s.cache.Stats(),
	})
}

func (s *Server) handleCacheClear(c *gin.Context) {
	removed := s.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "removed": removed})
}

func (s *Server) projectType(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return s.cfg.ProjectType
}
