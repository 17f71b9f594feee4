package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/internal/feedback"
)

// handleAnalyzePatient runs the full deprescribing analysis pipeline
func (s *Server) handleAnalyzePatient(c *gin.Context) {
	var input domain.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	response, err := s.analyzer.AnalyzePatient(c.Request.Context(), &input)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			s.badRequest(c, validationErr.Error())
			return
		}
		s.logger.WithError(err).WithField("correlation_id", c.GetString("correlation_id")).
			Error("Patient analysis failed")
		s.internalError(c, "analysis failed")
		return
	}

	c.JSON(http.StatusOK, response)
}

// handleCheckInteractions runs the standalone herb-drug interaction check
func (s *Server) handleCheckInteractions(c *gin.Context) {
	var req domain.InteractionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(req.Herbs) == 0 && len(req.Medications) == 0 {
		s.badRequest(c, "at least one herb or medication is required")
		return
	}

	response, err := s.analyzer.CheckInteractions(c.Request.Context(), &req)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			s.badRequest(c, validationErr.Error())
			return
		}
		s.logger.WithError(err).Error("Interaction check failed")
		s.internalError(c, "interaction check failed")
		return
	}

	c.JSON(http.StatusOK, response)
}

// handleTaperPlan generates a standalone taper plan for one medication
func (s *Server) handleTaperPlan(c *gin.Context) {
	var req domain.TaperPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.DrugName) == "" {
		s.badRequest(c, "drug_name is required")
		return
	}

	plan := s.planner.GenerateTaperPlan(c.Request.Context(), &req)
	c.JSON(http.StatusOK, plan)
}

// handleReferenceDrugs serves the drug-side reference tables
func (s *Server) handleReferenceDrugs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"acb_scores":             s.ruleTables.ACBScores,
		"drug_classes":           s.ruleTables.DrugClasses,
		"therapeutic_categories": s.ruleTables.TherapeuticCategories,
		"taper_protocols":        s.ruleTables.TaperProtocols,
		"time_to_benefit":        s.ruleTables.TimeToBenefit,
	})
}

// handleReferenceHerbs serves the herb interaction reference tables
func (s *Server) handleReferenceHerbs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"known_interactions": s.ruleTables.KnownHerbInteractions,
		"herb_profiles":      s.ruleTables.HerbProfiles,
	})
}

// handleSaveFeedback records clinician feedback on a verdict
func (s *Server) handleSaveFeedback(c *gin.Context) {
	var fb feedback.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if fb.AnalysisID == "" || fb.MedicationName == "" {
		s.badRequest(c, "analysis_id and medication_name are required")
		return
	}
	if !validCategory(fb.SuggestedCategory) || !validCategory(fb.ClinicianCategory) {
		s.badRequest(c, "categories must be one of RED, YELLOW, GREEN")
		return
	}

	if err := s.feedbackStore.Save(c.Request.Context(), &fb); err != nil {
		s.logger.WithError(err).Error("Failed to save feedback")
		s.internalError(c, "failed to save feedback")
		return
	}

	c.JSON(http.StatusOK, fb)
}

// handleGetFeedback fetches feedback for one medication verdict
func (s *Server) handleGetFeedback(c *gin.Context) {
	analysisID := c.Param("analysisID")
	medication := c.Param("medication")

	fb, err := s.feedbackStore.Get(c.Request.Context(), analysisID, medication)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load feedback")
		s.internalError(c, "failed to load feedback")
		return
	}
	if fb == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
		return
	}

	c.JSON(http.StatusOK, fb)
}

// handleListFeedback lists feedback entries with pagination
func (s *Server) handleListFeedback(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	entries, err := s.feedbackStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list feedback")
		s.internalError(c, "failed to list feedback")
		return
	}
	total, err := s.feedbackStore.Count(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to count feedback")
		s.internalError(c, "failed to count feedback")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"count":    len(entries),
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// handleFeedbackSummary reports aggregate clinician agreement statistics
func (s *Server) handleFeedbackSummary(c *gin.Context) {
	summary, err := s.feedbackStore.Summary(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to summarize feedback")
		s.internalError(c, "failed to summarize feedback")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleDeleteFeedback deletes a feedback entry by ID
func (s *Server) handleDeleteFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.badRequest(c, "invalid feedback id")
		return
	}

	if err := s.feedbackStore.Delete(c.Request.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to delete feedback")
		s.internalError(c, "failed to delete feedback")
		return
	}

	c.Status(http.StatusNoContent)
}

// handleExportFeedback streams all feedback as a JSON document
func (s *Server) handleExportFeedback(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="feedback-export.json"`)

	if err := s.feedbackStore.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		s.logger.WithError(err).Error("Failed to export feedback")
		s.internalError(c, "failed to export feedback")
	}
}

// handleImportFeedback imports a previously exported feedback document
func (s *Server) handleImportFeedback(c *gin.Context) {
	imported, skipped, err := s.feedbackStore.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		s.badRequest(c, "import failed: "+err.Error())
		return
	}

	s.logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("Feedback import completed")

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  skipped,
	})
}

func (s *Server) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		domain.NewCDSError(domain.ErrValidation, message, "", c.GetString("correlation_id")))
}

func (s *Server) internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError,
		domain.NewCDSError(domain.ErrInternalServer, message, "", c.GetString("correlation_id")))
}

func validCategory(cat feedback.Category) bool {
	switch cat {
	case feedback.CategoryRed, feedback.CategoryYellow, feedback.CategoryGreen:
		return true
	}
	return false
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
