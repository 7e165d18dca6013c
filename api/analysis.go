package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/Domenick1991/farecast/internal/service/analysis"
	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	service analysis.AnalysisUseCase
}

type analyzeRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	TripType    string `json:"trip_type"`
	TravelClass string `json:"travel_class"`
	DurationMin int    `json:"duration_min"`
	DurationMax int    `json:"duration_max"`
	Adults      int    `json:"adults"`
	Child       int    `json:"child"`
	Infants     int    `json:"infants"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Refresh     bool   `json:"refresh"`
}

func NewAnalysisHandler(service analysis.AnalysisUseCase) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

func (h *AnalysisHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.analyze)
}

func (h *AnalysisHandler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := analysis.AnalyzeInput{
		Origin:        req.Origin,
		Destination:   req.Destination,
		TripType:      tripTypeOrDefault(req.TripType),
		TravelClass:   travelClassOrDefault(req.TravelClass),
		DurationRange: durationOrDefault(req.DurationMin, req.DurationMax),
		Passengers:    domain.Passengers{Adults: req.Adults, Child: req.Child, Infants: req.Infants},
		Refresh:       req.Refresh,
	}

	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		input.EndDate = &end
	}
	// date-range validation happens here, not in the engine
	if input.StartDate != nil && input.EndDate != nil && !input.EndDate.After(*input.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func tripTypeOrDefault(v string) domain.TripType {
	if domain.TripType(v) == domain.TripOneWay {
		return domain.TripOneWay
	}
	return domain.TripRoundTrip
}

func travelClassOrDefault(v string) domain.TravelClass {
	switch domain.TravelClass(v) {
	case domain.ClassBusiness:
		return domain.ClassBusiness
	case domain.ClassFirst:
		return domain.ClassFirst
	default:
		return domain.ClassEconomy
	}
}

func durationOrDefault(min, max int) domain.DurationRange {
	if min <= 0 && max <= 0 {
		return domain.DurationRange{Min: 3, Max: 14}
	}
	if max < min {
		max = min
	}
	return domain.DurationRange{Min: min, Max: max}
}

func parseDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", v)
}
