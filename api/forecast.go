package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/farecast/internal/service/forecast"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service forecast.ForecastUseCase
}

func NewForecastHandler(service forecast.ForecastUseCase) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.predict)
	router.GET("/range", h.predictRange)
	router.GET("/trend", h.trend)
}

func (h *ForecastHandler) predict(c *gin.Context) {
	origin, destination, ok := routeParams(c)
	if !ok {
		return
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	prediction, err := h.service.Predict(c.Request.Context(), origin, destination, date, tripTypeOrDefault(c.Query("trip_type")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// nil means insufficient data, which is a valid "no data" answer
	c.JSON(http.StatusOK, gin.H{"prediction": prediction})
}

func (h *ForecastHandler) predictRange(c *gin.Context) {
	origin, destination, ok := routeParams(c)
	if !ok {
		return
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}

	predictions, err := h.service.PredictRange(c.Request.Context(), origin, destination, start, end, tripTypeOrDefault(c.Query("trip_type")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

func (h *ForecastHandler) trend(c *gin.Context) {
	origin, destination, ok := routeParams(c)
	if !ok {
		return
	}
	daysAhead := 30
	if v := c.Query("days_ahead"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days_ahead"})
			return
		}
		daysAhead = parsed
	}

	trend, err := h.service.PriceTrend(c.Request.Context(), origin, destination, tripTypeOrDefault(c.Query("trip_type")), daysAhead)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

func routeParams(c *gin.Context) (string, string, bool) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are required"})
		return "", "", false
	}
	return origin, destination, true
}
