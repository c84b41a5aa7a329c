package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/graph"
	"github.com/Domenick1991/airroutes/internal/service/search"
	"github.com/gin-gonic/gin"
)

const formatText = "text"

type FlightHandler struct {
	service search.SearchUseCase
}

type directFlightsResponse struct {
	Date        string           `json:"date"`
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	Flights     []*domain.Flight `json:"flights"`
}

type itinerariesResponse struct {
	Date        string             `json:"date"`
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	Sort        string             `json:"sort,omitempty"`
	Itineraries []domain.Itinerary `json:"itineraries"`
}

type addFlightsResponse struct {
	Added int `json:"added"`
}

func NewFlightHandler(service search.SearchUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights/direct", h.direct)
	router.POST("/flights", h.add)
	router.GET("/itineraries", h.itineraries)
	router.GET("/stats", h.stats)
}

func (h *FlightHandler) direct(c *gin.Context) {
	q, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flights, err := h.service.DirectFlights(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == formatText {
		lines := make([]string, 0, len(flights))
		for _, f := range flights {
			lines = append(lines, f.String())
		}
		c.String(http.StatusOK, strings.Join(lines, "\n"))
		return
	}

	c.JSON(http.StatusOK, directFlightsResponse{
		Date:        q.Date.String(),
		Origin:      q.Origin,
		Destination: q.Destination,
		Flights:     flights,
	})
}

func (h *FlightHandler) itineraries(c *gin.Context) {
	q, err := bindQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := domain.ParseSortOrder(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, err := h.service.Itineraries(c.Request.Context(), q, order)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == formatText {
		blocks := make([]string, 0, len(found))
		for _, it := range found {
			blocks = append(blocks, it.String())
		}
		c.String(http.StatusOK, strings.Join(blocks, "\n"))
		return
	}

	c.JSON(http.StatusOK, itinerariesResponse{
		Date:        q.Date.String(),
		Origin:      q.Origin,
		Destination: q.Destination,
		Sort:        string(order),
		Itineraries: found,
	})
}

// add accepts a JSON array of flights. Every flight is validated before any
// of them reaches the graph.
func (h *FlightHandler) add(c *gin.Context) {
	var flights []*domain.Flight
	if err := json.NewDecoder(c.Request.Body).Decode(&flights); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(flights) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no flights given"})
		return
	}
	for i, f := range flights {
		if f == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("flight %d is null", i)})
			return
		}
	}

	added, err := h.service.AddFlights(c.Request.Context(), "api", flights)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "added": added})
		return
	}
	c.JSON(http.StatusCreated, addFlightsResponse{Added: added})
}

func (h *FlightHandler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats(c.Request.Context()))
}

func bindQuery(c *gin.Context) (search.Query, error) {
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		return search.Query{}, err
	}
	return search.Query{
		Date:        date,
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidFlight),
		errors.Is(err, domain.ErrDegenerateQuery):
		return http.StatusBadRequest
	case errors.Is(err, graph.ErrSearchLimitExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
