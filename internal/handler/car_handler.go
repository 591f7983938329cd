package handler

import (
	"net/http"

	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
)

// GetCars returns catalogue cars matching query-string filters.
func (a *API) GetCars(c *gin.Context) {
	cars, err := a.cars.List(carFilterFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

// SearchCars returns catalogue cars matching a filter payload. Same
// semantics as GetCars; the body form exists for the frontend's search form.
func (a *API) SearchCars(c *gin.Context) {
	var filter service.CarFilter
	if !bindJSON(c, &filter, "invalid search payload") {
		return
	}
	filter.Page = parseIntQuery(c, "page", 1)
	filter.PerPage = parseIntQuery(c, "per_page", 20)

	cars, err := a.cars.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

// GetCar returns a single catalogue car.
func (a *API) GetCar(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	car, err := a.cars.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car": car})
}

// CreateCar adds a catalogue car directly, bypassing the listing workflow.
// Admin only.
func (a *API) CreateCar(c *gin.Context) {
	var input service.CarInput
	if !bindJSON(c, &input, "invalid car payload") {
		return
	}

	car, err := a.cars.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"car": car})
}

// UpdateCar applies a partial update to a catalogue car. Admin only.
func (a *API) UpdateCar(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var input service.CarInput
	if !bindJSON(c, &input, "invalid car payload") {
		return
	}

	car, err := a.cars.Update(id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car": car})
}

// DeleteCar removes a catalogue car. Admin only.
func (a *API) DeleteCar(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.cars.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func carFilterFromQuery(c *gin.Context) service.CarFilter {
	return service.CarFilter{
		Brand:        c.Query("brand"),
		Model:        c.Query("model"),
		Category:     c.Query("category"),
		YearFrom:     parseIntQuery(c, "year_from", 0),
		YearTo:       parseIntQuery(c, "year_to", 0),
		MileageFrom:  parseIntQuery(c, "mileage_from", 0),
		MileageTo:    parseIntQuery(c, "mileage_to", 0),
		EngineType:   c.Query("engine_type"),
		Transmission: c.Query("transmission"),
		BodyType:     c.Query("body_type"),
		Color:        c.Query("color"),
		Page:         parseIntQuery(c, "page", 1),
		PerPage:      parseIntQuery(c, "per_page", 20),
	}
}
