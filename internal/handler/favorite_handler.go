package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddFavorite saves a car to the caller's favorites.
func (a *API) AddFavorite(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	carID, err := parseUintParam(c, "car_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.favorites.Add(actor.ID, carID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveFavorite drops a car from the caller's favorites.
func (a *API) RemoveFavorite(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	carID, err := parseUintParam(c, "car_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.favorites.Remove(actor.ID, carID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFavorites returns the caller's saved cars.
func (a *API) GetFavorites(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	cars, err := a.favorites.ListCars(actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}
