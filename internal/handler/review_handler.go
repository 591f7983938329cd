package handler

import (
	"net/http"

	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
)

// GetCarReviews returns a car's reviews.
func (a *API) GetCarReviews(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := a.reviews.ListByCar(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// GetUserReviews returns the caller's reviews.
func (a *API) GetUserReviews(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	reviews, err := a.reviews.ListByUser(actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// CreateReview adds the caller's review for a car.
func (a *API) CreateReview(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var body struct {
		CarID   uint   `json:"car_id" binding:"required"`
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if !bindJSON(c, &body, "car_id and rating are required") {
		return
	}

	review, err := a.reviews.Create(body.CarID, actor.ID, service.ReviewInput{
		Rating:  body.Rating,
		Comment: body.Comment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// UpdateReview applies changes to the caller's review.
func (a *API) UpdateReview(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var input service.ReviewInput
	if !bindJSON(c, &input, "invalid review payload") {
		return
	}

	review, err := a.reviews.Update(id, actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// DeleteReview removes the caller's review.
func (a *API) DeleteReview(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.reviews.Delete(id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
