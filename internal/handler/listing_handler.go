package handler

import (
	"net/http"

	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
)

// CreateListing submits a new listing for moderation.
func (a *API) CreateListing(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input service.ListingInput
	if !bindJSON(c, &input, "invalid listing payload") {
		return
	}

	listing, err := a.listings.Create(actor.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// GetListings returns the full listing index for admins, with status and
// category filters, sorting and pagination.
func (a *API) GetListings(c *gin.Context) {
	listings, err := a.listings.List(listingFilterFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetApprovedListings returns the public slice of the listing index.
func (a *API) GetApprovedListings(c *gin.Context) {
	listings, err := a.listings.ListApproved(listingFilterFromQuery(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetUserListings returns the caller's own listings.
func (a *API) GetUserListings(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	listings, err := a.listings.ListByCreator(actor.ID, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetListing returns a single listing. Unapproved listings are visible only
// to their creator and admins.
func (a *API) GetListing(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := a.listings.Get(id, optionalActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// UpdateListing applies a partial edit. Non-admin edits re-submit the listing
// as pending; the response carries the transition alongside the listing.
func (a *API) UpdateListing(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var patch service.ListingPatch
	if !bindJSON(c, &patch, "invalid listing payload") {
		return
	}

	result, err := a.listings.Update(id, actor, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing":         result.Listing,
		"previous_status": result.PreviousStatus,
		"resubmitted":     result.Resubmitted,
	})
}

// DeleteListing removes a listing and its materialized car.
func (a *API) DeleteListing(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.listings.Delete(id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ModerateListing applies an admin decision to a listing.
func (a *API) ModerateListing(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Status           string `json:"status" binding:"required"`
		ModeratorComment string `json:"moderator_comment"`
	}
	if !bindJSON(c, &body, "status is required") {
		return
	}

	listing, err := a.listings.Moderate(id, actor, service.Decision{
		Status:           body.Status,
		ModeratorID:      actor.ID,
		ModeratorComment: body.ModeratorComment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

func listingFilterFromQuery(c *gin.Context) service.ListingFilter {
	return service.ListingFilter{
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Page:      parseIntQuery(c, "page", 1),
		PerPage:   parseIntQuery(c, "per_page", 20),
	}
}
