package handler

import (
	"net/http"

	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
)

// GetUsers returns all accounts. Admin only.
func (a *API) GetUsers(c *gin.Context) {
	users, err := a.users.List(parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser returns a single account. Admin only.
func (a *API) GetUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser applies an admin patch to an account. Admin only.
func (a *API) UpdateUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var patch service.UserPatch
	if !bindJSON(c, &patch, "invalid user payload") {
		return
	}

	user, err := a.users.AdminUpdate(id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes an account. Admin only; self-deletion is rejected.
func (a *API) DeleteUser(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.users.AdminDelete(id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
