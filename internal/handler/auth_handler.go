package handler

import (
	"net/http"

	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
)

// Register creates a new account.
func (a *API) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.users.Register(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login checks credentials and issues a bearer token.
func (a *API) Login(c *gin.Context) {
	var credentials struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &credentials, "username and password are required") {
		return
	}

	user, err := a.users.Authenticate(credentials.Username, credentials.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := a.issueToken(user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "user": user})
}

// Me returns the authenticated account.
func (a *API) Me(c *gin.Context) {
	user, ok := contextUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
