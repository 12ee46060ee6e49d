package handlers

import (
	"net/http"

	"clicker-backend/internal/middleware"
	"clicker-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
	resolver    middleware.Authenticator
}

func NewAuthHandler(authService *services.AuthService, resolver middleware.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService, resolver: resolver}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100" example:"clicker1"`
	Password    string `json:"password" binding:"required,min=6" example:"password123"`
	DisplayName string `json:"display_name" binding:"max=40" example:"Alice"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"clicker1"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type AuthResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
}

type UserView struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

type MeResponse struct {
	User *UserView `json:"user"`
}

// setAuthCookie keeps the token in an HTTP-only cookie so the websocket
// upgrade authenticates without any handshake payload.
func setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(middleware.AuthCookie, token, maxAge, "/", "", false, true)
}

// Register godoc
// @Summary      Register a new user
// @Description  Create an account and return a JWT token (also set as cookie)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.authService.Register(req.Username, req.Password, req.DisplayName)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	setAuthCookie(c, token, 24*3600)
	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Login godoc
// @Summary      Login
// @Description  Authenticate and return a JWT token (also set as cookie)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login data"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return
	}

	setAuthCookie(c, token, 24*3600)
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// Logout godoc
// @Summary      Logout
// @Description  Clear the session cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me godoc
// @Summary      Current user
// @Description  Return the authenticated user, or null when anonymous
// @Tags         auth
// @Produce      json
// @Success      200 {object} MeResponse
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.resolver.Resolve(c.Request)
	if !ok {
		c.JSON(http.StatusOK, MeResponse{User: nil})
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusOK, MeResponse{User: nil})
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: &UserView{ID: user.ID, DisplayName: user.DisplayName}})
}
