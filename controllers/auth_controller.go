package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/models"
	"github.com/vnkhanh/feedback-server/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerReq struct {
	Username      string  `json:"username" binding:"required,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	FullName      *string `json:"full_name"`
	PlainPassword string  `json:"plain_password" binding:"required"`
}

type publicUser struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Disabled bool    `json:"disabled"`
}

func toPublicUser(u *models.User) publicUser {
	return publicUser{Username: u.Username, Email: u.Email, FullName: u.FullName, Disabled: u.Disabled}
}

// POST /users
func (h *AuthController) Register(c *gin.Context) {
	var req registerReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.PlainPassword,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPublicUser(user))
}

// loginReq accepts the OAuth2 password form as well as JSON.
type loginReq struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// POST /token
func (h *AuthController) Token(c *gin.Context) {
	// Form (OAuth2 password flow) or JSON
	var req loginReq
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GET /users/me
func (h *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, toPublicUser(middleware.CurrentUser(c)))
}

// POST /auth/google/login
func (h *AuthController) GoogleLogin(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.GoogleLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
