package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/models"
	"reviewhub/internal/service"
)

// registerRequest also accepts the snake_case field names older clients send.
type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Phone           string `json:"phone"`
	LegacyFirstName string `json:"first_name"`
	LegacyLastName  string `json:"last_name"`
	LegacyPhone     string `json:"phone_number"`
}

func (r registerRequest) input() service.RegisterInput {
	return service.RegisterInput{
		FirstName:   firstNonEmpty(r.FirstName, r.LegacyFirstName),
		LastName:    firstNonEmpty(r.LastName, r.LegacyLastName),
		Email:       r.Email,
		Password:    r.Password,
		PhoneNumber: firstNonEmpty(r.Phone, r.LegacyPhone),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	UserID  string       `json:"userId"`
	User    userResponse `json:"user"`
}

func newUserResponse(user models.User) userResponse {
	resp := userResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
	if user.PhoneNumber != nil {
		resp.Phone = *user.PhoneNumber
	}
	return resp
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		Message: "User created successfully!",
		Token:   result.Token,
		UserID:  result.User.ID,
		User:    newUserResponse(result.User),
	})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required."})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Message: "Login successful!",
		Token:   result.Token,
		UserID:  result.User.ID,
		User:    newUserResponse(result.User),
	})
}

func (h HandlerSet) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
