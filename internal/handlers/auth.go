package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shresth17/SahayAI/internal/cookies"
	"github.com/Shresth17/SahayAI/internal/middleware"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/security"
	"github.com/Shresth17/SahayAI/internal/service"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Gender   string `json:"gender"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Role     string `json:"role"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Gender:   user.Gender,
		Phone:    user.Phone,
		Address:  user.Address,
		City:     user.City,
		State:    user.State,
		District: user.District,
		Pincode:  user.Pincode,
		Role:     string(user.Role),
	}
}

func claimResponse(claim security.UserClaim) userResponse {
	return userResponse{
		ID:       claim.ID,
		Email:    claim.Email,
		Name:     claim.Name,
		Gender:   claim.Gender,
		Phone:    claim.Phone,
		Address:  claim.Address,
		City:     claim.City,
		State:    claim.State,
		District: claim.District,
		Pincode:  claim.Pincode,
		Role:     claim.Role,
	}
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Profile: models.Profile{
			Name:     req.Name,
			Gender:   req.Gender,
			Phone:    req.Phone,
			Address:  req.Address,
			City:     req.City,
			State:    req.State,
			District: req.District,
			Pincode:  req.Pincode,
		},
	})
	if err != nil {
		if err == service.ErrEmailTaken {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
			return
		}
		h.internalError(c, err, "signup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case service.ErrInvalidPassword:
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Password"})
		default:
			h.internalError(c, err, "login failed")
		}
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  newUserResponse(result.User),
	})
}

// TokenInfo resolves a raw token to its embedded claim. The client uses
// it to restore its view of the logged-in user.
func (h HandlerSet) TokenInfo(c *gin.Context) {
	claims := h.auth.VerifyToken(c.Param("token"))
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": claimResponse(claims.User)})
}

// Logout clears the session cookie. There is no server-side session
// state to tear down.
func (h HandlerSet) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type profileUpdateRequest struct {
	Name     string `json:"name" binding:"required"`
	Gender   string `json:"gender"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
}

func (h HandlerSet) ProfileUpdate(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.auth.UpdateProfile(c.Request.Context(), claims.User.ID, models.Profile{
		Name:     req.Name,
		Gender:   req.Gender,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		District: req.District,
		Pincode:  req.Pincode,
	})
	if err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.internalError(c, err, "profile update failed")
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  newUserResponse(result.User),
	})
}

func (h HandlerSet) Username(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": claimResponse(claims.User)})
}

// sessionCookieOptions is shared between the set and clear paths so their
// attributes can never drift apart.
func (h HandlerSet) sessionCookieOptions() cookies.Options {
	sec := h.cfg.Security
	return cookies.Options{
		Path:     "/",
		Domain:   sec.CookieDomain,
		MaxAge:   sec.SessionTTL,
		Secure:   sec.CookieSecure,
		HTTPOnly: sec.CookieHTTPOnly,
		SameSite: sec.CookieSameSite,
	}
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string) {
	c.Writer.Header().Add("Set-Cookie", cookies.Write(h.cfg.Security.CookieName, token, h.sessionCookieOptions()))
}

func (h HandlerSet) clearSessionCookie(c *gin.Context) {
	for _, value := range cookies.Delete(h.cfg.Security.CookieName, h.sessionCookieOptions()) {
		c.Writer.Header().Add("Set-Cookie", value)
	}
}

// internalError logs the detailed cause and returns a sanitized body.
func (h HandlerSet) internalError(c *gin.Context, err error, msg string) {
	h.log.Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
