package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/Srujan253/Gupshup/internal/auth"
	"github.com/Srujan253/Gupshup/internal/config"
	"github.com/Srujan253/Gupshup/internal/httpx"
	"github.com/Srujan253/Gupshup/internal/otp"
	"github.com/Srujan253/Gupshup/internal/storage"
	"github.com/Srujan253/Gupshup/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Service struct {
	Store     storage.Store
	JWTSecret string
	JWTTTLMin int
	OTP       otp.Service
}

type signupReq struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type verifyOTPReq struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	OTP      string `json:"otp" binding:"required"`
}

type resendOTPReq struct {
	Email string `json:"email" binding:"required,email"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileReq struct {
	ProfilePic string `json:"profilePic" binding:"required"`
}

type updateNameReq struct {
	FullName string `json:"fullName" binding:"required"`
}

func New(store storage.Store, cfg config.Config) Service {
	return Service{
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		JWTTTLMin: cfg.JWTTTLMin,
		OTP: otp.Service{
			Store:          store,
			Digits:         cfg.OTPDigits,
			TTL:            time.Duration(cfg.OTPTTLSec) * time.Second,
			SendGridAPIKey: cfg.SendGridAPIKey,
			From:           cfg.SendGridFrom,
		},
	}
}

func (s Service) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/auth/send-otp", s.sendOTP)
	rg.POST("/auth/verify-otp", s.verifyOTPAndCreate)
	rg.POST("/auth/resend-otp", s.resendOTP)
	rg.POST("/auth/signup", s.signup)
	rg.POST("/auth/login", s.login)
	rg.POST("/auth/logout", s.logout)
}

func (s Service) RegisterProtected(rg *gin.RouterGroup) {
	rg.GET("/auth/check", s.checkAuth)
	rg.PUT("/auth/update-profile", s.updateProfile)
	rg.PUT("/auth/update-username", s.updateName)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return false
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s Service) sendOTP(c *gin.Context) {
	var req signupReq
	if !bindJSON(c, &req) {
		return
	}

	if _, err := s.Store.UserByEmail(req.Email); err == nil {
		httpx.Err(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}

	if _, err := s.OTP.Generate(req.Email, "signup"); err != nil {
		httpx.Err(c, http.StatusInternalServerError, "OTP send failed")
		return
	}
	httpx.OK(c, gin.H{"message": "OTP sent"})
}

func (s Service) resendOTP(c *gin.Context) {
	var req resendOTPReq
	if !bindJSON(c, &req) {
		return
	}
	if _, err := s.OTP.Generate(req.Email, "signup"); err != nil {
		httpx.Err(c, http.StatusInternalServerError, "OTP send failed")
		return
	}
	httpx.OK(c, gin.H{"message": "OTP sent"})
}

func (s Service) verifyOTPAndCreate(c *gin.Context) {
	var req verifyOTPReq
	if !bindJSON(c, &req) {
		return
	}

	ok, err := s.OTP.Verify(req.Email, "signup", req.OTP)
	if err != nil || !ok {
		httpx.Err(c, http.StatusUnauthorized, "Invalid OTP")
		return
	}
	s.createAccount(c, req.Email, req.FullName, req.Password)
}

// signup without OTP, kept for API compatibility.
func (s Service) signup(c *gin.Context) {
	var req signupReq
	if !bindJSON(c, &req) {
		return
	}

	if _, err := s.Store.UserByEmail(req.Email); err == nil {
		httpx.Err(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}
	s.createAccount(c, req.Email, req.FullName, req.Password)
}

func (s Service) createAccount(c *gin.Context, email, fullName, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	user, err := s.Store.CreateUser(email, fullName, hash)
	if err != nil {
		httpx.Err(c, http.StatusBadRequest, "failed to create user")
		return
	}

	if !s.issueToken(c, user.ID) {
		return
	}
	httpx.Created(c, user)
}

func (s Service) login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.Store.UserByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		httpx.Err(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if !s.issueToken(c, user.ID) {
		return
	}
	httpx.OK(c, user)
}

func (s Service) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	httpx.OK(c, gin.H{"message": "Logged out successfully"})
}

func (s Service) checkAuth(c *gin.Context) {
	uid := auth.MustUserID(c)
	user, err := s.Store.UserByID(uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Err(c, http.StatusNotFound, "user not found")
			return
		}
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}
	httpx.OK(c, user)
}

// updateProfile stores the already-uploaded image URL; the upload itself
// happens elsewhere.
func (s Service) updateProfile(c *gin.Context) {
	uid := auth.MustUserID(c)
	var req updateProfileReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.Store.UpdateProfilePic(uid, req.ProfilePic)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	httpx.OK(c, user)
}

func (s Service) updateName(c *gin.Context) {
	uid := auth.MustUserID(c)
	var req updateNameReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.Store.UpdateFullName(uid, req.FullName)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "failed to update name")
		return
	}
	httpx.OK(c, user)
}

// issueToken sets the auth cookie; on failure it writes the error response
// and reports false.
func (s Service) issueToken(c *gin.Context, userID int64) bool {
	tok, err := auth.NewToken(s.JWTSecret, userID, s.JWTTTLMin)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "token generation failed")
		return false
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, tok, s.JWTTTLMin*60, "/", "", false, true)
	return true
}
