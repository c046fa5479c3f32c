package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/config"
	"fintrack/logger"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgDatabaseError      = "Database error. Please try again."
	msgInvalidCredentials = "Invalid email or password"
	msgEmailExists        = "Email already exists."
)

// AuthHandler signup, login and logout
type AuthHandler struct {
	cfg          *config.Config
	users        *service.UserService
	sessions     *service.SessionStore
	cookie       middleware.SessionCookie
	emailService *service.EmailService
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		users:        service.NewUserService(db, cfg.Security.BcryptCost),
		sessions:     service.NewSessionStore(db, cfg.Session.MaxAge),
		cookie:       middleware.NewSessionCookie(cfg),
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// Sessions session store shared with the session loader and the janitor
func (h *AuthHandler) Sessions() *service.SessionStore {
	return h.sessions
}

// LoginForm login form fields
type LoginForm struct {
	Email    string `form:"email" json:"email" example:"ada@example.com"`
	Password string `form:"password" json:"password" example:"password123"`
}

// SignupForm signup form fields
type SignupForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginResponse API login result
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// Home landing page
func (h *AuthHandler) Home(c *gin.Context) {
	data := gin.H{"isLoggedIn": middleware.IsLoggedIn(c)}
	if sess := middleware.CurrentSession(c); sess != nil {
		data["userName"] = sess.Name
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// LoginPage login form; logged-in users go straight to the dashboard
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.IsLoggedIn(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"error": ""})
}

// Login checks the credentials, starts a session and sets its cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	_ = c.ShouldBind(&form)
	email := service.NormalizeEmail(form.Email)
	log := logger.FromContext(c).With("email", email)

	user, err := h.users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		status, msg := loginFailure(log, err)
		c.HTML(status, "login.html", gin.H{"error": msg, "email": email})
		return
	}

	// drop any session the browser already had
	if old := h.cookie.Token(c); old != "" {
		if err := h.sessions.Destroy(c.Request.Context(), old); err != nil {
			log.Warn("destroy previous session failed", "error", err)
		}
	}

	sess, err := h.sessions.Create(c.Request.Context(), user)
	if err != nil {
		log.Error("create session failed", "error", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": msgDatabaseError, "email": email})
		return
	}

	h.cookie.Set(c, sess.ID)
	log.Info("user logged in", "user_id", user.ID)
	c.Redirect(http.StatusFound, "/dashboard")
}

func loginFailure(log *slog.Logger, err error) (int, string) {
	switch {
	case service.IsPersistence(err):
		log.Error("login error", "error", err)
		return http.StatusInternalServerError, msgDatabaseError
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Warn("failed login attempt")
		return http.StatusUnauthorized, msgInvalidCredentials
	default:
		log.Warn("login rejected", "reason", err.Error())
		return http.StatusBadRequest, err.Error()
	}
}

// SignupPage signup form; logged-in users go straight to the dashboard
func (h *AuthHandler) SignupPage(c *gin.Context) {
	if middleware.IsLoggedIn(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "signup.html", gin.H{"error": ""})
}

// Signup creates an account and sends the user to the login page.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	_ = c.ShouldBind(&form)
	log := logger.FromContext(c)

	user, err := h.users.Signup(c.Request.Context(), service.SignupInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		data := gin.H{
			"name":  strings.TrimSpace(form.Name),
			"email": service.NormalizeEmail(form.Email),
		}
		status := http.StatusInternalServerError
		switch {
		case service.IsValidation(err):
			status, data["error"] = http.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrDuplicateEmail):
			status, data["error"] = http.StatusConflict, msgEmailExists
		default:
			log.Error("signup error", "error", err)
			data["error"] = msgDatabaseError
		}
		c.HTML(status, "signup.html", data)
		return
	}

	log.Info("new user created", "email", user.Email, "user_id", user.ID)
	if h.emailService.Enabled() {
		go h.sendWelcome(log, user)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) sendWelcome(log *slog.Logger, user *models.User) {
	loginURL := strings.TrimRight(h.cfg.Server.BaseURL, "/") + "/login"
	if err := h.emailService.SendWelcomeEmail(user.Email, user.Name, loginURL); err != nil {
		log.Warn("welcome email failed", "email", user.Email, "error", err)
	}
}

// Logout destroys the session and its cookie, then goes home.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.cookie.Token(c); token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			logger.FromContext(c).Error("destroy session failed", "error", err)
		}
	}
	h.cookie.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

// APILogin API login
// @Summary Log in
// @Description Checks email and password and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginForm true "credentials"
// @Success 200 {object} Response{data=LoginResponse} "logged in"
// @Failure 400 {object} Response "missing fields"
// @Failure 401 {object} Response "invalid email or password"
// @Failure 429 {object} map[string]interface{} "too many attempts"
// @Failure 500 {object} Response "server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) APILogin(c *gin.Context) {
	var req LoginForm
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Please enter email and password")
		return
	}
	log := logger.FromContext(c).With("email", service.NormalizeEmail(req.Email))

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := loginFailure(log, err)
		if status == http.StatusInternalServerError {
			msg = SafeErrorMessage(err, msgDatabaseError)
		}
		Error(c, status, msg)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, h.cfg.JWT.ExpireTime)
	if err != nil {
		log.Error("generate token failed", "error", err)
		InternalError(c, "Failed to generate token")
		return
	}

	log.Info("api login", "user_id", user.ID)
	SuccessWithMessage(c, "Login successful", LoginResponse{
		Token:    token,
		UserInfo: *user,
	})
}

// Profile current user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response "unauthorized"
// @Failure 404 {object} Response "user not found"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), middleware.GetCurrentUserID(c))
	if errors.Is(err, service.ErrNotFound) {
		NotFound(c, "User not found")
		return
	}
	if err != nil {
		logger.FromContext(c).Error("load profile failed", "error", err)
		InternalError(c, SafeErrorMessage(err, msgDatabaseError))
		return
	}
	Success(c, user)
}
