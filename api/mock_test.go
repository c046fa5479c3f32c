package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"
	"fintrack/web"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)

	return gormDB, mock
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Mode: "debug", BaseURL: "http://localhost:8080"},
		Session:  config.SessionConfig{CookieName: "fintrack_session", MaxAge: time.Hour},
		JWT:      config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
}

// stubSessions resolves the cookie value "tok" to a fixed session
type stubSessions struct{}

var testSession = &models.Session{ID: "tok", UserID: 1, Email: "ada@example.com", Name: "Ada"}

func (stubSessions) Get(_ context.Context, id string) (*models.Session, error) {
	if id == testSession.ID {
		return testSession, nil
	}
	return nil, service.ErrSessionNotFound
}

// newTestRouter engine with page templates and a stub session loader
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(middleware.LoadSession(stubSessions{}, middleware.NewSessionCookie(testConfig())))
	return r
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie() *http.Cookie {
	return &http.Cookie{Name: "fintrack_session", Value: testSession.ID}
}

var userColumns = []string{"id", "name", "email", "password", "created_at", "updated_at"}

var transactionColumns = []string{
	"id", "user_id", "type", "amount", "description", "category_id",
	"transaction_date", "created_at", "updated_at", "category_name",
}
