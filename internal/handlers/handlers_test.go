package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	appdb "github.com/glowfit-dev/glowfit/db"
	"github.com/glowfit-dev/glowfit/internal/auth"
	"github.com/glowfit-dev/glowfit/internal/config"
	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/glowfit-dev/glowfit/internal/router"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	require.NoError(t, auth.Init("test-secret"))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, appdb.Migrate(database))

	logger := zap.NewNop()
	cfg := config.Load("")
	cfg.Upload.Dir = t.TempDir()

	r := router.New(router.Deps{
		DB:       database,
		Logger:   logger,
		Config:   cfg,
		Storage:  storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.BaseURL),
		Notifier: services.NewNotifier(logger),
	})

	return &testServer{router: r, db: database, uploadDir: cfg.Upload.Dir}
}

func (s *testServer) createUser(t *testing.T, email string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, s.db.Create(&user).Error)

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	return user, token
}

func (s *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	return recorder
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))

	return env
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), dst))
}
