package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/glowfit-dev/glowfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) uploadVideo(t *testing.T, token, filename, mimeType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename="%s"`, filename))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/videos", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	return recorder
}

func TestVideoUploadStoresFileAndRow(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	recorder := server.uploadVideo(t, token, "训练示范.mp4", "video/mp4", []byte("fake video bytes"))
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var video models.UserVideo
	require.NoError(t, server.db.Where("user_id = ?", user.ID).First(&video).Error)
	assert.Equal(t, "训练示范.mp4", video.OriginalName)
	assert.Equal(t, "video/mp4", video.MimeType)
	assert.EqualValues(t, len("fake video bytes"), video.Size)

	data, err := os.ReadFile(video.Path)
	require.NoError(t, err)
	assert.Equal(t, "fake video bytes", string(data))
}

func TestVideoUploadRejectsUnsupportedMime(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	recorder := server.uploadVideo(t, token, "notes.txt", "text/plain", []byte("not a video"))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "不支持的视频格式")

	// Nothing reaches the database or the disk.
	var count int64
	require.NoError(t, server.db.Model(&models.UserVideo{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	entries, err := os.ReadDir(server.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVideoDeleteBlockedWhileLinked(t *testing.T) {
	server := newTestServer(t)
	user, token := server.createUser(t, "a@example.com")

	recorder := server.uploadVideo(t, token, "clip.mp4", "video/mp4", []byte("bytes"))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var video models.UserVideo
	require.NoError(t, server.db.Where("user_id = ?", user.ID).First(&video).Error)

	item := models.FitnessItem{
		UserID: user.ID,
		Name:   "深蹲",
		Status: models.PlanStatusActive,
		Videos: []models.UserVideo{video},
	}
	require.NoError(t, server.db.Create(&item).Error)

	recorder = server.request(t, http.MethodDelete, fmt.Sprintf("/api/videos/%d", video.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "该视频已被训练项目使用")

	_, err := os.Stat(video.Path)
	assert.NoError(t, err, "blocked delete keeps the file")

	// Unlink, then the delete goes through and the file disappears.
	require.NoError(t, server.db.Model(&item).Association("Videos").Clear())

	recorder = server.request(t, http.MethodDelete, fmt.Sprintf("/api/videos/%d", video.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	_, err = os.Stat(video.Path)
	assert.True(t, os.IsNotExist(err))
}
