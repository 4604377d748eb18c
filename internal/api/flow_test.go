package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRunnerServer wires the router to a real runner and memory store.
func newRunnerServer(t *testing.T, classifier task.Classifier) (http.Handler, string) {
	t.Helper()
	_, log := logger.SetupTestLogger(t)
	dir := t.TempDir()

	store := task.NewMemoryStore(0, log)
	runner := task.NewTaskRunner(store, classifier, task.TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   10,
		UploadDir:   dir,
	}, log)
	require.NoError(t, runner.Start())
	t.Cleanup(runner.Stop)

	return NewRouter(RouterConfig{
		Recommender: &fakeRecommender{result: sampleResult()},
		Submitter:   runner,
		Tasks:       store,
		Logger:      log,
	}), dir
}

func uploadAndPoll(t *testing.T, handler http.Handler) map[string]any {
	t.Helper()
	body, contentType := multipartBody(t, ImageField, "skin.jpg", []byte("not really a jpeg"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.TaskID)

	var record map[string]any
	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, accepted.StatusURL, nil))
		if w.Code != http.StatusOK {
			return false
		}
		record = nil
		if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
			return false
		}
		return record["status"] != string(task.TaskStatusProcessing)
	}, 2*time.Second, 10*time.Millisecond)

	return record
}

func TestUploadThenPollCompleted(t *testing.T) {
	handler, dir := newRunnerServer(t, task.ClassifierFunc(func(ctx context.Context, path string) (map[string]any, error) {
		return map[string]any{"predicted_class": "rosacea", "confidence": 0.8}, nil
	}))

	record := uploadAndPoll(t, handler)

	assert.Equal(t, "completed", record["status"])
	assert.Equal(t, "rosacea", record["prediction"])
	assert.Equal(t, 0.8, record["confidence"])
	assert.Equal(t, map[string]any{"predicted_class": "rosacea", "confidence": 0.8}, record["full_output"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadThenPollFailed(t *testing.T) {
	handler, dir := newRunnerServer(t, task.ClassifierFunc(func(ctx context.Context, path string) (map[string]any, error) {
		return nil, errors.New("model crashed")
	}))

	record := uploadAndPoll(t, handler)

	assert.Equal(t, "failed", record["status"])
	assert.Equal(t, "model crashed", record["error"])
	assert.NotContains(t, record, "prediction")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
