package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/recommend"
	"github.com/phrazzld/skincare-api/internal/task"
	"github.com/stretchr/testify/require"
)

type fakeRecommender struct {
	mu        sync.Mutex
	result    recommend.Result
	condition string
	allergies []string
	calls     int
}

func (f *fakeRecommender) Recommend(_ context.Context, condition string, allergies []string) recommend.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.condition = condition
	f.allergies = allergies
	result := f.result
	if !result.Failed() {
		result.Condition = condition
	}
	return result
}

type fakeSubmitter struct {
	id      string
	err     error
	payload []byte
}

func (f *fakeSubmitter) Submit(_ context.Context, upload io.Reader) (string, error) {
	data, err := io.ReadAll(upload)
	if err != nil {
		return "", err
	}
	f.payload = data
	return f.id, f.err
}

type fakeTasks struct {
	records map[string]task.Record
	err     error
}

func (f *fakeTasks) Get(_ context.Context, id string) (task.Record, error) {
	if f.err != nil {
		return task.Record{}, f.err
	}
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return task.NotFoundRecord(), nil
}

func sampleResult() recommend.Result {
	return recommend.Result{
		Supplements:  []recommend.Supplement{{Name: "Zinc", Benefit: "reduces inflammation", Dosage: "30 mg"}},
		HealthyFoods: []recommend.Food{{Name: "Salmon", Benefit: "omega-3", Nutrients: "EPA"}},
		FoodsToAvoid: []string{"dairy"},
	}
}

type testServer struct {
	handler     http.Handler
	recommender *fakeRecommender
	submitter   *fakeSubmitter
	tasks       *fakeTasks
	logs        *logger.TestLogBuffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logBuf, log := logger.SetupTestLogger(t)

	ts := &testServer{
		recommender: &fakeRecommender{result: sampleResult()},
		submitter:   &fakeSubmitter{id: "task-123"},
		tasks:       &fakeTasks{records: map[string]task.Record{}},
		logs:        logBuf,
	}
	ts.handler = NewRouter(RouterConfig{
		Recommender:    ts.recommender,
		Submitter:      ts.submitter,
		Tasks:          ts.tasks,
		MaxUploadBytes: 1 << 20,
		Logger:         log,
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// multipartBody builds a form with one file part. An empty filename
// produces a part without a filename attribute, as browsers send for an
// empty file input.
func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	var part io.Writer
	var err error
	if filename == "" {
		part, err = mw.CreateFormField(field)
	} else {
		part, err = mw.CreateFormFile(field, filename)
	}
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}
