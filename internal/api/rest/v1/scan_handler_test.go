//go:build unit
// +build unit

package v1

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestJob(status scans.Status) *scans.ScanJob {
	return &scans.ScanJob{
		ID:       "job-123",
		Tool:     "semgrep",
		Kind:     scans.KindSAST,
		Target:   "./src",
		Status:   status,
		Trigger:  scans.TriggerManual,
		QueuedAt: time.Now(),
	}
}

func TestScanHandler_Trigger_Success(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	mockScanService.
		On("Trigger", mock.Anything, "semgrep", "./src", scans.TriggerManual, (*string)(nil)).
		Return(newTestJob(scans.StatusQueued), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/scans", bytes.NewBufferString(`{"tool": "semgrep", "target": "./src"}`))
	req.Header.Set("Content-Type", "application/json")

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Trigger(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"queued"`)
	mockScanService.AssertExpectations(t)
}

func TestScanHandler_Trigger_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"malformed json", `{"tool":`, nil, http.StatusBadRequest},
		{"missing target", `{"tool": "semgrep"}`, nil, http.StatusBadRequest},
		{"flag-like target", `{"tool": "snyk", "target": "--command=/tmp/evil.sh"}`, nil, http.StatusBadRequest},
		{"import-only tool", `{"tool": "sarif", "target": "./src"}`, fmt.Errorf("%w: sarif", scans.ErrImportOnly), http.StatusBadRequest},
		{"unknown tool", `{"tool": "nessus", "target": "."}`, fmt.Errorf("%w: nessus", scans.ErrUnknownTool), http.StatusBadRequest},
		{"throttled", `{"tool": "semgrep", "target": "."}`, scans.ErrThrottled, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockScanService := new(MockScanService)
			handler := NewScanHandler(mockScanService)

			if tt.serviceErr != nil {
				mockScanService.
					On("Trigger", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tt.serviceErr)
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/scans", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			c, _ := gin.CreateTestContext(w)
			c.Request = req

			handler.Trigger(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"message"`)
			mockScanService.AssertExpectations(t)
		})
	}
}

func TestScanHandler_Import_Success(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	report := []byte(`{"results": []}`)
	job := newTestJob(scans.StatusSucceeded)
	job.Trigger = scans.TriggerImport

	mockScanService.
		On("Import", mock.Anything, "semgrep", "./src", report).
		Return(job, nil)

	body, contentType := testutil.CreateReportForm(t, map[string]string{"tool": "semgrep", "target": "./src"}, "semgrep.json", report)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/scans/import", body)
	req.Header.Set("Content-Type", contentType)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Import(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"trigger":"import"`)
	mockScanService.AssertExpectations(t)
}

func TestScanHandler_Import_FilePartName(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	report := []byte(`{"Issues": []}`)
	mockScanService.
		On("Import", mock.Anything, "gosec", "./src", report).
		Return(newTestJob(scans.StatusSucceeded), nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	assert.NoError(t, writer.WriteField("tool", "gosec"))
	assert.NoError(t, writer.WriteField("target", "./src"))
	part, err := writer.CreateFormFile("file", "gosec.json")
	assert.NoError(t, err)
	_, err = part.Write(report)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/scans/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Import(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockScanService.AssertExpectations(t)
}

func TestScanHandler_Import_MissingFile(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	body, contentType := testutil.CreateReportForm(t, map[string]string{"tool": "semgrep", "target": "./src"}, "", nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/scans/import", body)
	req.Header.Set("Content-Type", contentType)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockScanService.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScanHandler_Import_InvalidReport(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	mockScanService.
		On("Import", mock.Anything, "trivy", ".", mock.Anything).
		Return(nil, fmt.Errorf("%w: unexpected end of JSON input", scans.ErrInvalidReport))

	body, contentType := testutil.CreateReportForm(t, map[string]string{"tool": "trivy", "target": "."}, "trivy.json", []byte("{"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/scans/import", body)
	req.Header.Set("Content-Type", contentType)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Import(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid tool report")
}

func TestScanHandler_List_Success(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	mockScanService.
		On("List", mock.Anything, mock.MatchedBy(func(q *scans.ScanQuery) bool {
			return q.Tool == "semgrep" && q.Limit == 5 && q.Status == "failed"
		})).
		Return([]*scans.ScanJob{newTestJob(scans.StatusFailed)}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/scans?tool=semgrep&status=failed&limit=5", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "job-123")
	mockScanService.AssertExpectations(t)
}

func TestScanHandler_List_InvalidQuery(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/scans?status=exploded", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanHandler_GetByID(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	mockScanService.On("GetByID", mock.Anything, "job-123").Return(newTestJob(scans.StatusRunning), nil)
	mockScanService.On("GetByID", mock.Anything, "missing").Return(nil, scans.ErrNotFound)
	mockScanService.On("GetByID", mock.Anything, "broken").Return(nil, errors.New("database is locked"))

	for id, want := range map[string]int{"job-123": http.StatusOK, "missing": http.StatusNotFound, "broken": http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/scans/"+id, nil)

		c, _ := gin.CreateTestContext(w)
		c.Request = req
		c.Params = gin.Params{gin.Param{Key: "id", Value: id}}

		handler.GetByID(c)

		assert.Equal(t, want, w.Code, id)
	}
}

func TestScanHandler_Tools(t *testing.T) {
	mockScanService := new(MockScanService)
	handler := NewScanHandler(mockScanService)

	mockScanService.On("Tools").Return([]string{"probe", "semgrep"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/tools", nil)

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Tools(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tools": ["probe", "semgrep"]}`, w.Body.String())
}
