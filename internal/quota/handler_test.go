package quota_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"knowledgebase-backend/internal/bootstrap"
	"knowledgebase-backend/internal/shared/config"
)

func TestUsageEndpointReflectsUploads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(config.Config{
		Port:             "0",
		CORSAllowOrigin:  []string{"http://localhost:5173"},
		LocalStoreDir:    t.TempDir(),
		SpoolDir:         t.TempDir(),
		Env:              "dev",
		ObjectStoreType:  "local",
		MaxFileSizeBytes: config.DefaultMaxFileSizeBytes,
		MaxStorageBytes:  config.DefaultMaxStorageBytes,
		MaxMonthlyTokens: config.DefaultMaxMonthlyTokens,
		UploadWorkers:    2,
	})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	router := app.Router

	send := func(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != nil {
			req = httptest.NewRequest(method, path, body)
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("X-User-Id", "user-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	var snap struct {
		StorageUsed    int64 `json:"storageUsed"`
		StorageAtLimit bool  `json:"storageAtLimit"`
		TokensUsed     int   `json:"tokensUsed"`
		TokensMax      int   `json:"tokensMax"`
	}
	resp := send(http.MethodGet, "/api/v1/usage", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("usage: status %d", resp.Code)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.StorageUsed != 0 || snap.TokensUsed != 0 {
		t.Fatalf("fresh snapshot = %+v", snap)
	}
	if snap.TokensMax != config.DefaultMaxMonthlyTokens {
		t.Fatalf("TokensMax = %d", snap.TokensMax)
	}

	// Ingest one file and watch storage consumption move.
	resp = send(http.MethodPost, "/api/v1/ingestions", bytes.NewBuffer(nil), "")
	var session struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, _ := writer.CreateFormFile("files", "data.csv")
	fw.Write([]byte("a,b,c\n1,2,3\n"))
	writer.Close()
	if resp := send(http.MethodPost, "/api/v1/ingestions/"+session.ID+"/files", body, writer.FormDataContentType()); resp.Code != http.StatusOK {
		t.Fatalf("add files: status %d", resp.Code)
	}
	if resp := send(http.MethodPost, "/api/v1/ingestions/"+session.ID+"/commit", bytes.NewBuffer(nil), ""); resp.Code != http.StatusOK {
		t.Fatalf("commit: status %d", resp.Code)
	}

	resp = send(http.MethodGet, "/api/v1/usage", nil, "")
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.StorageUsed != int64(len("a,b,c\n1,2,3\n")) {
		t.Fatalf("StorageUsed = %d", snap.StorageUsed)
	}
	if snap.StorageAtLimit {
		t.Error("StorageAtLimit = true far below the ceiling")
	}
}
