package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/fileservice"
	"github.com/starford/raido/internal/journal"
	"github.com/starford/raido/internal/testutil"
)

// testEnv sets up a temp sandbox, SQLite journal, service, and router for testing.
// An empty token means disabled mode; a non-empty token means token mode.
func testEnv(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()
	enabled := authToken != ""
	return testEnvFull(t, enabled, authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (http.Handler, string) {
	t.Helper()

	root, fs := testutil.TestSandbox(t)
	db := testutil.TestJournal(t)

	svc := fileservice.NewService(fs, db)
	router := NewRouter(svc, authEnabled, authToken, sseHandler)
	return router, root
}

func doRaw(t *testing.T, router http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == nil {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWriteAndReadFile(t *testing.T) {
	router, _ := testEnv(t, "")

	w := doRaw(t, router, http.MethodPut, "/files/notes/hello.txt", []byte("hello world"))
	if w.Code != http.StatusCreated {
		t.Fatalf("write status = %d, body = %s", w.Code, w.Body.String())
	}
	var receipt WriteReceipt
	_ = json.Unmarshal(w.Body.Bytes(), &receipt)
	if receipt.Path != "notes/hello.txt" {
		t.Errorf("receipt path = %q", receipt.Path)
	}
	if receipt.Written != 11 {
		t.Errorf("written = %d, want 11", receipt.Written)
	}
	if receipt.Checksum == "" {
		t.Error("receipt checksum is empty")
	}

	w = doRaw(t, router, http.MethodGet, "/files/notes/hello.txt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
	if got := w.Body.String(); got != "hello world" {
		t.Errorf("body = %q, want %q", got, "hello world")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("content type = %q", ct)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	router, _ := testEnv(t, "")

	w := doRaw(t, router, http.MethodGet, "/files/nope.txt", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing file = %d, want 404", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "not found" {
		t.Errorf("error = %q, want %q", resp.Error, "not found")
	}
	if resp.Code != "failure" {
		t.Errorf("code = %q, want failure", resp.Code)
	}
}

func TestHeadFile(t *testing.T) {
	router, _ := testEnv(t, "")

	w := doRaw(t, router, http.MethodHead, "/files/maybe.txt", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing head = %d, want 404", w.Code)
	}

	doRaw(t, router, http.MethodPut, "/files/maybe.txt", []byte("x"))

	w = doRaw(t, router, http.MethodHead, "/files/maybe.txt", nil)
	if w.Code != http.StatusOK {
		t.Errorf("existing head = %d, want 200", w.Code)
	}
}

func TestAppendFile(t *testing.T) {
	router, _ := testEnv(t, "")

	doRaw(t, router, http.MethodPut, "/files/log.txt", []byte("one\n"))
	w := doRaw(t, router, http.MethodPatch, "/files/log.txt", []byte("two\n"))
	if w.Code != http.StatusOK {
		t.Fatalf("append = %d, body = %s", w.Code, w.Body.String())
	}
	var receipt WriteReceipt
	_ = json.Unmarshal(w.Body.Bytes(), &receipt)
	if receipt.Size != 8 {
		t.Errorf("size after append = %d, want 8", receipt.Size)
	}

	w = doRaw(t, router, http.MethodGet, "/files/log.txt", nil)
	if got := w.Body.String(); got != "one\ntwo\n" {
		t.Errorf("body = %q", got)
	}
}

func TestDeleteFile(t *testing.T) {
	router, _ := testEnv(t, "")

	doRaw(t, router, http.MethodPut, "/files/bye.txt", []byte("gone"))

	w := doRaw(t, router, http.MethodDelete, "/files/bye.txt", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}

	w = doRaw(t, router, http.MethodGet, "/files/bye.txt", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}

	// Deleting again is a conflict with the remove-failed code.
	w = doRaw(t, router, http.MethodDelete, "/files/bye.txt", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second delete = %d, want 409", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "remove-failed" {
		t.Errorf("code = %q, want remove-failed", resp.Code)
	}
}

func TestMakeDir(t *testing.T) {
	router, root := testEnv(t, "")

	w := doRaw(t, router, http.MethodPost, "/dirs/pak/cfg", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("mkdir = %d, body = %s", w.Code, w.Body.String())
	}
	if fi, err := os.Stat(filepath.Join(root, "pak", "cfg")); err != nil || !fi.IsDir() {
		t.Fatalf("directory not on disk: %v", err)
	}

	// Creating it again conflicts.
	w = doRaw(t, router, http.MethodPost, "/dirs/pak/cfg", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("repeat mkdir = %d, want 409", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "mkdir-failed" {
		t.Errorf("code = %q, want mkdir-failed", resp.Code)
	}
}

func TestStatFile(t *testing.T) {
	router, _ := testEnv(t, "")

	doRaw(t, router, http.MethodPut, "/files/info.txt", []byte("12345"))

	w := doRaw(t, router, http.MethodGet, "/info/info.txt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stat = %d", w.Code)
	}
	var stat FileStat
	_ = json.Unmarshal(w.Body.Bytes(), &stat)
	if stat.Type != "regular" {
		t.Errorf("type = %q, want regular", stat.Type)
	}
	if stat.Size != 5 {
		t.Errorf("size = %d, want 5", stat.Size)
	}

	w = doRaw(t, router, http.MethodGet, "/info/ghost.txt", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("stat missing = %d, want 404", w.Code)
	}
}

func TestCwd(t *testing.T) {
	router, _ := testEnv(t, "")

	w := doRaw(t, router, http.MethodGet, "/cwd", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cwd = %d", w.Code)
	}
	var resp CwdResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Cwd == "" {
		t.Error("cwd is empty")
	}
}

func TestGetAndSetPaths(t *testing.T) {
	router, root := testEnv(t, "")

	w := doRaw(t, router, http.MethodGet, "/paths", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get paths = %d", w.Code)
	}
	var paths PathsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &paths)
	wantTmpl := filepath.Join(root, "?")
	if paths.SearchPath != wantTmpl || paths.WriteDir != wantTmpl {
		t.Errorf("paths = %+v, want both %q", paths, wantTmpl)
	}

	// Update only the search path.
	newSearch := filepath.Join(root, "alt", "?") + ";" + wantTmpl
	body, _ := json.Marshal(map[string]string{"search_path": newSearch})
	w = doRaw(t, router, http.MethodPut, "/paths", body)
	if w.Code != http.StatusOK {
		t.Fatalf("set paths = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &paths)
	if paths.SearchPath != newSearch {
		t.Errorf("search path = %q, want %q", paths.SearchPath, newSearch)
	}
	if paths.WriteDir != wantTmpl {
		t.Errorf("write dir changed to %q", paths.WriteDir)
	}

	// Empty body is rejected.
	w = doRaw(t, router, http.MethodPut, "/paths", []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty set paths = %d, want 400", w.Code)
	}
}

func TestSetPaths_TooLong(t *testing.T) {
	router, _ := testEnv(t, "")

	long := strings.Repeat("x", 300)
	body, _ := json.Marshal(map[string]string{"search_path": long})
	w := doRaw(t, router, http.MethodPut, "/paths", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("too long = %d, want 400", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "path-too-long" {
		t.Errorf("code = %q, want path-too-long", resp.Code)
	}
}

func TestListOps(t *testing.T) {
	router, _ := testEnv(t, "")

	doRaw(t, router, http.MethodPut, "/files/a.txt", []byte("a"))
	doRaw(t, router, http.MethodPut, "/files/b.txt", []byte("b"))
	doRaw(t, router, http.MethodDelete, "/files/a.txt", nil)

	w := doRaw(t, router, http.MethodGet, "/ops", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list ops = %d", w.Code)
	}
	var resp OpsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Ops) != 3 {
		t.Fatalf("len(ops) = %d, want 3", len(resp.Ops))
	}
	if resp.Ops[0].Op != journal.OpDelete {
		t.Errorf("newest op = %q, want delete", resp.Ops[0].Op)
	}

	// Path filter.
	w = doRaw(t, router, http.MethodGet, "/ops?path=a.txt", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Ops) != 2 {
		t.Errorf("filtered ops = %d, want 2", len(resp.Ops))
	}

	// Limit.
	w = doRaw(t, router, http.MethodGet, "/ops?limit=1", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Ops) != 1 {
		t.Errorf("limited ops = %d, want 1", len(resp.Ops))
	}

	// Negative limit is rejected.
	w = doRaw(t, router, http.MethodGet, "/ops?limit=-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative limit = %d, want 400", w.Code)
	}
}

func TestWriteFile_TraversalBlocked(t *testing.T) {
	router, root := testEnv(t, "")

	// Encoded slash keeps the traversal inside the wildcard segment.
	w := doRaw(t, router, http.MethodPut, "/files/..%2Fescape.txt", []byte("bad"))
	if w.Code == http.StatusCreated {
		t.Fatalf("traversal write = %d, want rejection", w.Code)
	}
	if _, err := os.Stat(filepath.Join(root, "..", "escape.txt")); err == nil {
		t.Error("file escaped the sandbox")
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, _ := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPut, "/files/auth.txt", bytes.NewReader([]byte("test")))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed write = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router, _ := testEnv(t, "secret123")

	w := doRaw(t, router, http.MethodGet, "/cwd", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router, _ := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/cwd", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router, _ := testEnv(t, "")

	w := doRaw(t, router, http.MethodGet, "/cwd", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	// No token → 401.
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "")

	// Disabled mode → should not 401. SSE handler will write 200 and block,
	// so we cancel the context after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a stub SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()

	// Stub handler writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	router, _ := testEnvFull(t, authEnabled, token, sseHandler)
	return router
}

// Upload tests.

func uploadFile(t *testing.T, router http.Handler, filename, target string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	if target != "" {
		_ = mw.WriteField("path", target)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadFile(t *testing.T) {
	router, root := testEnv(t, "")

	w := uploadFile(t, router, "test.bin", "", []byte("fake-binary-data"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var receipt WriteReceipt
	_ = json.Unmarshal(w.Body.Bytes(), &receipt)
	if receipt.Path != "test.bin" {
		t.Errorf("path = %q", receipt.Path)
	}
	if receipt.Written != int64(len("fake-binary-data")) {
		t.Errorf("written = %d", receipt.Written)
	}

	data, err := os.ReadFile(filepath.Join(root, "test.bin"))
	if err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if string(data) != "fake-binary-data" {
		t.Error("content mismatch")
	}

	// The journal attributes the mutation to an upload.
	lw := doRaw(t, router, http.MethodGet, "/ops?path=test.bin", nil)
	var resp OpsResponse
	_ = json.Unmarshal(lw.Body.Bytes(), &resp)
	if len(resp.Ops) != 1 || resp.Ops[0].Op != journal.OpUpload {
		t.Errorf("ops = %+v, want one upload entry", resp.Ops)
	}
}

func TestUploadFile_TargetOverride(t *testing.T) {
	router, root := testEnv(t, "")

	w := uploadFile(t, router, "logo.png", "assets/logo.png", []byte("png"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(root, "assets", "logo.png")); err != nil {
		t.Fatalf("file not at override target: %v", err)
	}
}

func TestUploadFile_TraversalBlocked(t *testing.T) {
	router, root := testEnv(t, "")

	w := uploadFile(t, router, "x.txt", "../escape.txt", []byte("bad"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("traversal upload = %d, want 400", w.Code)
	}
	if _, err := os.Stat(filepath.Join(root, "..", "escape.txt")); err == nil {
		t.Error("file escaped the sandbox")
	}
}

func TestUploadFile_AuthProtected(t *testing.T) {
	router, _ := testEnvFull(t, true, "secret", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "x.bin")
	_, _ = part.Write([]byte("data"))
	mw.Close()

	// No token → 401.
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("upload no auth = %d, want 401", w.Code)
	}
}

func TestUploadFile_MissingFileField(t *testing.T) {
	router, _ := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}
