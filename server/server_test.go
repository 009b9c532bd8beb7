package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/db"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/models"
	"github.com/techagentng/healthtrack/services"
	"github.com/techagentng/healthtrack/views"
)

func TestMain(m *testing.M) {
	os.Setenv("GIN_MODE", "test")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubScanner struct {
	images []string
	err    error
}

func (s stubScanner) Scan(ctx context.Context, opts services.ScanOptions) (*services.ScanResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.ScanResult{Images: s.images}, nil
}

type testApp struct {
	conf   *config.Config
	store  db.Store
	engine *gin.Engine
}

func newTestApp(t *testing.T, scanner services.Scanner) *testApp {
	t.Helper()
	store := db.NewMemoryStore(models.DefaultSeed())
	msgs, err := i18n.New("en")
	if err != nil {
		t.Fatalf("i18n.New() error = %v", err)
	}
	router, err := views.NewRouter(store)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	conf := &config.Config{MaxUploadSize: 1 << 20, OTPRequestsPerMinute: 3}

	s := &Server{
		Config:        conf,
		Router:        router,
		Messages:      msgs,
		AuthService:   services.NewAuthService(store, msgs, conf),
		ReportService: services.NewReportService(store, conf),
		ScanService:   services.NewScanService(store, scanner, nil, msgs, conf),
	}
	return &testApp{conf: conf, store: store, engine: s.setupRouter()}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) upload(t *testing.T, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("from", "reports"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("document", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/scanner/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

func (a *testApp) reports(t *testing.T) []models.Report {
	t.Helper()
	reports, err := a.store.Reports(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return reports
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < 16; i++ {
		img.Set(i, i, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const hiddenNav = `py-3 hidden"`

var (
	captureIDPattern = regexp.MustCompile(`/scanner/([0-9a-f-]{36})/confirm`)
	statusURLPattern = regexp.MustCompile(`/scanner/([0-9a-f-]{36})\?from=reports`)
)

func TestHealth(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	if w := app.get("/healthz"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestShellShowsLogin(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.get("/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Welcome Back") || !strings.Contains(body, hiddenNav) {
		t.Errorf("shell should render login with hidden nav:\n%s", body)
	}
}

func TestNavigateViews(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	tests := []struct {
		name    string
		heading string
		navShow bool
	}{
		{"login", "Welcome Back", false},
		{"otp", "Verification", false},
		{"dashboard", "Recent Reports", true},
		{"reports", "Medical Reports", true},
		{"hospitals", "Nearby Hospitals", true},
		{"diseases", "Disease Info", true},
		{"bills", "Medical Bills", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := app.get("/views/" + tt.name)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, tt.heading) {
				t.Errorf("missing heading %q", tt.heading)
			}
			if hidden := strings.Contains(body, hiddenNav); hidden == tt.navShow {
				t.Errorf("nav hidden = %v, want %v", hidden, !tt.navShow)
			}
		})
	}
}

func TestNavigateUnknownView(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.get("/views/settings")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "settings") || !strings.Contains(body, "does not exist") {
		t.Errorf("unexpected body:\n%s", body)
	}
	if !strings.Contains(body, hiddenNav) {
		t.Error("not found page should hide the nav")
	}
	if !strings.Contains(body, `data-view="notfound"`) || strings.Contains(body, `data-view="login"`) {
		t.Error("not found page should not be marked as login")
	}
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.postForm("/login", url.Values{"phone": {" 555-123-4567 "}})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d:\n%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Verification") || !strings.Contains(body, "4-digit code to 555-123-4567") {
		t.Errorf("login should lead to the otp view:\n%s", body)
	}
	if got := strings.Count(body, `class="otp-input`); got != 4 {
		t.Errorf("otp fields = %d, want 4", got)
	}

	u, _ := app.store.User(context.Background())
	if u.Phone != "5551234567" {
		t.Errorf("stored phone = %q", u.Phone)
	}

	w = app.postForm("/otp/verify", url.Values{"code": {"1", "2", "3", "4"}})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Recent Reports") {
		t.Errorf("verify should open the dashboard, status %d", w.Code)
	}
}

func TestVerifyIncompleteCode(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.postForm("/otp/verify", url.Values{"code": {"1", "", "3"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Verification") || !strings.Contains(body, "Enter the full 4-digit code.") {
		t.Errorf("otp view should re-render with the error:\n%s", body)
	}
	for _, want := range []string{`data-index="0" value="1"`, `data-index="1" value="" autofocus`, `data-index="2" value="3"`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(body, "Recent Reports") {
		t.Error("incomplete code should not sign in")
	}
}

func TestLoginRejectsBadPhone(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.postForm("/login", url.Values{"phone": {"abc"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Welcome Back") || !strings.Contains(body, `value="abc"`) {
		t.Errorf("login should re-render with the input:\n%s", body)
	}
}

func TestLoginRateLimited(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	for i := 0; i < 3; i++ {
		if w := app.postForm("/login", url.Values{"phone": {"5551234567"}}); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	w := app.postForm("/login", url.Values{"phone": {"5551234567"}})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Too many code requests") {
		t.Errorf("missing rate limit message:\n%s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("phone=5551234567"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	w = app.do(req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("json status = %d, want 429", w.Code)
	}
	var body struct {
		Message string `json:"message"`
		Errors  string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json body: %v", err)
	}
	if body.Errors != "too many requests" || !strings.Contains(body.Message, "Too many code requests") {
		t.Errorf("body = %+v", body)
	}
}

func TestOpenScannerFallback(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.postForm("/scanner/open", url.Values{"from": {"hospitals"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`id="scanner-overlay"`, `id="camera-placeholder"`, "Nearby Hospitals"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(body, "alert(") {
		t.Error("no alert expected without a scanner")
	}
	if got := len(app.reports(t)); got != 3 {
		t.Errorf("reports = %d, want 3", got)
	}
}

func TestOpenScannerFailure(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, stubScanner{err: errors.New("no camera")})

	w := app.postForm("/scanner/open", url.Values{"from": {"dashboard"}})
	body := w.Body.String()
	if !strings.Contains(body, `id="scanner-overlay"`) {
		t.Error("failure should fall back to the overlay")
	}
	if !strings.Contains(body, "Document scan failed. Falling back to standard camera.") {
		t.Error("missing failure alert")
	}
	if got := len(app.reports(t)); got != 3 {
		t.Errorf("reports = %d, want 3", got)
	}
}

func TestOpenScannerNative(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, stubScanner{images: []string{"aGVsbG8="}})

	w := app.postForm("/scanner/open", url.Values{"from": {"dashboard"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Medical Reports") {
		t.Error("native scan should navigate to reports")
	}
	if strings.Contains(body, `id="scanner-overlay"`) {
		t.Error("native scan should not show the overlay")
	}
	if !strings.Contains(body, `src="data:image/jpeg;base64,aGVsbG8="`) {
		t.Error("missing scanned preview")
	}
	if i, j := strings.Index(body, "Smart Scanned Report"), strings.Index(body, "Blood Test Results"); i < 0 || i > j {
		t.Error("scanned report should be listed first")
	}

	reports := app.reports(t)
	if len(reports) != 4 || reports[0].Hospital != models.SmartScanSource {
		t.Errorf("reports[0] = %+v", reports[0])
	}
}

func TestUploadAndConfirm(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.upload(t, "page.png", testPNG(t))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d:\n%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="scanned-image-preview"`) || !strings.Contains(body, "Save to Reports?") {
		t.Fatalf("upload should show preview and confirmation:\n%s", body)
	}
	m := captureIDPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("confirm form not found")
	}

	w = app.postForm("/scanner/"+m[1]+"/confirm", url.Values{"accept": {"true"}, "from": {"reports"}})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), `id="scanner-overlay"`) {
		t.Error("overlay should close after saving")
	}

	reports := app.reports(t)
	if len(reports) != 4 {
		t.Fatalf("reports = %d, want 4", len(reports))
	}
	if reports[0].Title != services.FallbackTitle || reports[0].Preview != "" {
		t.Errorf("reports[0] = %+v", reports[0])
	}
}

func TestUploadShowsProcessingFirst(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)
	app.conf.ScanDelay = time.Hour

	w := app.upload(t, "page.png", testPNG(t))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d:\n%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="scanned-image-preview"`) || !strings.Contains(body, "Processing document...") {
		t.Fatalf("upload should show the preview while processing:\n%s", body)
	}
	if strings.Contains(body, "Save to Reports?") || captureIDPattern.MatchString(body) {
		t.Error("prompt should wait for processing")
	}
	if !strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("processing overlay should refresh itself")
	}
	m := statusURLPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("status url not found")
	}

	w = app.get("/scanner/" + m[1] + "?from=reports")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Processing document...") {
		t.Errorf("capture should still be processing, status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Medical Reports") {
		t.Error("overlay should stay on the reports view")
	}

	w = app.postForm("/scanner/"+m[1]+"/confirm", url.Values{"accept": {"true"}, "from": {"reports"}})
	if w.Code != http.StatusConflict {
		t.Errorf("confirm while processing status = %d, want 409", w.Code)
	}
	if got := len(app.reports(t)); got != 3 {
		t.Errorf("reports = %d, want 3", got)
	}
}

func TestShowCapture(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	m := captureIDPattern.FindStringSubmatch(app.upload(t, "page.png", testPNG(t)).Body.String())
	if m == nil {
		t.Fatal("confirm form not found")
	}
	w := app.get("/scanner/" + m[1] + "?from=hospitals")
	body := w.Body.String()
	if w.Code != http.StatusOK || !strings.Contains(body, "Save to Reports?") {
		t.Errorf("ready capture should show the prompt, status %d", w.Code)
	}
	if !strings.Contains(body, "Nearby Hospitals") || strings.Contains(body, `http-equiv="refresh"`) {
		t.Error("ready capture should not refresh")
	}

	if w := app.get("/scanner/unknown"); w.Code != http.StatusNotFound {
		t.Errorf("unknown capture status = %d, want 404", w.Code)
	}
}

func TestUploadDecline(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	m := captureIDPattern.FindStringSubmatch(app.upload(t, "page.png", testPNG(t)).Body.String())
	if m == nil {
		t.Fatal("confirm form not found")
	}

	w := app.postForm("/scanner/"+m[1]+"/confirm", url.Values{"accept": {"false"}, "from": {"reports"}})
	body := w.Body.String()
	if w.Code != http.StatusOK || !strings.Contains(body, `id="scanned-image-preview"`) {
		t.Errorf("decline should keep the preview, status %d", w.Code)
	}
	if strings.Contains(body, "Save to Reports?") {
		t.Error("decline should dismiss the prompt")
	}
	if got := len(app.reports(t)); got != 3 {
		t.Errorf("reports = %d, want 3", got)
	}

	w = app.postForm("/scanner/"+m[1]+"/close", url.Values{"from": {"reports"}})
	if strings.Contains(w.Body.String(), `id="scanner-overlay"`) {
		t.Error("close should hide the overlay")
	}
	w = app.postForm("/scanner/"+m[1]+"/confirm", url.Values{"accept": {"true"}})
	if w.Code != http.StatusNotFound {
		t.Errorf("confirm after close status = %d, want 404", w.Code)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.upload(t, "notes.png", []byte("plain text"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "That file is not an image we can read.") {
		t.Error("missing upload error")
	}
}

func TestDownloadReport(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	w := app.get("/reports/1/download")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=report-1.md" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(w.Body.String(), "# Blood Test Results") {
		t.Errorf("body:\n%s", w.Body.String())
	}

	if w := app.get("/reports/99/download"); w.Code != http.StatusNotFound {
		t.Errorf("missing report status = %d, want 404", w.Code)
	}
	if w := app.get("/reports/x/download"); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  string          `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data %s: %v", env.Data, err)
		}
	}
	return env
}

func TestAPI(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	var user models.User
	decode(t, app.get("/api/v1/me"), &user)
	if user.Name != "Alex Johnson" {
		t.Errorf("me = %+v", user)
	}

	var names []string
	decode(t, app.get("/api/v1/views"), &names)
	if len(names) != 7 || names[0] != "login" {
		t.Errorf("views = %v", names)
	}

	var hospitals []models.Hospital
	decode(t, app.get("/api/v1/hospitals"), &hospitals)
	if len(hospitals) != 2 {
		t.Errorf("hospitals = %d, want 2", len(hospitals))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{"title":"X","type":"General"}`))
	req.Header.Set("Content-Type", "application/json")
	w := app.do(req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	var reports []models.Report
	decode(t, app.get("/api/v1/reports"), &reports)
	if len(reports) != 4 || reports[0].Title != "X" {
		t.Errorf("reports[0] = %+v", reports[0])
	}

	var one models.Report
	decode(t, app.get("/api/v1/reports/2"), &one)
	if one.Title != "Dental X-Ray" {
		t.Errorf("report 2 = %+v", one)
	}
}

func TestAPIErrors(t *testing.T) {
	t.Parallel()
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{"title":"X","type":"Dental"}`))
	req.Header.Set("Content-Type", "application/json")
	w := app.do(req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env := decode(t, w, nil); !strings.Contains(env.Errors, "Type") {
		t.Errorf("errors = %q", env.Errors)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	if w := app.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}

	if w := app.get("/api/v1/reports/404"); w.Code != http.StatusNotFound {
		t.Errorf("missing report status = %d, want 404", w.Code)
	}
}
