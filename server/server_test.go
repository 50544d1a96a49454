package server_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-lms-portal/auth"
	"github.com/jrsteele09/go-lms-portal/backend"
	"github.com/jrsteele09/go-lms-portal/internal/config"
	"github.com/jrsteele09/go-lms-portal/internal/devbackend"
	"github.com/jrsteele09/go-lms-portal/internal/metrics"
	"github.com/jrsteele09/go-lms-portal/server"
	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/standards"
	"github.com/jrsteele09/go-lms-portal/token"
	"github.com/jrsteele09/go-lms-portal/token/refresh"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminEmail   = "admin@example.com"
	testStudentEmail = "student@example.com"
	testPassword     = "Passw0rd!"
)

type backendConfig struct {
	url string
}

func (c backendConfig) GetAPIURL() string            { return c.url }
func (c backendConfig) GetAPITimeout() time.Duration { return 5 * time.Second }

// testFixture runs the portal over HTTP against an in-process backend.
// The portal handler can be rebuilt with restart to mimic a process restart that keeps the token store.
type testFixture struct {
	backend   *devbackend.Server
	client    *backend.Client
	tokens    *token.MemoryStore
	standards *standards.Registry
	metrics   *metrics.Metrics
	portal    http.Handler
	server    *httptest.Server
	browser   *http.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	b := devbackend.New("test-secret", time.Hour, devbackend.WithHashCost(bcrypt.MinCost))
	_, err := b.AddUser("Ada", "Admin", testAdminEmail, testPassword, users.RoleAdmin)
	require.NoError(t, err)
	_, err = b.AddUser("Sam", "Student", testStudentEmail, testPassword, users.RoleStudent)
	require.NoError(t, err)
	backendServer := httptest.NewServer(b)
	t.Cleanup(backendServer.Close)

	f := &testFixture{
		backend:   b,
		client:    backend.NewClient(backendConfig{url: backendServer.URL}),
		tokens:    token.NewMemoryStore(),
		standards: standards.New(),
	}
	f.restart()

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.portal.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.browser = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

// restart builds a fresh portal with empty session state over the same token store and standards
func (f *testFixture) restart() {
	f.metrics = metrics.New()
	authService := auth.NewService(
		auth.Repos{Tokens: f.tokens, Sessions: sessions.NewMemoryStore()},
		f.client,
		refresh.NewManager(f.client, refresh.WithMetrics(f.metrics)),
		auth.WithMetrics(f.metrics),
	)
	f.portal = server.New(config.New(), authService, f.client, f.standards, f.metrics)
}

type response struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (f *testFixture) do(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := f.browser.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), header: resp.Header, body: string(body)}
}

func (f *testFixture) get(t *testing.T, path string) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	return f.do(t, req)
}

func (f *testFixture) post(t *testing.T, path string, form url.Values) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(t, req)
}

func (f *testFixture) signIn(t *testing.T, email string) response {
	t.Helper()
	return f.post(t, server.RouteSignIn, url.Values{"email": {email}, "password": {testPassword}})
}

func TestIndex_SignedOut(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, "/")
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteSignIn, resp.location)
	require.Zero(t, f.backend.TotalCalls())
}

func TestBrowserCookieIssued(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, server.RouteSignIn)
	require.Equal(t, http.StatusOK, resp.status)

	u, err := url.Parse(f.server.URL)
	require.NoError(t, err)
	cookies := f.browser.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	require.Equal(t, "lms_portal_sid", cookies[0].Name)
}

func TestSignIn_Admin(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.signIn(t, testAdminEmail)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteAdminDashboard, resp.location)

	resp = f.get(t, server.RouteAdminDashboard)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "Welcome back, Ada")
	require.Contains(t, resp.body, `href="/admin/students"`)

	// Sign-in pages bounce a signed-in admin to the dashboard
	resp = f.get(t, server.RouteSignIn)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteAdminDashboard, resp.location)
	require.NotContains(t, resp.body, "<form")

	resp = f.get(t, "/")
	require.Equal(t, server.RouteAdminDashboard, resp.location)
}

func TestSignIn_WrongRole(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, server.RouteStudentCourses, f.signIn(t, testStudentEmail).location)

	resp := f.get(t, server.RouteAdminStudents)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteSignIn, resp.location)
	require.NotContains(t, resp.body, "Students")
	require.Zero(t, f.backend.Calls(devbackend.EndpointStudents))
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.post(t, server.RouteSignIn, url.Values{"email": {testAdminEmail}, "password": {"nope"}})
	require.Equal(t, http.StatusUnauthorized, resp.status)
	require.Contains(t, resp.body, "Invalid email or password")
	require.Contains(t, resp.body, testAdminEmail)
}

func TestSignIn_ValidationMessage(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.post(t, server.RouteSignIn, url.Values{"email": {"not-an-email"}, "password": {"x"}})
	require.Equal(t, http.StatusBadRequest, resp.status)
	require.Contains(t, resp.body, "Invalid email")
	require.Zero(t, f.backend.TotalCalls())
}

func TestProtectedRoute_HTMXRedirect(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+server.RouteAdminDashboard, nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")

	resp := f.do(t, req)
	require.Equal(t, http.StatusNoContent, resp.status)
	require.Equal(t, server.RouteSignIn, resp.header.Get("HX-Redirect"))
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.post(t, server.RouteRegister, url.Values{
		"firstName": {"New"}, "lastName": {"Student"}, "email": {"new@example.com"},
		"password": {"secret1"}, "confirmPassword": {"secret1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteSignIn+"?msg=Registered+successfully", resp.location)

	resp = f.get(t, resp.location)
	require.Contains(t, resp.body, "Registered successfully")

	resp = f.post(t, server.RouteRegister, url.Values{
		"firstName": {"New"}, "lastName": {"Student"}, "email": {"new@example.com"},
		"password": {"secret1"}, "confirmPassword": {"secret1"},
	})
	require.Equal(t, http.StatusBadRequest, resp.status)
	require.Contains(t, resp.body, "User already exists")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.post(t, server.RouteRegister, url.Values{
		"firstName": {"New"}, "lastName": {"Student"}, "email": {"new@example.com"},
		"password": {"secret1"}, "confirmPassword": {"secret2"},
	})
	require.Equal(t, http.StatusBadRequest, resp.status)
	require.Contains(t, resp.body, "Passwords do not match")
	require.Zero(t, f.backend.TotalCalls())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)

	resp := f.post(t, server.RouteLogout, nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteSignIn, resp.location)
	require.Zero(t, f.tokens.Len())

	resp = f.get(t, server.RouteAdminDashboard)
	require.Equal(t, server.RouteSignIn, resp.location)
}

func TestAdminStudents(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)

	resp := f.get(t, server.RouteAdminStudents)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, testStudentEmail)

	resp = f.post(t, server.RouteAdminStudents, url.Values{
		"firstName": {"Nia"}, "lastName": {"New"}, "email": {"nia@example.com"}, "password": {"secret1"}, "isActive": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.True(t, strings.HasPrefix(resp.location, server.RouteAdminStudents+"?msg="), resp.location)

	resp = f.get(t, server.RouteAdminStudents+"?q=nia")
	require.Contains(t, resp.body, "nia@example.com")
	require.NotContains(t, resp.body, testStudentEmail)

	resp = f.post(t, server.RouteAdminStudents, url.Values{"firstName": {"No"}, "lastName": {"Password"}, "email": {"np@example.com"}})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Contains(t, resp.location, "error=")
}

func TestAdminStudents_DeleteUnknown(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)

	resp := f.post(t, "/admin/students/does-not-exist/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.True(t, strings.HasPrefix(resp.location, server.RouteAdminStudents+"?error="), resp.location)
}

func TestExpiredAccessToken_RefreshedOnPassthrough(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)
	f.get(t, server.RouteAdminDashboard)
	f.backend.ExpireAccessTokens()
	f.backend.ResetCalls()

	resp := f.get(t, server.RouteAdminStudents)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, testStudentEmail)
	require.Equal(t, 1, f.backend.Calls(devbackend.EndpointRefresh))
}

func TestRestart_SessionRestoredFromTokens(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)
	f.backend.ExpireAccessTokens()
	f.restart()
	f.backend.ResetCalls()

	resp := f.get(t, "/")
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteAdminDashboard, resp.location)
	require.Equal(t, 2, f.backend.Calls(devbackend.EndpointMe))
	require.Equal(t, 1, f.backend.Calls(devbackend.EndpointRefresh))
}

func TestRestart_RevokedRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)
	f.backend.ExpireAccessTokens()
	f.backend.RevokeRefreshTokens()
	f.restart()

	resp := f.get(t, server.RouteAdminDashboard)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteSignIn, resp.location)
	require.Zero(t, f.tokens.Len())
}

func TestStudentCourses(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testStudentEmail)

	resp := f.get(t, server.RouteStudentCourses)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "AS Level Mathematics (9709)")

	resp = f.get(t, server.RouteStudentCourses+"?q=python")
	require.Contains(t, resp.body, "O Level Computer Science (2210)")
	require.NotContains(t, resp.body, "AS Level Mathematics (9709)")

	resp = f.get(t, server.RouteStudentCheckout+"?ids=1,3")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "RS. 30000")

	resp = f.get(t, server.RouteStudentCheckout+"?course=2&course=7")
	require.Contains(t, resp.body, "RS. 47000")

	resp = f.get(t, server.RouteStudentCheckout)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.True(t, strings.HasPrefix(resp.location, server.RouteStudentCourses+"?error="), resp.location)

	resp = f.get(t, server.RouteStudentCheckout+"?ids=99")
	require.True(t, strings.HasPrefix(resp.location, server.RouteStudentCourses+"?error="), resp.location)
}

func TestStaticPages(t *testing.T) {
	f := setupTestFixture(t)

	for _, path := range []string{server.RouteForgotPassword, server.RouteResetPassword} {
		resp := f.get(t, path)
		require.Equal(t, http.StatusOK, resp.status, path)
	}

	resp := f.get(t, "/static/css/portal.css")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.header.Get("Content-Type"), "text/css")

	resp = f.get(t, "/static/missing.css")
	require.Equal(t, http.StatusNotFound, resp.status)
}

func TestHealthAndMetrics(t *testing.T) {
	f := setupTestFixture(t)
	f.get(t, server.RouteAdminDashboard)

	resp := f.get(t, server.RouteHealth)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `"ok"`)

	resp = f.get(t, server.RouteMetrics)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "lms_portal_guard_decisions_total")
}

func TestHealth_CorsPreflight(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://status.example.com")
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+server.RouteHealth, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://status.example.com")
	resp := f.do(t, req)
	require.Equal(t, http.StatusNoContent, resp.status)
	require.Equal(t, "https://status.example.com", resp.header.Get("Access-Control-Allow-Origin"))
	require.Empty(t, resp.header.Get("Access-Control-Allow-Credentials"))

	req, err = http.NewRequest(http.MethodGet, f.server.URL+server.RouteHealth, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example.com")
	resp = f.do(t, req)
	require.Equal(t, http.StatusOK, resp.status)
	require.Empty(t, resp.header.Get("Access-Control-Allow-Origin"))
}

func TestWWWRedirect(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+server.RouteSignIn+"?email=a%40b.c", nil)
	require.NoError(t, err)
	req.Host = "www.lms.example.com"
	resp := f.do(t, req)
	require.Equal(t, http.StatusMovedPermanently, resp.status)
	require.Equal(t, "http://lms.example.com/auth/signin?email=a%40b.c", resp.location)
}

func TestAdminStandards(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)

	resp := f.get(t, server.RouteAdminStandards)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "O Levels")
	require.Contains(t, resp.body, "GR-09")

	resp = f.get(t, server.RouteAdminStandards+"?q=advanced")
	require.Contains(t, resp.body, "A Levels")
	require.NotContains(t, resp.body, "Grade 8")

	resp = f.post(t, server.RouteAdminStandards, url.Values{"name": {"Grade 10"}, "description": {"Secondary"}})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.True(t, strings.HasPrefix(resp.location, server.RouteAdminStandards+"?msg="), resp.location)
	created := f.standards.List("grade 10")
	require.Len(t, created, 1)
	id := strconv.Itoa(created[0].ID)

	resp = f.post(t, server.RouteAdminStandards+"/"+id, url.Values{"name": {"Grade Ten"}})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.NotContains(t, resp.location, "error=")
	require.Len(t, f.standards.List("grade ten"), 1)

	resp = f.post(t, server.RouteAdminStandards, url.Values{"name": {""}})
	require.Contains(t, resp.location, "error=")

	resp = f.post(t, server.RouteAdminStandards+"/"+id+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Empty(t, f.standards.List("grade ten"))

	resp = f.post(t, server.RouteAdminStandards+"/"+id+"/delete", nil)
	require.Contains(t, resp.location, "error=Standard+not+found")
}

func TestAdminStandardSubjects(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testAdminEmail)

	resp := f.get(t, server.RouteAdminStandards+"/1")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "Manage subjects for Standard O Levels")
	require.Contains(t, resp.body, "Chemistry")

	resp = f.post(t, server.RouteAdminStandards+"/1/subjects", url.Values{"name": {"Urdu"}})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.True(t, strings.HasPrefix(resp.location, server.RouteAdminStandards+"/1?msg="), resp.location)

	resp = f.get(t, server.RouteAdminStandards+"/1?q=urdu")
	require.Contains(t, resp.body, "Urdu")
	require.NotContains(t, resp.body, "Chemistry")

	resp = f.post(t, server.RouteAdminStandards+"/1/subjects/5", url.Values{"name": {"Urdu Language"}})
	require.NotContains(t, resp.location, "error=")
	resp = f.post(t, server.RouteAdminStandards+"/1/subjects/2/delete", nil)
	require.NotContains(t, resp.location, "error=")

	resp = f.get(t, server.RouteAdminSubjects+"?q=urdu")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "Urdu Language")
	require.Contains(t, resp.body, "O Levels")
	require.NotContains(t, resp.body, "Physics")

	resp = f.get(t, server.RouteAdminStandards+"/99")
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Contains(t, resp.location, "error=Standard+not+found")

	resp = f.get(t, server.RouteAdminStandards+"/abc")
	require.Contains(t, resp.location, "error=")
}

func TestAdminStandards_StudentRedirected(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t, testStudentEmail)

	for _, path := range []string{server.RouteAdminStandards, server.RouteAdminStandards + "/1", server.RouteAdminSubjects} {
		resp := f.get(t, path)
		require.Equal(t, http.StatusSeeOther, resp.status, path)
		require.Equal(t, server.RouteSignIn, resp.location, path)
	}
	resp := f.post(t, server.RouteAdminStandards+"/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Len(t, f.standards.List(""), 4)
}
