package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/staffboard/internal/adapters/authn"
	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/company"
	"github.com/ogurasousui/staffboard/internal/core/employee"
	"github.com/ogurasousui/staffboard/internal/core/session"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
	"github.com/ogurasousui/staffboard/internal/platform/metrics"
)

const (
	adminID   = "7f3c1a52-8a4e-4f1e-9b61-0d2a3c4b5e6f"
	companyID = "0c9d8e7f-6a5b-4c3d-2e1f-0a9b8c7d6e5f"
	password  = "secret1"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeAccounts はセッションとサインアップ用の認証ユースケースです。
type fakeAccounts struct {
	mu    sync.Mutex
	users map[string]*account.User
}

func (f *fakeAccounts) SignUp(_ context.Context, in account.SignUpInput) (*account.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, account.ErrInvalidCompanyName
	}
	if in.Password != in.ConfirmPassword {
		return nil, account.ErrPasswordMismatch
	}
	for _, u := range f.users {
		if u.Email == in.Email {
			return nil, account.ErrEmailAlreadyExists
		}
	}
	u := &account.User{ID: uuid.NewString(), Email: in.Email}
	f.users[u.ID] = u
	return &account.SignUpResult{User: u.Clone(), CompanyID: uuid.NewString()}, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, pw string) (*account.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != email {
			continue
		}
		if pw != password {
			return nil, account.ErrInvalidCredentials
		}
		if !u.Confirmed() {
			return nil, account.ErrEmailNotConfirmed
		}
		return u.Clone(), nil
	}
	return nil, account.ErrInvalidCredentials
}

func (f *fakeAccounts) GetUser(_ context.Context, id string) (*account.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (f *fakeAccounts) LoadProfile(_ context.Context, userID string) (*account.Profile, error) {
	return &account.Profile{ID: "p-" + userID, UserID: userID, CompanyID: companyID, Role: account.RoleAdmin}, nil
}

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]*company.Company
}

func (f *fakeCompanyRepo) FindByID(_ context.Context, id string) (*company.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	return c.Clone(), nil
}

func (f *fakeCompanyRepo) Update(_ context.Context, c *company.Company) (*company.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companies[c.ID] = c.Clone()
	return c.Clone(), nil
}

type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryBlobs) Upload(_ context.Context, name, _ string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = b
	return "https://cdn.test/" + name, nil
}

// fakeEmployeeRepo は作成順の新しい順で返すインメモリのレコードストアです。
type fakeEmployeeRepo struct {
	mu        sync.Mutex
	rows      []*employee.Employee
	seq       int
	insertErr error
	listFails int
}

func (f *fakeEmployeeRepo) ListByCompany(_ context.Context, cid string) ([]*employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listFails > 0 {
		f.listFails--
		return nil, errors.New("connection reset by peer")
	}
	var out []*employee.Employee
	for _, e := range f.rows {
		if e.CompanyID == cid {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeEmployeeRepo) Insert(_ context.Context, n *employee.NewEmployee) (*employee.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.seq++
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	e := &employee.Employee{
		ID: uuid.NewString(), CompanyID: n.CompanyID, Name: n.Name, Email: n.Email, Phone: n.Phone,
		DocumentID: n.DocumentID, Title: n.Title, Department: n.Department, Salary: n.Salary,
		AdmissionDate: n.AdmissionDate, Status: n.Status, BirthDate: n.BirthDate,
		MaritalStatus: n.MaritalStatus, Gender: n.Gender, Address: n.Address, Notes: n.Notes,
		CreatedAt: created, UpdatedAt: created,
	}
	f.rows = append(f.rows, e)
	return e.Clone(), nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, cid, id string, p employee.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rows {
		if e.ID != id || e.CompanyID != cid {
			continue
		}
		if p.Name != nil {
			e.Name = *p.Name
		}
		if p.Title != nil {
			e.Title = *p.Title
		}
		if p.Status != nil {
			e.Status = *p.Status
		}
		if p.Salary != nil {
			e.Salary = *p.Salary
		}
		return nil
	}
	return employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) Delete(_ context.Context, cid, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.rows {
		if e.ID == id && e.CompanyID == cid {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

type harness struct {
	router    http.Handler
	accounts  *fakeAccounts
	employees *fakeEmployeeRepo
	blobs     *memoryBlobs
	metrics   *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := zerolog.Nop()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	accounts := &fakeAccounts{users: map[string]*account.User{
		adminID: {ID: adminID, Email: "admin@acme.com", EmailConfirmedAt: &now},
		"a8f5f167-0000-4000-8000-000000000001": {ID: "a8f5f167-0000-4000-8000-000000000001", Email: "pending@acme.com"},
	}}
	companyRepo := &fakeCompanyRepo{companies: map[string]*company.Company{
		companyID: {ID: companyID, Name: "Acme", Email: "hr@acme.com", Theme: company.ThemeLight},
	}}
	blobs := &memoryBlobs{objects: map[string][]byte{}}
	companies := company.NewService(companyRepo, blobs, nil, nil, 1024)
	employees := &fakeEmployeeRepo{}

	registry := session.NewRegistry(
		func() *session.Context { return session.New(accounts, companies, log) },
		func(cid string) *employee.Roster {
			return employee.NewRoster(employees, cid, employee.LocationClock{Location: time.UTC}, log)
		},
		time.Hour,
		log,
	)
	t.Cleanup(registry.Close)

	issuer := auth.NewIssuer("0123456789abcdef0123456789abcdef", "staffboard-test", time.Hour)
	m := metrics.New()
	h := New(authn.New(issuer, registry, log), companies, log, Options{Metrics: m, LogoMaxBytes: 1024})

	return &harness{router: h.Router(), accounts: accounts, employees: employees, blobs: blobs, metrics: m}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) signIn(t *testing.T) string {
	t.Helper()

	w := h.do(t, http.MethodPost, "/api/v1/auth/sign-in", "", signInRequest{Email: "admin@acme.com", Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res signInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func validEmployeeForm(name string) employee.FormData {
	return employee.FormData{
		Name:          name,
		Email:         strings.ToLower(name) + "@acme.com",
		Phone:         "11 99999-0000",
		Title:         "Engineer",
		Department:    "Technology",
		Salary:        "5000",
		AdmissionDate: "2026-10-16",
		BirthDate:     "1990-05-20",
		DocumentID:    "123.456.789-00",
		MaritalStatus: "single",
		Gender:        "female",
		City:          "Campinas",
		State:         "SP",
	}
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", signUpRequest{
		CompanyName: "Globex", Email: "owner@globex.com", Password: password, ConfirmPassword: password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[signUpResponse](t, w)
	assert.NotEmpty(t, res.UserID)
	assert.NotEmpty(t, res.CompanyID)
	assert.True(t, res.EmailConfirmationRequired)

	w = h.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", signUpRequest{
		CompanyName: "Acme 2", Email: "admin@acme.com", Password: password, ConfirmPassword: password,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/auth/sign-up", "", signUpRequest{
		CompanyName: "Initech", Email: "x@initech.com", Password: password, ConfirmPassword: "other1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignIn_Failures(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/auth/sign-in", "", signInRequest{Email: "admin@acme.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", decode[errorBody](t, w).Error)

	w = h.do(t, http.MethodPost, "/api/v1/auth/sign-in", "", signInRequest{Email: "pending@acme.com", Password: password})
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", strings.NewReader("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/employees", "/api/v1/settings/company", "/api/v1/session"} {
		w := h.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := h.do(t, http.MethodGet, "/api/v1/dashboard", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAndSignOut(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	w := h.do(t, http.MethodGet, "/api/v1/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[session.Snapshot](t, w)
	require.NotNil(t, snap.Company)
	assert.Equal(t, "Acme", snap.Company.Name)
	assert.False(t, snap.Loading)

	w = h.do(t, http.MethodPost, "/api/v1/auth/sign-out", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/v1/navigation?path=/employees", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	nav := decode[navigationResponse](t, w)
	assert.Equal(t, "auth", string(nav.View))
	assert.Empty(t, nav.Menu)

	token := h.signIn(t)
	nav = decode[navigationResponse](t, h.do(t, http.MethodGet, "/api/v1/navigation?path=/employees", token, nil))
	assert.Equal(t, "employees", string(nav.View))
	assert.Len(t, nav.Menu, 4)

	nav = decode[navigationResponse](t, h.do(t, http.MethodGet, "/api/v1/navigation?path=/nope", token, nil))
	assert.Equal(t, "not_found", string(nav.View))
}

func TestEmployeeLifecycle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	w := h.do(t, http.MethodPost, "/api/v1/employees", token, validEmployeeForm("Ana"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[employeeListResponse](t, w)
	require.Equal(t, 1, created.Count)

	other := validEmployeeForm("Bruno")
	other.Department = employee.DepartmentOther
	other.DepartmentOther = "Research"
	w = h.do(t, http.MethodPost, "/api/v1/employees", token, other)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := decode[employeeListResponse](t, h.do(t, http.MethodGet, "/api/v1/employees", token, nil))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "Bruno", list.Employees[0].Name, "newest first")
	assert.Equal(t, "Research", list.Employees[0].Department)
	assert.Equal(t, []string{"Research", "Technology"}, list.Departments)

	filtered := decode[employeeListResponse](t, h.do(t, http.MethodGet, "/api/v1/employees?search=ana&status=all", token, nil))
	require.Equal(t, 1, filtered.Count)
	assert.Equal(t, 2, filtered.Total)
	anaID := filtered.Employees[0].ID

	w = h.do(t, http.MethodGet, "/api/v1/employees/"+anaID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-10-16", decode[employeeResponse](t, w).AdmissionDate)

	w = h.do(t, http.MethodPatch, "/api/v1/employees/"+anaID, token, map[string]any{"status": "on_leave"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[employeeResponse](t, w)
	assert.Equal(t, employee.StatusOnLeave, updated.Status)
	assert.Equal(t, "Ana", updated.Name)

	w = h.do(t, http.MethodPatch, "/api/v1/employees/"+anaID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodDelete, "/api/v1/employees/"+anaID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/employees/"+anaID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodDelete, "/api/v1/employees/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEmployee_ValidationErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	form := validEmployeeForm("Carla")
	form.Email = "carla@acme"
	form.Salary = "0"

	w := h.do(t, http.MethodPost, "/api/v1/employees", token, form)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[errorBody](t, w)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "salary")
	assert.Empty(t, h.employees.rows)
}

func TestCreateEmployee_StoreFailureIsGeneric(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)
	h.employees.insertErr = errors.New("connection reset by peer")

	w := h.do(t, http.MethodPost, "/api/v1/employees", token, validEmployeeForm("Dora"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, genericErrorMessage, decode[errorBody](t, w).Error)
}

func TestListEmployees_ReloadsOnEveryView(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	// 別のセッションで登録された社員。
	_, err := h.employees.Insert(context.Background(), &employee.NewEmployee{
		CompanyID: companyID, Name: "Ana", Email: "ana@acme.com", Department: "Technology",
		Salary: 4000, AdmissionDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Status: employee.StatusActive,
	})
	require.NoError(t, err)

	h.employees.mu.Lock()
	h.employees.listFails = 1
	h.employees.mu.Unlock()

	w := h.do(t, http.MethodGet, "/api/v1/employees", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[employeeListResponse](t, w)
	assert.Equal(t, 0, first.Total)
	assert.False(t, first.Loading)

	w = h.do(t, http.MethodGet, "/api/v1/employees", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[employeeListResponse](t, w)
	assert.Equal(t, 1, second.Total)

	_, err = h.employees.Insert(context.Background(), &employee.NewEmployee{
		CompanyID: companyID, Name: "Bia", Email: "bia@acme.com", Department: "Finance",
		Salary: 4500, AdmissionDate: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), Status: employee.StatusActive,
	})
	require.NoError(t, err)

	w = h.do(t, http.MethodGet, "/api/v1/dashboard?period=year", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dash := decode[dashboardResponse](t, w)
	assert.Equal(t, 2, dash.Overall.Total)
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	form := validEmployeeForm("Eva")
	form.AdmissionDate = time.Now().UTC().Format(employee.DateLayout)
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/api/v1/employees", token, form).Code)

	w := h.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[dashboardResponse](t, w)
	assert.Equal(t, employee.PeriodMonth, d.Period)
	assert.Equal(t, 1, d.Overall.Total)
	assert.Len(t, d.Chart, 6)
	require.Len(t, d.Recent, 1)
	assert.Equal(t, "Eva", d.Recent[0].Name)

	d = decode[dashboardResponse](t, h.do(t, http.MethodGet, "/api/v1/dashboard?period=year", token, nil))
	assert.Len(t, d.Chart, 5)

	w = h.do(t, http.MethodGet, "/api/v1/dashboard?period=week", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEmployees(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/api/v1/employees", token, validEmployeeForm("Fabi")).Code)

	w := h.do(t, http.MethodGet, "/api/v1/employees/export.xlsx", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "employees.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestFormOptions(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/api/v1/form/options", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	opts := decode[formOptionsResponse](t, w)
	assert.Contains(t, opts.Departments, "Other")
	assert.Len(t, opts.States, 27)
	assert.Len(t, opts.Genders, 3)
}

func TestCompanySettings(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	w := h.do(t, http.MethodPatch, "/api/v1/settings/company", token, map[string]any{"name": "Acme Brasil", "subtitle": "HR"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Acme Brasil", decode[company.Company](t, w).Name)

	w = h.do(t, http.MethodGet, "/api/v1/settings/company", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Brasil", decode[company.Company](t, w).Name)

	w = h.do(t, http.MethodPut, "/api/v1/settings/company/theme", token, themeRequest{Theme: company.ThemeDark})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, company.ThemeDark, decode[company.Company](t, w).Theme)

	snap := decode[session.Snapshot](t, h.do(t, http.MethodGet, "/api/v1/session", token, nil))
	assert.Equal(t, company.ThemeDark, snap.Company.Theme)

	w = h.do(t, http.MethodPut, "/api/v1/settings/company/theme", token, themeRequest{Theme: "purple"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func logoRequest(t *testing.T, token, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="logo"; filename="logo"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/company/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadLogo(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := h.signIn(t)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, logoRequest(t, token, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[company.Company](t, w)
	require.NotNil(t, updated.LogoURL)
	assert.Equal(t, "https://cdn.test/"+companyID+"-logo.png", *updated.LogoURL)
	assert.Equal(t, []byte("png-bytes"), h.blobs.objects[companyID+"-logo.png"])

	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, logoRequest(t, token, "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, logoRequest(t, token, "image/png", bytes.Repeat([]byte("x"), 2048)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `staffboard_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}
