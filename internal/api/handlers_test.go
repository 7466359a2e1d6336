package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TripShare-io/tripshare/internal/auth"
	"github.com/TripShare-io/tripshare/internal/config"
	"github.com/TripShare-io/tripshare/internal/database"
	"github.com/TripShare-io/tripshare/internal/models"
	"github.com/TripShare-io/tripshare/internal/storage"
	"github.com/TripShare-io/tripshare/internal/store"
)

type testAPI struct {
	api        *Api
	store      *store.Store
	tokens     *auth.TokenManager
	uploadsDir string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, "sqlite"))

	uploadsDir := t.TempDir()
	images, err := storage.NewLocalStorage(uploadsDir)
	require.NoError(t, err)

	st := store.New(db, "sqlite")
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)

	cfg := config.Config{APIPort: 8080}
	a, err := NewApi(cfg, st, tokens, images)
	require.NoError(t, err)

	return &testAPI{api: a, store: st, tokens: tokens, uploadsDir: uploadsDir}
}

func (ta *testAPI) createUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	hash, err := models.HashPassword("password")
	require.NoError(t, err)

	user := &models.User{FirstName: "Test", LastName: "User", Email: email, Password: hash, Role: role}
	require.NoError(t, ta.store.CreateUser(user))

	token, err := ta.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (ta *testAPI) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ta.api.Router.ServeHTTP(rr, req)
	return rr
}

type vacationForm struct {
	destination string
	description string
	startDate   string
	endDate     string
	price       string
	image       []byte
}

func (ta *testAPI) doVacationForm(t *testing.T, method, path, token string, form vacationForm) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("destination", form.destination))
	require.NoError(t, mw.WriteField("description", form.description))
	require.NoError(t, mw.WriteField("startDate", form.startDate))
	require.NoError(t, mw.WriteField("endDate", form.endDate))
	require.NoError(t, mw.WriteField("price", form.price))
	if form.image != nil {
		fw, err := mw.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write(form.image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	ta.api.Router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}

func dateFromNow(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func TestRegister(t *testing.T) {
	ta := newTestAPI(t)

	rr := ta.doJSON(t, http.MethodPost, "/auth/register", "", models.RegisterInput{
		FirstName: "Dana", LastName: "Levi", Email: "dana@example.com", Password: "1234",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, rr, &resp)
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotContains(t, rr.Body.String(), `"password"`)

	// The returned token decodes to the persisted identity.
	claims, err := ta.tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "Dana", claims.FirstName)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)

	// Registering the same email again conflicts.
	rr = ta.doJSON(t, http.MethodPost, "/auth/register", "", models.RegisterInput{
		FirstName: "Other", LastName: "Person", Email: "dana@example.com", Password: "1234",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegister_Validation(t *testing.T) {
	ta := newTestAPI(t)

	tests := []struct {
		name string
		in   models.RegisterInput
	}{
		{"missing fields", models.RegisterInput{Email: "a@b.co", Password: "1234"}},
		{"bad email", models.RegisterInput{FirstName: "A", LastName: "B", Email: "nope", Password: "1234"}},
		{"short password", models.RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.co", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ta.doJSON(t, http.MethodPost, "/auth/register", "", tt.in)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestLogin_EnumerationResistance(t *testing.T) {
	ta := newTestAPI(t)
	ta.createUser(t, "known@example.com", models.RoleUser)

	wrongPassword := ta.doJSON(t, http.MethodPost, "/auth/login", "", models.LoginInput{
		Email: "known@example.com", Password: "wrong-password",
	})
	unknownEmail := ta.doJSON(t, http.MethodPost, "/auth/login", "", models.LoginInput{
		Email: "unknown@example.com", Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Identical bodies: the endpoint must not reveal which emails exist.
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLogin_Success(t *testing.T) {
	ta := newTestAPI(t)
	user, _ := ta.createUser(t, "known@example.com", models.RoleUser)

	rr := ta.doJSON(t, http.MethodPost, "/auth/login", "", models.LoginInput{
		Email: "known@example.com", Password: "password",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, rr, &resp)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestCheckEmail(t *testing.T) {
	ta := newTestAPI(t)
	ta.createUser(t, "known@example.com", models.RoleUser)

	rr := ta.doJSON(t, http.MethodGet, "/auth/check-email/known@example.com", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"exists":true}`, rr.Body.String())

	rr = ta.doJSON(t, http.MethodGet, "/auth/check-email/unknown@example.com", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"exists":false}`, rr.Body.String())
}

func TestAuthorizationGate(t *testing.T) {
	ta := newTestAPI(t)
	_, userToken := ta.createUser(t, "user@example.com", models.RoleUser)

	t.Run("no token", func(t *testing.T) {
		rr := ta.doJSON(t, http.MethodGet, "/vacations", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := ta.doJSON(t, http.MethodGet, "/vacations", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewTokenManager("test-secret", -time.Minute)
		user := &models.User{ID: 1, Email: "user@example.com", Role: models.RoleUser}
		token, err := expired.GenerateToken(user)
		require.NoError(t, err)

		rr := ta.doJSON(t, http.MethodGet, "/vacations", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("user blocked from admin routes", func(t *testing.T) {
		for _, route := range []struct{ method, path string }{
			{http.MethodPost, "/vacations"},
			{http.MethodPut, "/vacations/1"},
			{http.MethodDelete, "/vacations/1"},
			{http.MethodGet, "/vacations/report"},
			{http.MethodGet, "/vacations/csv"},
		} {
			rr := ta.doJSON(t, route.method, route.path, userToken, nil)
			assert.Equal(t, http.StatusForbidden, rr.Code, "%s %s", route.method, route.path)
		}
	})
}

// Follows the full listing lifecycle: create, follow, inspect, delete.
func TestVacationLifecycle(t *testing.T) {
	ta := newTestAPI(t)
	_, adminToken := ta.createUser(t, "admin@example.com", models.RoleAdmin)
	_, userToken := ta.createUser(t, "user@example.com", models.RoleUser)

	rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, vacationForm{
		destination: "Paris",
		description: "A spring getaway",
		startDate:   dateFromNow(1),
		endDate:     dateFromNow(3),
		price:       "500",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created models.Vacation
	decodeBody(t, rr, &created)
	require.NotZero(t, created.ID)
	assert.Equal(t, 0, created.FollowersCount)
	assert.Equal(t, models.DefaultImage, created.ImageFileName)

	vacationPath := fmt.Sprintf("/vacations/%d", created.ID)

	// Follow succeeds once, conflicts on repeat.
	rr = ta.doJSON(t, http.MethodPost, vacationPath+"/follow", userToken, nil)
	assert.Equal(t, http.StatusCreated, rr.Code)
	rr = ta.doJSON(t, http.MethodPost, vacationPath+"/follow", userToken, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ta.doJSON(t, http.MethodGet, vacationPath, userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched models.Vacation
	decodeBody(t, rr, &fetched)
	assert.True(t, fetched.IsFollowing)
	assert.Equal(t, 1, fetched.FollowersCount)

	// The admin is not following; the count is shared.
	rr = ta.doJSON(t, http.MethodGet, vacationPath, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &fetched)
	assert.False(t, fetched.IsFollowing)
	assert.Equal(t, 1, fetched.FollowersCount)

	rr = ta.doJSON(t, http.MethodDelete, vacationPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ta.doJSON(t, http.MethodGet, vacationPath, userToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateVacation_Validation(t *testing.T) {
	ta := newTestAPI(t)
	_, adminToken := ta.createUser(t, "admin@example.com", models.RoleAdmin)

	base := vacationForm{
		destination: "Paris",
		description: "A spring getaway",
		startDate:   dateFromNow(1),
		endDate:     dateFromNow(3),
		price:       "500",
	}

	t.Run("price above range", func(t *testing.T) {
		form := base
		form.price = "10001"
		rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, form)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("price boundary accepted", func(t *testing.T) {
		form := base
		form.price = "10000"
		rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, form)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		form := base
		form.endDate = dateFromNow(-1)
		rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, form)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("start in the past", func(t *testing.T) {
		form := base
		form.startDate = dateFromNow(-2)
		rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, form)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing destination", func(t *testing.T) {
		form := base
		form.destination = ""
		rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, form)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateVacation(t *testing.T) {
	ta := newTestAPI(t)
	_, adminToken := ta.createUser(t, "admin@example.com", models.RoleAdmin)

	v, err := ta.store.CreateVacation(models.VacationInput{
		Destination: "Paris", Description: "Original", StartDate: "2027-05-01", EndDate: "2027-05-08", Price: 500,
	}, models.DefaultImage)
	require.NoError(t, err)

	// No start-in-past recheck on update: a past start date is accepted.
	rr := ta.doVacationForm(t, http.MethodPut, fmt.Sprintf("/vacations/%d", v.ID), adminToken, vacationForm{
		destination: "Paris, France",
		description: "Updated",
		startDate:   "2020-01-01",
		endDate:     "2020-01-05",
		price:       "750",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated models.Vacation
	decodeBody(t, rr, &updated)
	assert.Equal(t, "Paris, France", updated.Destination)
	assert.Equal(t, 750.0, updated.Price)
	assert.Equal(t, "2020-01-01", updated.StartDate)

	rr = ta.doVacationForm(t, http.MethodPut, "/vacations/9999", adminToken, vacationForm{
		destination: "Ghost", description: "x", startDate: "2027-01-01", endDate: "2027-01-02", price: "1",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListVacations_PaginationAndFilters(t *testing.T) {
	ta := newTestAPI(t)
	_, userToken := ta.createUser(t, "user@example.com", models.RoleUser)

	for i := 0; i < 3; i++ {
		_, err := ta.store.CreateVacation(models.VacationInput{
			Destination: fmt.Sprintf("Stop %d", i+1),
			Description: "desc",
			StartDate:   dateFromNow(i + 1),
			EndDate:     dateFromNow(i + 2),
			Price:       100,
		}, models.DefaultImage)
		require.NoError(t, err)
	}

	rr := ta.doJSON(t, http.MethodGet, "/vacations?page=1&limit=2", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp vacationListResponse
	decodeBody(t, rr, &resp)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Vacations, 2)

	// A page beyond the last yields an empty list, not an error.
	rr = ta.doJSON(t, http.MethodGet, "/vacations?page=5&limit=2", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &resp)
	assert.Equal(t, 3, resp.Total)
	assert.NotNil(t, resp.Vacations)
	assert.Empty(t, resp.Vacations)

	// All three start in the future.
	rr = ta.doJSON(t, http.MethodGet, "/vacations?filter=notStarted", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &resp)
	assert.Equal(t, 3, resp.Total)

	// Nothing followed yet.
	rr = ta.doJSON(t, http.MethodGet, "/vacations?filter=following", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &resp)
	assert.Equal(t, 0, resp.Total)
}

func TestFollowerReport(t *testing.T) {
	ta := newTestAPI(t)
	_, adminToken := ta.createUser(t, "admin@example.com", models.RoleAdmin)
	user, _ := ta.createUser(t, "user@example.com", models.RoleUser)

	v, err := ta.store.CreateVacation(models.VacationInput{
		Destination: "Paris", Description: "desc", StartDate: "2027-05-01", EndDate: "2027-05-08", Price: 500,
	}, models.DefaultImage)
	require.NoError(t, err)
	require.NoError(t, ta.store.FollowVacation(user.ID, v.ID))

	rr := ta.doJSON(t, http.MethodGet, "/vacations/report", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var report []models.ReportRow
	decodeBody(t, rr, &report)
	require.Len(t, report, 1)
	assert.Equal(t, models.ReportRow{Destination: "Paris", FollowersCount: 1}, report[0])
}

func TestFollowerReportCSV(t *testing.T) {
	ta := newTestAPI(t)
	_, adminToken := ta.createUser(t, "admin@example.com", models.RoleAdmin)
	user, _ := ta.createUser(t, "user@example.com", models.RoleUser)

	// A destination with an embedded comma must arrive quoted.
	v, err := ta.store.CreateVacation(models.VacationInput{
		Destination: "Paris, France", Description: "desc", StartDate: "2027-05-01", EndDate: "2027-05-08", Price: 500,
	}, models.DefaultImage)
	require.NoError(t, err)
	require.NoError(t, ta.store.FollowVacation(user.ID, v.ID))

	rr := ta.doJSON(t, http.MethodGet, "/vacations/csv", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "vacations-report.csv")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Destination,Followers", lines[0])
	assert.Equal(t, `"Paris, France",1`, lines[1])
}

func TestImageUploadLifecycle(t *testing.T) {
	ta := newTestAPI(t)
	_, adminToken := ta.createUser(t, "admin@example.com", models.RoleAdmin)

	rr := ta.doVacationForm(t, http.MethodPost, "/vacations", adminToken, vacationForm{
		destination: "Rome",
		description: "desc",
		startDate:   dateFromNow(1),
		endDate:     dateFromNow(3),
		price:       "500",
		image:       []byte("fake image bytes"),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created models.Vacation
	decodeBody(t, rr, &created)
	require.NotEqual(t, models.DefaultImage, created.ImageFileName)
	assert.True(t, strings.HasSuffix(created.ImageFileName, ".jpg"))

	firstImage := created.ImageFileName
	assert.FileExists(t, ta.uploadsDir+"/"+firstImage)

	// Replacing the image removes the previous file.
	rr = ta.doVacationForm(t, http.MethodPut, fmt.Sprintf("/vacations/%d", created.ID), adminToken, vacationForm{
		destination: "Rome",
		description: "desc",
		startDate:   dateFromNow(1),
		endDate:     dateFromNow(3),
		price:       "500",
		image:       []byte("newer image bytes"),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated models.Vacation
	decodeBody(t, rr, &updated)
	require.NotEqual(t, firstImage, updated.ImageFileName)
	assert.NoFileExists(t, ta.uploadsDir+"/"+firstImage)
	assert.FileExists(t, ta.uploadsDir+"/"+updated.ImageFileName)

	// Deleting the vacation removes its stored image as well.
	rr = ta.doJSON(t, http.MethodDelete, fmt.Sprintf("/vacations/%d", created.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NoFileExists(t, ta.uploadsDir+"/"+updated.ImageFileName)

	// Nothing is left behind in the uploads directory.
	entries, err := os.ReadDir(ta.uploadsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
