package application_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/application"
	onboardingHttp "onboarding/internal/http"
	appHandler "onboarding/internal/http/application"
)

// fakeRepo is an in-memory Repository with the same version-check contract
// as the postgres store.
type fakeRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*application.Application
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: make(map[uuid.UUID]*application.Application)}
}

func clone(app *application.Application) *application.Application {
	cp := *app

	if app.Address != nil {
		addr := *app.Address
		cp.Address = &addr
	}

	return &cp
}

func (r *fakeRepo) Create(_ context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app.ID = uuid.New()
	app.Version = 1
	app.CreatedAt = time.Now().UTC()
	app.UpdatedAt = app.CreatedAt
	r.apps[app.ID] = clone(app)

	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, application.ErrNotFound
	}

	return clone(app), nil
}

func (r *fakeRepo) Update(_ context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.apps[app.ID]
	if !ok {
		return application.ErrNotFound
	}

	if stored.Version != app.Version {
		return application.ErrVersionConflict
	}

	app.Version++
	app.UpdatedAt = time.Now().UTC()
	r.apps[app.ID] = clone(app)

	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apps := make([]*application.Application, 0, len(r.apps))
	for _, app := range r.apps {
		apps = append(apps, clone(app))
	}

	return apps, nil
}

func (r *fakeRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.apps = make(map[uuid.UUID]*application.Application)

	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()

	repo := newFakeRepo()
	svc := application.NewService(repo)
	router := onboardingHttp.New(appHandler.NewHandler(svc))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, repo
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}

	return resp, decoded
}

func TestCreateApplication(t *testing.T) {
	t.Run("EmptyBodyOpensDraft", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", "")

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "DRAFT", body["status"])
		assert.NotEmpty(t, body["id"])
		assert.Equal(t, fmt.Sprintf("/api/v1/applications/%s", body["id"]), resp.Header.Get("Location"))
		assert.Nil(t, body["name"])
		assert.Nil(t, body["address"])
	})

	t.Run("SuppliedFieldsEchoed", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications",
			`{"name":"Ada Lovelace","dateOfBirth":"1990-05-10","email":"ada@example.com"}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Ada Lovelace", body["name"])
		assert.Equal(t, "1990-05-10", body["dateOfBirth"])
		assert.Equal(t, "ada@example.com", body["email"])
	})

	t.Run("FutureDateOfBirthRejected", func(t *testing.T) {
		srv, _ := newTestServer(t)

		nextYear := time.Now().UTC().Year() + 1
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications",
			fmt.Sprintf(`{"dateOfBirth":"%d-01-01"}`, nextYear))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errs, _ := body["errors"].(map[string]any)
		assert.Contains(t, errs, "dateOfBirth")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Malformed JSON request", body["detail"])
	})
}

func TestGetApplication(t *testing.T) {
	srv, repo := newTestServer(t)

	t.Run("NotFound", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/applications/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Application not found", body["detail"])
	})

	t.Run("InvalidID", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/applications/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid id", body["detail"])
	})

	t.Run("ReturnsRecord", func(t *testing.T) {
		require.NoError(t, repo.DeleteAll(context.Background()))

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", `{"name":"Ada"}`)

		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/applications/"+created["id"].(string), "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Ada", body["name"])
	})
}

func TestUpdateApplication(t *testing.T) {
	t.Run("InvalidPostCodeLeavesRecordUnchanged", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", `{}`)
		id := created["id"].(string)

		resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/applications/"+id,
			`{"address":{"postCode":"INVALID"}}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Validation Failed", body["detail"])
		errs, _ := body["errors"].(map[string]any)
		assert.Equal(t, "Postcode must be 4 digits followed by 2 letters (e.g., 1000 AA)", errs["address.postCode"])

		_, after := doJSON(t, http.MethodGet, srv.URL+"/api/v1/applications/"+id, "")
		assert.Nil(t, after["address"], "failed update must not touch the record")
	})

	t.Run("ValidPostCodePersists", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", `{}`)
		id := created["id"].(string)

		resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/applications/"+id,
			`{"address":{"postCode":"1234 AB"}}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		addr, _ := body["address"].(map[string]any)
		assert.Equal(t, "1234 AB", addr["postCode"])
	})

	t.Run("MergeKeepsOmittedFields", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications",
			`{"name":"Ada","email":"ada@example.com"}`)
		id := created["id"].(string)

		resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/applications/"+id,
			`{"idDocument":"NL-PASS-1"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Ada", body["name"])
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "NL-PASS-1", body["idDocument"])
	})

	t.Run("NotFound", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/applications/"+uuid.NewString(),
			`{"name":"Ada"}`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("UnknownAccountTypeIsMalformed", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", `{}`)
		id := created["id"].(string)

		resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/v1/applications/"+id,
			`{"accountType":"PREMIUM"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Malformed JSON request", body["detail"])
	})
}

const fullApplication = `{
	"name": "Ada Lovelace",
	"dateOfBirth": "1990-05-10",
	"idDocument": "NL-PASS-1",
	"accountType": "SAVINGS",
	"startingBalance": "250.00",
	"monthlySalary": "4200.00",
	"interestedInOtherProducts": false,
	"email": "ada@example.com",
	"address": {
		"streetName": "Main Street",
		"houseNumber": "42",
		"postCode": "1234 AB",
		"city": "Amsterdam"
	}
}`

func TestSubmitApplication(t *testing.T) {
	t.Run("IncompleteDraftReportsEveryViolation", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", `{}`)
		id := created["id"].(string)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications/"+id+"/submit", "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Validation Failed", body["detail"])

		errs, _ := body["errors"].(map[string]any)
		for _, field := range []string{"name", "dateOfBirth", "idDocument", "accountType", "address"} {
			assert.Contains(t, errs, field)
		}

		_, after := doJSON(t, http.MethodGet, srv.URL+"/api/v1/applications/"+id, "")
		assert.Equal(t, "DRAFT", after["status"])
	})

	t.Run("ValidDraftCompletesAndBecomesImmutable", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications", fullApplication)
		id := created["id"].(string)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications/"+id+"/submit", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "COMPLETED", body["status"])

		resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications/"+id+"/submit", "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "Application is already completed and cannot be updated", body["detail"])

		resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/v1/applications/"+id, `{"name":"Eve"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		_, after := doJSON(t, http.MethodGet, srv.URL+"/api/v1/applications/"+id, "")
		assert.Equal(t, "Ada Lovelace", after["name"])
	})

	t.Run("NotFound", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/applications/"+uuid.NewString()+"/submit", "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
