package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/itsatony/rahub/internal/database/dbtest"
	"github.com/itsatony/rahub/internal/hubservice"
	"github.com/itsatony/rahub/internal/repository/files"
	"github.com/itsatony/rahub/internal/repository/postgres"
	"github.com/itsatony/rahub/internal/secrets"
	"github.com/matryer/is"
)

// headerAuth admits the user named in X-Test-User
type headerAuth map[string]*hubservice.User

func (a headerAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a[r.Header.Get("X-Test-User")]
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(hubservice.WithUser(r.Context(), user)))
	})
}

var users = headerAuth{
	"joe":   {ID: "u1", Username: "joe", Prefix: "joe", Roles: []string{"user"}},
	"ann":   {ID: "u2", Username: "ann", Prefix: "ann", Roles: []string{"user"}},
	"guest": {ID: "u3", Username: "guest", Prefix: "guest"},
}

func newTestRouter(t *testing.T) (*is.I, *Router) {
	is := is.New(t)
	db := dbtest.NewSQLite(t)
	fileRepo, err := files.NewFileRepository(files.FileConfig{BasePath: t.TempDir()})
	is.NoErr(err)
	cipher, err := secrets.NewCipher("0123456789abcdef-test")
	is.NoErr(err)

	svc := hubservice.New(postgres.NewDeviceRepository(db), fileRepo, cipher, "https://ra.example.com")
	return is, NewRouter(svc, users, "user")
}

func do(router http.Handler, method, target, user, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	is, router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/health", "", "", "")
	is.Equal(rec.Code, http.StatusOK)

	rec = do(router, http.MethodGet, "/api/v1/swagger.json", "", "", "")
	is.Equal(rec.Code, http.StatusOK)
	var doc map[string]interface{}
	is.NoErr(json.Unmarshal(rec.Body.Bytes(), &doc))
	is.Equal(doc["basePath"], "/api/v1")
}

func TestProtectedRoutesNeedUserAndRole(t *testing.T) {
	is, router := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/devices/1", "", "", "")
	is.Equal(rec.Code, http.StatusUnauthorized)

	rec = do(router, http.MethodGet, "/api/v1/devices/1", "guest", "", "")
	is.Equal(rec.Code, http.StatusForbidden)
}

func TestDeviceLifecycle(t *testing.T) {
	is, router := newTestRouter(t)

	form := url.Values{
		"name":       {"meteo"},
		"passphrase": {"hunter2"},
		"desc":       {"garden station"},
		"monitoring": {"on"},
	}
	rec := do(router, http.MethodPost, "/api/v1/devices", "joe", "application/x-www-form-urlencoded", form.Encode())
	is.Equal(rec.Code, http.StatusCreated)

	var created struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Passphrase string `json:"passphrase"`
		Monitoring bool   `json:"monitoring"`
	}
	is.NoErr(json.Unmarshal(rec.Body.Bytes(), &created))
	is.Equal(created.ID, int64(1))
	is.Equal(created.Name, "meteo")
	is.Equal(created.Passphrase, "hunter2")
	is.True(created.Monitoring)

	rec = do(router, http.MethodPost, "/api/v1/devices", "joe", "application/json", `{"name":"bad name","passphrase":"x","desc":"y"}`)
	is.Equal(rec.Code, http.StatusBadRequest)

	rec = do(router, http.MethodGet, "/api/v1/devices/1", "ann", "", "")
	is.Equal(rec.Code, http.StatusForbidden)

	rec = do(router, http.MethodGet, "/api/v1/devices/99", "joe", "", "")
	is.Equal(rec.Code, http.StatusNotFound)

	rec = do(router, http.MethodPut, "/api/v1/devices/1", "joe", "application/json", `{"name":"meteo","passphrase":"hunter3","desc":"roof"}`)
	is.Equal(rec.Code, http.StatusOK)

	rec = do(router, http.MethodGet, "/api/v1/devices/1/detail", "joe", "", "")
	is.Equal(rec.Code, http.StatusOK)
	var detail struct {
		JSONURL string `json:"json_url"`
	}
	is.NoErr(json.Unmarshal(rec.Body.Bytes(), &detail))
	is.True(strings.HasPrefix(detail.JSONURL, "https://ra.example.com/json/data/"))

	rec = do(router, http.MethodPost, "/api/v1/devices/1/config", "joe", "application/json", `{"config_data":"interval=60"}`)
	is.Equal(rec.Code, http.StatusAccepted)

	rec = do(router, http.MethodGet, "/api/v1/devices/1/blobs", "joe", "", "")
	is.Equal(rec.Code, http.StatusOK)

	rec = do(router, http.MethodGet, "/api/v1/devices/1/blobs/5/download", "joe", "", "")
	is.Equal(rec.Code, http.StatusNotFound)

	rec = do(router, http.MethodGet, "/api/v1/devices/1/delete-stats", "joe", "", "")
	is.Equal(rec.Code, http.StatusOK)

	rec = do(router, http.MethodDelete, "/api/v1/devices/1", "joe", "", "")
	is.Equal(rec.Code, http.StatusBadRequest) // not confirmed

	rec = do(router, http.MethodDelete, "/api/v1/devices/1?confirm=true", "joe", "", "")
	is.Equal(rec.Code, http.StatusNoContent)

	rec = do(router, http.MethodGet, "/api/v1/devices/1", "joe", "", "")
	is.Equal(rec.Code, http.StatusNotFound)
}
