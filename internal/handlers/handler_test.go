// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"eventpress/internal/database"
	"eventpress/internal/middleware"
	"eventpress/internal/models"
	"eventpress/internal/session"
	"eventpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "eventpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "eventpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkey returns a Redis client on DB 15, skipping if unreachable.
func testValkey(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(t.Context()).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// testEnv bundles a fully wired router with direct store access for
// seeding and assertions.
type testEnv struct {
	db       *sql.DB
	router   http.Handler
	users    *store.UserStore
	services *store.ServiceStore
}

// newTestEnv builds the same middleware and route layout the real server
// uses, minus the public renderer and object storage.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	valkey := testValkey(t)

	sessions := session.NewStore(valkey, time.Minute, false)
	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	packages := store.NewPackageStore(db)
	services := store.NewServiceStore(db)

	auth := NewAuth(sessions, users)
	admin := NewAdmin(categories, packages, services, nil)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(sessions))
	r.Post("/auth/login", auth.Login)
	r.Post("/logout", auth.Logout)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Route("/services", func(r chi.Router) {
			r.Get("/list", admin.ServicesList)
			r.Post("/upsert", admin.ServiceUpsert)
			r.Get("/{slug}", admin.ServiceGet)
			r.Patch("/{slug}", admin.ServicePatch)
			r.Post("/{slug}/archive", admin.ServiceArchive)
			r.Delete("/{slug}", admin.ServiceDelete)
		})
	})

	return &testEnv{db: db, router: r, users: users, services: services}
}

// do runs a request through the router, optionally with a session cookie.
func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login creates a user and returns its session cookie.
func (e *testEnv) login(t *testing.T, email, password string, role models.Role) *http.Cookie {
	t.Helper()

	if _, err := e.users.Create(email, password, "Test User", role); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { e.db.Exec("DELETE FROM users WHERE email = $1", email) })

	rec := e.do(t, http.MethodPost, "/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d, body %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("login response carried no session cookie")
	return nil
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	email := "handler-badlogin@test.local"
	if _, err := env.users.Create(email, "right-pass", "User", models.RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.db.Exec("DELETE FROM users WHERE email = $1", email) })

	rec := env.do(t, http.MethodPost, "/auth/login",
		`{"email":"`+email+`","password":"wrong-pass"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rec.Code)
	}

	// Unknown account answers exactly like a wrong password.
	rec2 := env.do(t, http.MethodPost, "/auth/login",
		`{"email":"nobody@test.local","password":"x"}`, nil)
	if rec2.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: got %d, want 401", rec2.Code)
	}
	if rec.Body.String() != rec2.Body.String() {
		t.Error("bad-credential responses must be indistinguishable")
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/services/list", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: got %d, want 401", rec.Code)
	}

	// Editor sessions exist but do not open the back-office.
	cookie := env.login(t, "handler-editor@test.local", "pass1234", models.RoleEditor)
	rec = env.do(t, http.MethodGet, "/admin/services/list", "", cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("editor cookie: got %d, want 401", rec.Code)
	}
}

func TestUnauthorizedWriteDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)

	slug := "handler-nomutate"
	t.Cleanup(func() { env.db.Exec("DELETE FROM services WHERE slug = $1", slug) })

	rec := env.do(t, http.MethodPost, "/admin/services/upsert",
		`{"slug":"`+slug+`","title":"Sızma Denemesi"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}

	svc, err := env.services.FindBySlug(slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if svc != nil {
		t.Error("rejected request must not write anything")
	}
}

func TestServiceUpsertDefaults(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "handler-defaults@test.local", "pass1234", models.RoleAdmin)

	slug := "handler-defaults-nisan"
	t.Cleanup(func() { env.db.Exec("DELETE FROM services WHERE slug = $1", slug) })

	// Slug and title only. The service must come out live and ranked
	// behind every manually ordered row.
	rec := env.do(t, http.MethodPost, "/admin/services/upsert",
		`{"slug":"`+slug+`","title":"Nişan"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: got %d, body %s", rec.Code, rec.Body.String())
	}

	svc, err := env.services.FindBySlug(slug)
	if err != nil || svc == nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if !svc.IsPublished {
		t.Error("service upserted without is_published must be published")
	}
	if svc.OrderNo == nil || *svc.OrderNo != models.DefaultServiceOrder {
		t.Errorf("default order_no: got %v, want %d", svc.OrderNo, models.DefaultServiceOrder)
	}
}

func TestServiceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "handler-lifecycle@test.local", "pass1234", models.RoleAdmin)

	slug := "handler-lifecycle-dugun"
	t.Cleanup(func() { env.db.Exec("DELETE FROM services WHERE slug = $1", slug) })

	// Create through upsert.
	rec := env.do(t, http.MethodPost, "/admin/services/upsert",
		`{"slug":"`+slug+`","title":"Düğün","is_published":true,"keywords":["düğün"]}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		OK   bool   `json:"ok"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("upsert response: %v", err)
	}
	if !created.OK || created.Slug != slug {
		t.Fatalf("upsert response: %+v", created)
	}

	// Fetch it back.
	rec = env.do(t, http.MethodGet, "/admin/services/"+slug, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}
	var svc models.Service
	if err := json.Unmarshal(rec.Body.Bytes(), &svc); err != nil {
		t.Fatalf("get response: %v", err)
	}
	if svc.Title != "Düğün" || !svc.IsPublished {
		t.Errorf("fetched service: %+v", svc)
	}

	// Patch the title, clear the keywords.
	rec = env.do(t, http.MethodPatch, "/admin/services/"+slug,
		`{"title":"Düğün Plus","keywords":null}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: got %d, body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &svc); err != nil {
		t.Fatalf("patch response: %v", err)
	}
	if svc.Title != "Düğün Plus" {
		t.Errorf("patched title: %q", svc.Title)
	}
	if svc.Keywords != nil {
		t.Errorf("keywords should be cleared: %v", svc.Keywords)
	}

	// Archive hides it from the public query and unpublishes it.
	rec = env.do(t, http.MethodPost, "/admin/services/"+slug+"/archive",
		`{"archived":true}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive: got %d", rec.Code)
	}
	stored, err := env.services.FindBySlug(slug)
	if err != nil || stored == nil {
		t.Fatalf("FindBySlug after archive: %v", err)
	}
	if !stored.IsArchived || stored.IsPublished {
		t.Errorf("after archive: archived=%v published=%v", stored.IsArchived, stored.IsPublished)
	}

	// Delete removes the row entirely.
	rec = env.do(t, http.MethodDelete, "/admin/services/"+slug, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/admin/services/"+slug, "", cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}
}
