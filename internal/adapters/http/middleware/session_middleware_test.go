package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"buildease/internal/adapters/http/middleware"
	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/config"
	"buildease/internal/core/services"
	"buildease/internal/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	app   *fiber.App
	db    *gorm.DB
	auth  *services.AuthService
	store *services.SessionStore
	cfg   *config.Config
}

func buildTestApp(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{Cookie: config.CookieConfig{Name: "session_id"}}
	auth := services.NewAuthService(repositories.NewUserRepository(db), logger.Nop())
	store := services.NewSessionStore(repositories.NewSessionRepository(db), 0, logger.Nop())

	app := fiber.New()
	app.Get("/protected",
		middleware.SessionAuth(store, auth, cfg),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"id": middleware.CurrentUser(c).ID})
		},
	)
	app.Get("/boss-only",
		middleware.SessionAuth(store, auth, cfg),
		middleware.RequireBoss(),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true})
		},
	)

	return &fixture{app: app, db: db, auth: auth, store: store, cfg: cfg}
}

// openSession registers a user and writes a session row for it, returning
// the sid for the cookie
func (f *fixture) openSession(t *testing.T, id, role, companyCode string) string {
	t.Helper()

	user, err := f.auth.Register(context.Background(), &services.RegisterInput{
		ID:          id,
		Password:    "testpass1234",
		Name:        "Test " + id,
		Role:        role,
		CompanyCode: companyCode,
	})
	require.NoError(t, err)

	sid := "sid-" + id
	expires := time.Now().Add(time.Hour)
	require.NoError(t, f.store.Set(context.Background(), sid, &services.SessionPayload{
		User:   user,
		Cookie: services.CookieMeta{Expires: &expires},
	}))

	return sid
}

func doRequest(t *testing.T, app *fiber.App, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: sid})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSessionAuth_NoCookie(t *testing.T) {
	f := buildTestApp(t)

	resp := doRequest(t, f.app, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionAuth_UnknownSid(t *testing.T) {
	f := buildTestApp(t)

	resp := doRequest(t, f.app, "/protected", "no-such-session")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionAuth_LiveSession(t *testing.T) {
	f := buildTestApp(t)
	sid := f.openSession(t, "boss1", "boss", "")

	resp := doRequest(t, f.app, "/protected", sid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionAuth_ExpiredSessionRejected(t *testing.T) {
	f := buildTestApp(t)
	sid := f.openSession(t, "boss1", "boss", "")

	// Rewrite the session with an already-passed expiry
	past := time.Now().Add(-time.Minute)
	user, err := f.auth.GetByID(context.Background(), "boss1")
	require.NoError(t, err)
	require.NoError(t, f.store.Set(context.Background(), sid, &services.SessionPayload{
		User:   user,
		Cookie: services.CookieMeta{Expires: &past},
	}))

	resp := doRequest(t, f.app, "/protected", sid)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireBoss_BlocksEmployee(t *testing.T) {
	f := buildTestApp(t)
	bossSid := f.openSession(t, "boss1", "boss", "")

	boss, err := f.auth.GetByID(context.Background(), "boss1")
	require.NoError(t, err)
	empSid := f.openSession(t, "emp1", "employee", boss.CompanyCode)

	resp := doRequest(t, f.app, "/boss-only", empSid)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, f.app, "/boss-only", bossSid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Role and status edits apply on the next request without a re-login
// because the middleware re-fetches the authoritative user row
func TestSessionAuth_PicksUpRowChanges(t *testing.T) {
	f := buildTestApp(t)
	sid := f.openSession(t, "boss1", "boss", "")

	resp := doRequest(t, f.app, "/boss-only", sid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Demote the user directly in the row; the stale session snapshot
	// still says boss
	require.NoError(t, f.db.Model(&models.User{}).
		Where("id = ?", "boss1").Update("role", "employee").Error)

	resp = doRequest(t, f.app, "/boss-only", sid)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
