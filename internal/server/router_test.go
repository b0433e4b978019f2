package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/justsurfingit/prep-pilot/internal/database"
	"github.com/justsurfingit/prep-pilot/internal/handlers"
	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/justsurfingit/prep-pilot/internal/metrics"
	"github.com/justsurfingit/prep-pilot/internal/models"
	"github.com/justsurfingit/prep-pilot/internal/repos"
	"github.com/justsurfingit/prep-pilot/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	jwtSecret  = "router-test-secret"
	legacyPrep = `{"phase_3_interview_preparation":{"core_requirements":["Go"]},"phase_4_interview_questions":[{"question":"Walk me through a design"}]}`
	migratePth = "/api/v1/admin/interview-prep/migrate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	roles  repos.RoleRepo
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	log := logger.Nop()
	appRepo := repos.NewApplicationRepo(db, log, "applications")
	roleRepo := repos.NewRoleRepo(db, log)
	registry := prometheus.NewRegistry()
	migrationMetrics, err := metrics.NewMigrationMetrics(registry)
	require.NoError(t, err)
	migrations := services.NewMigrationService(appRepo, log, services.MigrationConfig{DefaultLimit: 100, MaxLimit: 1000}).
		WithObserver(migrationMetrics)
	gate := services.NewAccessGate(services.NewJWTIdentityResolver(jwtSecret), roleRepo, "admin", log)

	router := NewRouter(RouterConfig{
		ApplicationHandler: handlers.NewApplicationHandler(nil, services.NewApplicationService(db, appRepo, log)),
		MigrationHandler:   handlers.NewMigrationHandler(migrations, nil, log),
		AdminGate:          gate,
		AllowedOrigins:     []string{"*"},
		Log:                log,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	return &testEnv{router: router, db: db, roles: roleRepo}
}

func (e *testEnv) seedLegacy(t *testing.T) uuid.UUID {
	t.Helper()
	app := &models.Application{
		OwnerID:       uuid.New(),
		Company:       models.Company{Name: "Co " + uuid.NewString()},
		Title:         "Dev",
		InterviewPrep: datatypes.JSON(legacyPrep),
	}
	require.NoError(t, e.db.Create(app).Error)
	return app.ID
}

func (e *testEnv) stored(t *testing.T, id uuid.UUID) string {
	t.Helper()
	var app models.Application
	require.NoError(t, e.db.First(&app, "id = ?", id).Error)
	return string(app.InterviewPrep)
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) post(path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestMigrateRequiresAuthentication(t *testing.T) {
	env := setup(t)
	id := env.seedLegacy(t)
	before := env.stored(t, id)

	w := env.post(migratePth, "", `{"dryRun":false}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
	assert.False(t, gjson.Get(w.Body.String(), "results").Exists())
	assert.Equal(t, before, env.stored(t, id), "rejected request must not touch data")
}

func TestMigrateRequiresAdminRole(t *testing.T) {
	env := setup(t)
	id := env.seedLegacy(t)
	before := env.stored(t, id)

	w := env.post(migratePth, token(t, uuid.New()), `{"dryRun":false}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "results").Exists())
	assert.Equal(t, before, env.stored(t, id))
}

func TestMigrateAsAdmin(t *testing.T) {
	env := setup(t)
	id := env.seedLegacy(t)
	admin := uuid.New()
	require.NoError(t, env.roles.Grant(context.Background(), admin, "admin"))
	bearer := token(t, admin)

	preview := env.post(migratePth, bearer, "")
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())
	assert.True(t, gjson.Get(preview.Body.String(), "dryRun").Bool())
	assert.Equal(t, "would_migrate", gjson.Get(preview.Body.String(), "results.details.0.status").String())
	assert.Equal(t, int64(1), gjson.Get(preview.Body.String(), "results.details.0.questionsCount").Int())
	assert.Equal(t, legacyPrep, env.stored(t, id))

	commit := env.post(migratePth, bearer, `{"dryRun":false,"limit":10}`)
	require.Equal(t, http.StatusOK, commit.Code)
	assert.Equal(t, int64(1), gjson.Get(commit.Body.String(), "results.migrated").Int())

	stored := env.stored(t, id)
	assert.True(t, gjson.Get(stored, "questions").IsArray())
	assert.Equal(t, "Go", gjson.Get(stored, "keyStrengths.0").String())
	assert.Equal(t, "Go", gjson.Get(stored, "interviewStructure.coreRequirements.0").String())

	bad := env.post(migratePth, bearer, `{"limit":0}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `interview_prep_migration_records_total{dry_run="false",status="migrated"} 1`)
	assert.Contains(t, w.Body.String(), `interview_prep_migration_records_total{dry_run="true",status="would_migrate"} 1`)
}

func TestPublicRoutes(t *testing.T) {
	env := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	id := env.seedLegacy(t)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/applications/"+id.String()+"/interview-prep", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "legacy", gjson.Get(w.Body.String(), "storedFormat").String())
}
