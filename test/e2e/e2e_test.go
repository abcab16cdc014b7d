// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-directory/internal/common/config"
	"business-directory/internal/common/database"
	"business-directory/internal/common/logger"
	"business-directory/internal/directory"
	"business-directory/internal/models"
	"business-directory/internal/server"
	"business-directory/web"
)

// Environment shared by every test. Tests skip when skipReason is set.
var (
	cfg        *config.Config
	pg         *database.PostgresClient
	redis      *database.RedisClient
	es         *database.ElasticsearchClient
	skipReason string
)

func TestMain(m *testing.M) {
	if os.Getenv("DIRECTORY_E2E") == "" {
		skipReason = "set DIRECTORY_E2E=1 to run against live PostgreSQL, Redis and Elasticsearch"
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := setup(ctx)
	cancel()
	if err != nil {
		skipReason = "infrastructure unavailable: " + err.Error()
	}

	code := m.Run()

	if pg != nil {
		pg.Close()
	}
	if redis != nil {
		redis.Close()
	}
	os.Exit(code)
}

func setup(ctx context.Context) error {
	var err error
	if cfg, err = config.Load(); err != nil {
		return err
	}
	if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
		return err
	}
	if err = pg.Ping(ctx); err != nil {
		return err
	}
	if _, err = pg.Migrate(database.MigrateUp, 0); err != nil {
		return err
	}
	if redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
		return err
	}
	if err = redis.Ping(ctx); err != nil {
		return err
	}
	if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
		return err
	}
	return es.Ping(ctx)
}

func requireEnv(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	if skipReason != "" {
		t.Skip(skipReason)
	}
}

func newService(t *testing.T) *directory.Service {
	t.Helper()
	index := directory.NewSearchIndex(es, cfg.Directory.SearchIndex+"-e2e")
	require.NoError(t, index.EnsureIndex(context.Background()))
	return directory.NewService(directory.Deps{
		Store:  directory.NewRepository(pg.DB),
		Index:  index,
		Cache:  directory.NewSnapshotCache(redis.Client, time.Minute),
		Logger: logger.NewTestLogger(t),
	})
}

func newCompany(prefix string) models.BusinessEntity {
	suffix := uuid.New().String()[:8]
	return models.BusinessEntity{
		Name:        fmt.Sprintf("%s %s", prefix, suffix),
		Description: "End-to-end test listing",
		Phone:       "+7 701 555 0199",
		Email:       "e2e-" + suffix + "@directory.example",
		Location:    &models.Location{Address: "1 Test Street", City: "Almaty"},
	}
}

// ==========================
// Infrastructure
// ==========================

func TestDatabaseConnections(t *testing.T) {
	requireEnv(t)
	ctx := context.Background()

	t.Run("PostgreSQLConnection", func(t *testing.T) {
		require.NoError(t, pg.Ping(ctx))
		var count int
		require.NoError(t, pg.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&count))
		assert.GreaterOrEqual(t, count, 0)
	})

	t.Run("RedisConnection", func(t *testing.T) {
		require.NoError(t, redis.Ping(ctx))
	})

	t.Run("ElasticsearchConnection", func(t *testing.T) {
		require.NoError(t, es.Ping(ctx))
	})
}

// ==========================
// Directory service
// ==========================

func TestCompanyLifecycle(t *testing.T) {
	requireEnv(t)
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.CreateEntity(ctx, newCompany("E2E Lifecycle"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.DeleteEntity(context.Background(), created.ID) })
	assert.Equal(t, models.ModerationPending, created.ModerationStatus)
	assert.Equal(t, "Almaty", created.City())

	_, err = svc.CreateEntity(ctx, newCompanyNamed(created.Name))
	require.Error(t, err, "names are unique case-insensitively")

	require.Eventually(t, func() bool {
		ids, err := svc.SearchIDs(ctx, created.Name)
		return err == nil && containsID(ids, created.ID)
	}, 10*time.Second, 500*time.Millisecond)

	approved, err := svc.Moderate(ctx, created.ID, models.ModerationApproved, "looks fine", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationApproved, approved.ModerationStatus)

	_, err = svc.Moderate(ctx, created.ID, models.ModerationApproved, "", nil)
	require.Error(t, err, "re-applying a status is not a transition")

	payload, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(payload), created.Name)

	require.NoError(t, svc.DeleteEntity(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
}

func newCompanyNamed(name string) models.BusinessEntity {
	e := newCompany("dup")
	e.Name = strings.ToUpper(name)
	return e
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ==========================
// Dashboard over HTTP
// ==========================

func TestDashboardModeration(t *testing.T) {
	requireEnv(t)
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.CreateEntity(ctx, newCompany("E2E Dashboard"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.DeleteEntity(context.Background(), created.ID) })

	templates, err := web.Templates()
	require.NoError(t, err)
	srv := server.New(server.Deps{
		Config:    cfg.Server,
		Panel:     cfg.Panel,
		Directory: svc,
		Templates: templates,
		Logger:    logger.NewTestLogger(t),
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar, Timeout: 15 * time.Second}
	admin := ts.URL + cfg.Server.AdminPath

	var before struct {
		Counters struct {
			PendingModeration int `json:"pendingModeration"`
		} `json:"counters"`
	}
	getJSON(t, client, admin+"/?section=moderation&format=json", &before)
	require.GreaterOrEqual(t, before.Counters.PendingModeration, 1)

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/companies/%d/approve", admin, created.ID), nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationApproved, stored.ModerationStatus)
}

func getJSON(t *testing.T, client *http.Client, url string, v interface{}) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
