package database

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"business-directory/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// PostgreSQL
// ==========================

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE companies SET name = \$1`).WithArgs("Acme").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	client := &PostgresClient{DB: db}
	err = client.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE companies SET name = $1`, "Acme")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	failure := errors.New("constraint violated")
	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Redis
// ==========================

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(config.RedisConfig{
		Address:      "cache:6379",
		DB:           2,
		PoolSize:     20,
		MinIdleConns: 4,
		DialTimeout:  1500,
		ReadTimeout:  250,
		WriteTimeout: 500,
	})

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
	assert.Equal(t, 1500*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.WriteTimeout)
}

// ==========================
// Elasticsearch
// ==========================

func newFakeElasticsearch(t *testing.T, indexExists bool) (*ElasticsearchClient, *[]string) {
	t.Helper()
	var mu sync.Mutex
	calls := []string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/companies":
			if indexExists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case r.Method == http.MethodPut && r.URL.Path == "/companies":
			_, _ = w.Write([]byte(`{"acknowledged":true,"index":"companies"}`))
		case r.Method == http.MethodHead && r.URL.Path == "/":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &calls
}

func TestElasticsearch_EnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		client, calls := newFakeElasticsearch(t, false)

		err := client.EnsureIndex(context.Background(), "companies", `{"mappings":{}}`)

		require.NoError(t, err)
		assert.Equal(t, []string{"HEAD /companies", "PUT /companies"}, *calls)
	})

	t.Run("leaves existing index alone", func(t *testing.T) {
		client, calls := newFakeElasticsearch(t, true)

		err := client.EnsureIndex(context.Background(), "companies", `{"mappings":{}}`)

		require.NoError(t, err)
		assert.Equal(t, []string{"HEAD /companies"}, *calls)
	})
}

func TestElasticsearch_Ping(t *testing.T) {
	client, _ := newFakeElasticsearch(t, true)
	assert.NoError(t, client.Ping(context.Background()))
}
