package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assist-scheduler-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "sched", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=sched sslmode=disable", dsn)
}

type failingPinger struct{ err error }

func (f failingPinger) PingContext(context.Context) error { return f.err }

func TestReady(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	require.NoError(t, Ready(context.Background(), map[string]Pinger{"postgres": sqlxDB}))
	assert.NoError(t, mock.ExpectationsWereMet())

	down := errors.New("connection refused")
	err = Ready(context.Background(), map[string]Pinger{"redis": failingPinger{err: down}})
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "redis not ready")
}
