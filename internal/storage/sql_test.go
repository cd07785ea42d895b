package storage

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore_BindPlaceholders(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.bind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "x = ?", lite.bind("x = ?"))
}

func TestSQLStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := newSQLStore(db, DialectPostgres)
	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO records (id, collection, payload, created_at) VALUES ($1, $2, $3, $4)`)).
		WithArgs("rec-1", CollectionSearches, sqlmock.AnyArg(), ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = st.Save(context.Background(), CollectionSearches, Record{ID: "rec-1", Query: "gatos", Result: "felinos", Source: SourceWeb, Timestamp: ts})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_QueryRecentDecodesPayloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := newSQLStore(db, DialectSQLite)
	newer, _ := json.Marshal(Record{ID: "2", Query: "cães"})
	older, _ := json.Marshal(Record{ID: "1", Query: "gatos"})

	rows := sqlmock.NewRows([]string{"payload"}).
		AddRow(string(newer)).
		AddRow("not json").
		AddRow(string(older))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT payload FROM records WHERE collection = ? ORDER BY created_at DESC LIMIT ?`)).
		WithArgs(CollectionSearches, 5).
		WillReturnRows(rows)

	got, err := st.QueryRecent(context.Background(), CollectionSearches, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cães", got[0].Query)
	assert.Equal(t, "gatos", got[1].Query)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Prune(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := newSQLStore(db, DialectPostgres)
	cutoff := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM records WHERE created_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := st.Prune(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS records`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS idx_records_collection`)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, newSQLStore(db, DialectSQLite).migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
