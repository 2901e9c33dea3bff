package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/config"
	"github.com/theirongolddev/allot/internal/model"
)

func sampleRecord(t *testing.T) alloc.Record {
	t.Helper()
	s := alloc.NewSession()
	require.NoError(t, s.SetTotalFunds("100000"))
	_, err := s.AddDefaultPortfolio()
	require.NoError(t, err)
	_, err = s.AddItem(alloc.NewItem{Name: "Cash", Category: model.CategoryOther, Color: "#00B42A", Percentage: 2.5})
	require.NoError(t, err)
	return s.Record()
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	out := map[string]Store{}
	for _, name := range []string{config.StoreFile, config.StoreSQLite} {
		st, err := Open(config.GeneralConfig{Store: name}, filepath.Join(dir, name))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		out[name] = st
	}
	return out
}

func TestStoreRoundTrip(t *testing.T) {
	rec := sampleRecord(t)
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(alloc.RecordKey, rec))
			got, err := st.Load(alloc.RecordKey)
			require.NoError(t, err)
			assert.Equal(t, rec, got)

			// Saving again replaces rather than appends.
			rec2 := rec
			rec2.Projects = rec.Projects[:2]
			rec2.TotalFunds = "5"
			require.NoError(t, st.Save(alloc.RecordKey, rec2))
			got, err = st.Load(alloc.RecordKey)
			require.NoError(t, err)
			assert.Equal(t, rec2, got)
		})
	}
}

func TestStoreMissingKey(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Load("nothing-here")
			assert.True(t, errors.Is(err, ErrNoRecord))
		})
	}
}

func TestStoreKeysAreIndependent(t *testing.T) {
	rec := sampleRecord(t)
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save("b", rec))
			require.NoError(t, st.Save("a", alloc.Record{TotalFunds: "1"}))

			keys, err := st.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)

			got, err := st.Load("a")
			require.NoError(t, err)
			assert.Equal(t, "1", got.TotalFunds)
			assert.Empty(t, got.Projects)

			got, err = st.Load("b")
			require.NoError(t, err)
			assert.Len(t, got.Projects, len(rec.Projects))
		})
	}
}

func TestStoreSatisfiesPersister(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := alloc.NewSession(alloc.WithPersister(st, "k"))
			require.NoError(t, s.SetTotalFunds("1000"))
			_, err := s.AddItem(alloc.NewItem{Percentage: 50})
			require.NoError(t, err)
			require.NoError(t, s.LastPersistError())

			got, err := st.Load("k")
			require.NoError(t, err)
			assert.Equal(t, s.Record(), got)
		})
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	st, err := OpenFile(path)
	require.NoError(t, err)

	_, err = st.Load(alloc.RecordKey)
	assert.ErrorIs(t, err, alloc.ErrCorruptRecord)

	require.NoError(t, st.Save(alloc.RecordKey, alloc.Record{TotalFunds: "10"}))
	got, err := st.Load(alloc.RecordKey)
	require.NoError(t, err)
	assert.Equal(t, "10", got.TotalFunds)

	bak, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "not json", string(bak))
}

func TestFileStoreBacksUpCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `{"investment-portfolio-data": 42, "other": {"totalFunds":"5"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	st, err := OpenFile(path)
	require.NoError(t, err)

	_, err = st.Load(alloc.RecordKey)
	require.ErrorIs(t, err, alloc.ErrCorruptRecord)
	require.NoError(t, st.Save(alloc.RecordKey, alloc.Record{TotalFunds: "10"}))

	bak, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	var saved map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bak, &saved))
	assert.JSONEq(t, "42", string(saved[alloc.RecordKey]))

	other, err := st.Load("other")
	require.NoError(t, err)
	assert.Equal(t, "5", other.TotalFunds)
}

func TestStorePaths(t *testing.T) {
	dir := t.TempDir()

	fs, err := OpenFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), fs.Path())

	db, err := OpenSQLite(filepath.Join(dir, SQLiteName))
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, filepath.Join(dir, SQLiteName), db.Path())

	n, err := db.ItemCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.Save("a", sampleRecord(t)))
	n, err = db.ItemCount()
	require.NoError(t, err)
	assert.Equal(t, len(sampleRecord(t).Projects), n)
}

func TestFileStoreReadsBrowserRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := `{"investment-portfolio-data": {"totalFunds":"2000","projects":[{"id":"project-0","name":"A","amount":500,"percentage":25,"category":"债券","color":"#722ed1"}],"projectIdCounter":1}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	st, err := OpenFile(path)
	require.NoError(t, err)
	rec, err := st.Load(alloc.RecordKey)
	require.NoError(t, err)
	require.Len(t, rec.Projects, 1)
	assert.Equal(t, model.CategoryBond, rec.Projects[0].Category)
	assert.Equal(t, "#722ED1", rec.Projects[0].Color)
	assert.Equal(t, 1, rec.ProjectIDCounter)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.GeneralConfig{Store: "redis"}, t.TempDir())
	assert.Error(t, err)
}
