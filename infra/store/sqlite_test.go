package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunledger/sunledger/core/model"
)

func fptr(v float64) *float64 { return &v }

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "readings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_UpsertAndLoad(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	obs := []model.Observation{
		{Timestamp: base, GenerationKWh: fptr(2.5), ConsumptionKWh: fptr(1.1)},
		{Timestamp: base.Add(time.Hour), GenerationKWh: nil, ConsumptionKWh: fptr(0.9)},
		{Timestamp: base.Add(2 * time.Hour), GenerationKWh: fptr(3.0)},
	}
	require.NoError(t, s.Upsert(ctx, obs))

	got, err := s.Load(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, base, got[0].Timestamp)
	assert.Equal(t, 2.5, *got[0].GenerationKWh)
	assert.Nil(t, got[1].GenerationKWh)
	assert.Equal(t, 0.9, *got[1].ConsumptionKWh)
	assert.Nil(t, got[2].ConsumptionKWh)
}

func TestSQLiteStore_UpsertOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	ts := time.Date(2020, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(ctx, []model.Observation{{Timestamp: ts, GenerationKWh: fptr(1)}}))
	require.NoError(t, s.Upsert(ctx, []model.Observation{{Timestamp: ts, GenerationKWh: fptr(4)}}))

	got, err := s.Load(ctx, ts, ts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4.0, *got[0].GenerationKWh)
}

func TestSQLiteStore_UTCKeyCollapsesLocalDuplicates(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// The same instant expressed in two zones maps to one row.
	loc := time.FixedZone("UTC-5", -5*3600)
	utc := time.Date(2020, 11, 1, 6, 0, 0, 0, time.UTC)
	local := utc.In(loc)

	require.NoError(t, s.Upsert(ctx, []model.Observation{
		{Timestamp: utc, GenerationKWh: fptr(1)},
		{Timestamp: local, GenerationKWh: fptr(2)},
	}))

	_, _, count, err := s.Span(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_Span(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, _, _, err := s.Span(ctx)
	var nde *model.NoDataError
	require.ErrorAs(t, err, &nde)

	base := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Upsert(ctx, []model.Observation{
		{Timestamp: base, GenerationKWh: fptr(1)},
		{Timestamp: base.Add(48 * time.Hour), GenerationKWh: fptr(1)},
	}))

	first, last, count, err := s.Span(ctx)
	require.NoError(t, err)
	assert.Equal(t, base, first)
	assert.Equal(t, base.Add(48*time.Hour), last)
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_RejectsZeroTimestamp(t *testing.T) {
	s := openStore(t)
	err := s.Upsert(context.Background(), []model.Observation{{GenerationKWh: fptr(1)}})
	var ide *model.InputDataError
	require.True(t, errors.As(err, &ide))
}
