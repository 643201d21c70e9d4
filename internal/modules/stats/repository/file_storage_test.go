package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	total, err := s.AddJoined(1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = s.AddJoined(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	total, err = s.AddJoined(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "joined counter never goes negative")

	_, err = s.RecordBan("alpha")
	require.NoError(t, err)
	banned, err := s.RecordBan("beta")
	require.NoError(t, err)
	assert.Equal(t, 2, banned)

	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	require.NoError(t, s.SetLastSync(at))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalJoined)
	assert.Equal(t, 2, snap.TotalBanned)
	assert.Equal(t, "beta", snap.LastBanned)
	assert.Equal(t, "14:05:07 03/09/2024", snap.LastSync)
}

func TestCorruptCounter(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, totalBotsFile), []byte("lots\n"), 0644))

	_, err = s.RecordBan("alpha")
	assert.Error(t, err)
}
