package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "data", "schedules.json"))
}

func sampleItem(name string) Item {
	return Item{
		Enabled:   true,
		Name:      name,
		Frequency: "day",
		Time:      "09:00",
		Message:   "morning net check-in",
		Action:    "message",
		Channel:   2,
		Interface: 1,
	}
}

func TestStoreCreateAssignsIncrementingIDs(t *testing.T) {
	s := newStore(t)

	first, err := s.Create(sampleItem("net"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := s.Create(sampleItem("weather"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	// IDs never reuse a deleted slot.
	ok, err := s.Delete(first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	third, err := s.Create(sampleItem("again"))
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)
}

func TestStoreListMissingFile(t *testing.T) {
	items, err := newStore(t).List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStoreGet(t *testing.T) {
	s := newStore(t)
	created, err := s.Create(sampleItem("net"))
	require.NoError(t, err)

	got, ok, err := s.Get(created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "net", got.Name)

	_, ok, err = s.Get(99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreUpdateKeepsID(t *testing.T) {
	s := newStore(t)
	created, err := s.Create(sampleItem("net"))
	require.NoError(t, err)

	changed := sampleItem("renamed")
	changed.ID = 999 // caller-supplied id is ignored
	updated, ok, err := s.Update(created.ID, changed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "renamed", updated.Name)

	_, ok, err = s.Update(42, sampleItem("nope"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreDeleteMissing(t *testing.T) {
	ok, err := newStore(t).Delete(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivityLogAppendCapsAndTruncates(t *testing.T) {
	l := NewActivityLog(filepath.Join(t.TempDir(), "data", "scheduler_log.json"))

	stored, err := l.Append(LogEntry{
		ScheduleName: "net",
		Action:       "message",
		Message:      strings.Repeat("m", 500),
		Channel:      2,
		Interface:    1,
	})
	require.NoError(t, err)
	assert.Len(t, stored.Message, 200)
	assert.Equal(t, "sent", stored.Status)
	assert.NotEmpty(t, stored.Timestamp)

	for i := 0; i < maxActivityEntries+10; i++ {
		_, err := l.Append(LogEntry{ScheduleName: "net", Action: "message", Interface: 1})
		require.NoError(t, err)
	}
	assert.Len(t, l.Entries(), maxActivityEntries)
}

func TestActivityLogClear(t *testing.T) {
	l := NewActivityLog(filepath.Join(t.TempDir(), "scheduler_log.json"))
	_, err := l.Append(LogEntry{ScheduleName: "net", Action: "message", Interface: 1, Status: "failed"})
	require.NoError(t, err)
	require.NoError(t, l.Clear())
	assert.Empty(t, l.Entries())
}

func TestActivityLogCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler_log.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	assert.Empty(t, NewActivityLog(path).Entries())
}
