package universe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

var today = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

func TestLoad_DedupesAndSkipsBlanks(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "universe.csv", "TCS.NS\n\nINFY.NS,IT\n# comment\n TCS.NS \nM&M.NS\n")

	got, err := Load(path, nil, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS.NS", "INFY.NS", "M&M.NS"}, got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil, today)
	assert.Error(t, err)
}

func TestQuarantine_SkipsRecentBadSymbols(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "universe.csv", "A.NS\nB.NS\nC.NS\n")
	q := NewQuarantine(filepath.Join(dir, "data", "bad.txt"), 7)

	require.NoError(t, q.Mark("B.NS", "no data", today.AddDate(0, 0, -2)))
	require.NoError(t, q.Mark("C.NS", "no data", today.AddDate(0, 0, -8)))

	got, err := Load(path, q, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.NS", "C.NS"}, got, "C.NS is past the retry window")
}

func TestQuarantine_LatestMarkWins(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "universe.csv", "A.NS\nB.NS\n")
	q := NewQuarantine(filepath.Join(dir, "bad.txt"), 7)

	require.NoError(t, q.Mark("B.NS", "no data", today.AddDate(0, 0, -30)))
	require.NoError(t, q.Mark("B.NS", "no data", today.AddDate(0, 0, -1)))

	got, err := Load(path, q, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.NS"}, got)
}

func TestQuarantine_FallsBackWhenAllBad(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "universe.csv", "A.NS\nB.NS\n")
	q := NewQuarantine(filepath.Join(dir, "bad.txt"), 7)
	require.NoError(t, q.Mark("A.NS", "x", today))
	require.NoError(t, q.Mark("B.NS", "x", today))

	got, err := Load(path, q, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.NS", "B.NS"}, got)
}

func TestQuarantine_FileFormat(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	q := NewQuarantine(bad, 7)
	require.NoError(t, q.Mark("X.NS", "no data", today))

	data, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, "X.NS|2024-06-10\n", string(data))
}

func TestQuarantine_UndatedLineCountsAsToday(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "universe.csv", "A.NS\nB.NS\n")
	write(t, dir, "bad.txt", "B.NS\n")

	got, err := Load(path, NewQuarantine(filepath.Join(dir, "bad.txt"), 7), today)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.NS"}, got)
}
