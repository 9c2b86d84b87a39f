// Test Type: Unit Test
// Description: Tests for the materialize package - create/update reconciliation and conflicts

package materialize_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/materialize"
	"github.com/crossgen/crossgen/pkg/templates"
)

func stagedSet() []templates.StagedFile {
	return []templates.StagedFile{
		{RelPath: "README.md", Content: []byte("# Fire Truck\n")},
		{RelPath: "app/src/main.txt", Content: []byte("package com.example.fire_truck\n")},
		{RelPath: "assets/logo.png", Content: []byte{0x89, 0x50, 0x4e, 0x47}, Binary: true},
	}
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCreateWritesEverything(t *testing.T) {
	dir := t.TempDir()

	result, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)
	assert.Len(t, result.Written, 3)
	assert.Empty(t, result.Pending)

	assert.Equal(t, "# Fire Truck\n", readFile(t, dir, "README.md"))
	assert.Equal(t, "package com.example.fire_truck\n", readFile(t, dir, "app/src/main.txt"))

	state, err := materialize.LoadState(dir)
	require.NoError(t, err)
	assert.True(t, state.Exists())
	assert.Len(t, state.Files, 3)
	assert.Equal(t, materialize.Fingerprint([]byte("# Fire Truck\n")), state.Files["README.md"])
}

func TestCreateRefusesExistingProject(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	_, err = materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestCreateRefusesUnmanagedCollision(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "user notes, do not touch\n")

	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMaterializeExists))
	assert.Equal(t, "README.md", errors.GetErrorDetails(err)["path"])

	// Nothing may have been written before the collision was detected.
	assert.NoFileExists(t, filepath.Join(dir, "app/src/main.txt"))
	assert.Equal(t, "user notes, do not touch\n", readFile(t, dir, "README.md"))
}

func TestCreateAllowsEmptyPlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "")

	result, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)
	assert.Len(t, result.Written, 3)
}

func TestUpdateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	result, err := materialize.Materialize(dir, stagedSet(), materialize.Update, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Written, "unchanged content must produce zero writes")
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Pending)
	assert.Len(t, result.Skipped, 3)
}

func TestUpdateOverwritesUnmodifiedManagedFile(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	staged := stagedSet()
	staged[0].Content = []byte("# Fire Truck v2\n")
	result, err := materialize.Materialize(dir, staged, materialize.Update, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, result.Written)
	assert.Equal(t, "# Fire Truck v2\n", readFile(t, dir, "README.md"))
}

func TestUpdateReportsUserEditAsConflict(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	writeFile(t, dir, "README.md", "# my own heading\n")

	staged := stagedSet()
	staged[0].Content = []byte("# Fire Truck v2\n")
	result, err := materialize.Materialize(dir, staged, materialize.Update, nil)
	require.NoError(t, err)

	require.Len(t, result.Pending, 1)
	assert.Equal(t, "README.md", result.Pending[0].Path)
	assert.Equal(t, materialize.ConflictModified, result.Pending[0].Kind)
	assert.Equal(t, "# my own heading\n", readFile(t, dir, "README.md"),
		"a pending conflict must leave the file untouched")
}

func TestUpdateConflictDecisions(t *testing.T) {
	t.Run("approved_overwrites", func(t *testing.T) {
		dir := t.TempDir()
		_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
		require.NoError(t, err)
		writeFile(t, dir, "README.md", "# my own heading\n")

		staged := stagedSet()
		staged[0].Content = []byte("# Fire Truck v2\n")
		result, err := materialize.Materialize(dir, staged, materialize.Update,
			materialize.Decisions{"README.md": true})
		require.NoError(t, err)
		assert.Equal(t, []string{"README.md"}, result.Written)
		assert.Empty(t, result.Pending)
		assert.Equal(t, "# Fire Truck v2\n", readFile(t, dir, "README.md"))
	})

	t.Run("declined_leaves_file_and_record", func(t *testing.T) {
		dir := t.TempDir()
		_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
		require.NoError(t, err)

		stateBefore, err := materialize.LoadState(dir)
		require.NoError(t, err)
		writeFile(t, dir, "README.md", "# my own heading\n")

		staged := stagedSet()
		staged[0].Content = []byte("# Fire Truck v2\n")
		result, err := materialize.Materialize(dir, staged, materialize.Update,
			materialize.Decisions{"README.md": false})
		require.NoError(t, err)
		assert.Equal(t, []string{"README.md"}, result.Skipped[:1])
		assert.Equal(t, "# my own heading\n", readFile(t, dir, "README.md"))

		stateAfter, err := materialize.LoadState(dir)
		require.NoError(t, err)
		assert.Equal(t, stateBefore.Files["README.md"], stateAfter.Files["README.md"],
			"declining must leave the record unchanged")
	})
}

func TestUpdateWritesNewTemplateFile(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	staged := append(stagedSet(), templates.StagedFile{
		RelPath: "NEW.txt", Content: []byte("introduced by pack revision\n"),
	})
	result, err := materialize.Materialize(dir, staged, materialize.Update, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW.txt"}, result.Written)
}

func TestUpdateDeletesRemovedUnmodifiedFile(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	staged := stagedSet()[:2] // pack revision dropped the logo
	result, err := materialize.Materialize(dir, staged, materialize.Update, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"assets/logo.png"}, result.Deleted)
	assert.NoFileExists(t, filepath.Join(dir, "assets/logo.png"))

	state, err := materialize.LoadState(dir)
	require.NoError(t, err)
	assert.NotContains(t, state.Files, "assets/logo.png")
}

func TestUpdateRemovedButModifiedIsConflict(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	writeFile(t, dir, "assets/logo.png", "user replaced the logo")

	staged := stagedSet()[:2]
	result, err := materialize.Materialize(dir, staged, materialize.Update, nil)
	require.NoError(t, err)
	require.Len(t, result.Pending, 1)
	assert.Equal(t, materialize.ConflictRemoveModified, result.Pending[0].Kind)
	assert.FileExists(t, filepath.Join(dir, "assets/logo.png"))
}

func TestUpdateUnmanagedCollisionIsConflict(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet()[:1], materialize.Create, nil)
	require.NoError(t, err)

	// The user added this path themselves; a pack revision now wants it.
	writeFile(t, dir, "app/src/main.txt", "user-owned content\n")

	result, err := materialize.Materialize(dir, stagedSet(), materialize.Update, nil)
	require.NoError(t, err)
	require.Len(t, result.Pending, 1)
	assert.Equal(t, "app/src/main.txt", result.Pending[0].Path)
	assert.Equal(t, materialize.ConflictUnmanaged, result.Pending[0].Kind)
	assert.Equal(t, "user-owned content\n", readFile(t, dir, "app/src/main.txt"))
}

func TestUpdateRegeneratesDeletedManagedFile(t *testing.T) {
	dir := t.TempDir()
	_, err := materialize.Materialize(dir, stagedSet(), materialize.Create, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))

	result, err := materialize.Materialize(dir, stagedSet(), materialize.Update, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, result.Written)
	assert.Equal(t, "# Fire Truck\n", readFile(t, dir, "README.md"))
}
