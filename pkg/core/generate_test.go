// Test Type: Integration Test
// Description: Tests for the core package - full generate/update pipeline

package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/core"
	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/materialize"
	"github.com/crossgen/crossgen/pkg/targets"
)

func writeFixturePack(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"pack.toml": `markers = ["app_name", "android_package"]

[[condition]]
path = "apple"
when = "platform"
platform = "apple"
`,
		"README.md":                 "# {{.app_name}}\n",
		"android/app/build.gradle":  "applicationId \"{{.android_package}}\"\n",
		"{{.app_snake}}/config.txt": "bundle {{.apple_bundle_id}}\n",
		"apple/project.pbxproj":     "PRODUCT_BUNDLE_IDENTIFIER = {{.apple_bundle_id}};\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, "default", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func fixtureConfig(t *testing.T, platforms ...targets.Platform) *config.ProjectConfig {
	t.Helper()
	cfg, err := config.New(config.ProjectConfig{
		AppName:      "Fire Truck",
		DomainPrefix: "com.example",
		Platforms:    platforms,
	})
	require.NoError(t, err)
	return cfg
}

func TestGenerateThenUpdateIsIdempotent(t *testing.T) {
	packRoot := writeFixturePack(t)
	projectDir := t.TempDir()
	cfg := fixtureConfig(t, targets.Android, targets.Apple)
	opts := core.Options{ProjectDir: projectDir, PackRoots: []string{packRoot}}

	result, err := core.Generate(cfg, opts)
	require.NoError(t, err)
	assert.Len(t, result.Written, 4)
	assert.FileExists(t, filepath.Join(projectDir, config.ManifestName))
	assert.FileExists(t, filepath.Join(projectDir, "fire_truck/config.txt"))

	data, err := os.ReadFile(filepath.Join(projectDir, "android/app/build.gradle"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "com.example.fire_truck")

	// Re-rendering with an unchanged context must produce zero writes.
	updated, err := core.Update(cfg, opts)
	require.NoError(t, err)
	assert.Empty(t, updated.Written)
	assert.Empty(t, updated.Deleted)
	assert.Empty(t, updated.Pending)
}

func TestGenerateSkipsDisabledPlatform(t *testing.T) {
	packRoot := writeFixturePack(t)
	projectDir := t.TempDir()
	cfg := fixtureConfig(t, targets.Android)

	_, err := core.Generate(cfg, core.Options{ProjectDir: projectDir, PackRoots: []string{packRoot}})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(projectDir, "apple/project.pbxproj"))
}

func TestGenerateRenderFailureWritesNothing(t *testing.T) {
	packRoot := writeFixturePack(t)
	broken := filepath.Join(packRoot, "default", "broken.txt")
	require.NoError(t, os.WriteFile(broken, []byte("{{.missing_key}}"), 0644))

	projectDir := t.TempDir()
	cfg := fixtureConfig(t, targets.Android)

	_, err := core.Generate(cfg, core.Options{ProjectDir: projectDir, PackRoots: []string{packRoot}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRenderMarker))

	entries, readErr := os.ReadDir(projectDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a failed render must leave the destination untouched")
}

func TestUpdateConflictRoundTrip(t *testing.T) {
	packRoot := writeFixturePack(t)
	projectDir := t.TempDir()
	cfg := fixtureConfig(t, targets.Android)
	opts := core.Options{ProjectDir: projectDir, PackRoots: []string{packRoot}}

	_, err := core.Generate(cfg, opts)
	require.NoError(t, err)

	edited := filepath.Join(projectDir, "README.md")
	require.NoError(t, os.WriteFile(edited, []byte("# my notes\n"), 0644))

	// Change the pack so the staged content differs from the record.
	readme := filepath.Join(packRoot, "default", "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# {{.app_name}} v2\n"), 0644))

	result, err := core.Update(cfg, opts)
	require.NoError(t, err)
	require.Len(t, result.Pending, 1)
	assert.Equal(t, "README.md", result.Pending[0].Path)

	opts.Decisions = materialize.Decisions{"README.md": true}
	result, err = core.Update(cfg, opts)
	require.NoError(t, err)
	assert.Contains(t, result.Written, "README.md")

	data, err := os.ReadFile(edited)
	require.NoError(t, err)
	assert.Equal(t, "# Fire Truck v2\n", string(data))
}

func TestBuildHandoff(t *testing.T) {
	cfg := fixtureConfig(t, targets.Android, targets.Apple)

	handoff, err := core.BuildHandoff(cfg)
	require.NoError(t, err)
	assert.Equal(t, "com.example.fire_truck", handoff.Identifiers.AndroidPackage)
	assert.Equal(t, "com.example.fire-truck", handoff.Identifiers.AppleBundleID)
	require.Len(t, handoff.Targets, 2)
	assert.Equal(t, "aarch64-linux-android", handoff.Targets[0].Triple)
	assert.Equal(t, "aarch64-apple-ios", handoff.Targets[1].Triple)
}
