package materialize

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/crossgen/crossgen/pkg/errors"
)

// StateName is the managed-file record file kept in the project root.
const StateName = ".crossgen-state.toml"

// ManagedState is the persisted record of every engine-owned file: its
// project-relative path mapped to the content fingerprint at last
// generation. A path present both on disk and in here is engine-owned;
// everything else in the project tree belongs to the user.
type ManagedState struct {
	Files map[string]string `toml:"files"`

	dir    string
	loaded bool
}

// LoadState reads the managed-file records for a project directory.
// A missing state file yields an empty state with Exists() == false.
func LoadState(projectDir string) (*ManagedState, error) {
	state := &ManagedState{Files: make(map[string]string), dir: projectDir}
	data, err := os.ReadFile(filepath.Join(projectDir, StateName))
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, errors.Wrap(err, errors.ErrStateLoad, "cannot read managed-file state").
			WithDetail("path", filepath.Join(projectDir, StateName))
	}
	if err := toml.Unmarshal(data, state); err != nil {
		return nil, errors.Wrap(err, errors.ErrStateLoad, "cannot parse managed-file state").
			WithDetail("path", filepath.Join(projectDir, StateName))
	}
	if state.Files == nil {
		state.Files = make(map[string]string)
	}
	state.loaded = true
	return state, nil
}

// Exists reports whether a state file was present on disk at load time.
func (s *ManagedState) Exists() bool {
	return s.loaded
}

// Record stores the fingerprint for a managed path and persists the
// state file. It is called after the file content is on disk, so an
// interruption between the two leaves a re-runnable Update, never a
// record for content that was not written.
func (s *ManagedState) Record(relPath string, content []byte) error {
	s.Files[relPath] = Fingerprint(content)
	return s.save()
}

// Forget drops the record for a path and persists the state file.
func (s *ManagedState) Forget(relPath string) error {
	delete(s.Files, relPath)
	return s.save()
}

func (s *ManagedState) save() error {
	data, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "cannot encode managed-file state")
	}
	path := filepath.Join(s.dir, StateName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "cannot write managed-file state").
			WithDetail("path", path)
	}
	s.loaded = true
	return nil
}

// Fingerprint returns the content fingerprint used in managed-file
// records.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// fingerprintFile hashes a file on disk. Returns ok=false when the file
// does not exist.
func fingerprintFile(path string) (fp string, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, errors.ErrFileAccess, "cannot read file for fingerprinting").
			WithDetail("path", path)
	}
	return Fingerprint(data), true, nil
}
