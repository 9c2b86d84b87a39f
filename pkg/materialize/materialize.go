package materialize

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/logging"
	"github.com/crossgen/crossgen/pkg/templates"
)

// Mode selects between first generation and idempotent re-application.
type Mode int

const (
	Create Mode = iota
	Update
)

func (m Mode) String() string {
	if m == Create {
		return "create"
	}
	return "update"
}

// ConflictKind classifies why a file needs an explicit decision.
type ConflictKind string

const (
	// ConflictModified: a managed file was hand-edited since the last
	// generation and the new staged content differs.
	ConflictModified ConflictKind = "modified"

	// ConflictUnmanaged: the staged set wants a path that exists on disk
	// but is not engine-owned.
	ConflictUnmanaged ConflictKind = "unmanaged"

	// ConflictRemoveModified: the template pack no longer produces a
	// managed file, but the user has edited it since last generation.
	ConflictRemoveModified ConflictKind = "remove-modified"
)

// Conflict is one pending per-file decision. Approving means "apply the
// engine's change" (overwrite or delete); declining leaves both the file
// and its record untouched.
type Conflict struct {
	Path string
	Kind ConflictKind
}

// Decisions maps a conflict path to the user's answer. Paths absent from
// the map are left pending.
type Decisions map[string]bool

// Result reports what one materialization run did and what it could not
// do without a decision.
type Result struct {
	Written []string
	Deleted []string
	Skipped []string
	Pending []Conflict
}

// Materialize applies a staged file set to the destination project
// directory. The staged set must be complete - rendering failures are
// handled by the caller before any call here, so a failed render
// performs zero writes.
func Materialize(projectDir string, staged []templates.StagedFile, mode Mode, decisions Decisions) (*Result, error) {
	state, err := LoadState(projectDir)
	if err != nil {
		return nil, err
	}
	switch mode {
	case Create:
		return create(projectDir, staged, state)
	case Update:
		return update(projectDir, staged, state, decisions)
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown materialize mode %d", int(mode))
}

// create writes every staged file into a destination that the engine
// does not already own. It refuses to run against a tree with existing
// managed-file records, and it checks every target path before the first
// write so pre-existing unmanaged content is never clobbered.
func create(projectDir string, staged []templates.StagedFile, state *ManagedState) (*Result, error) {
	logger := logging.GetLogger("materialize")

	if state.Exists() && len(state.Files) > 0 {
		return nil, errors.New(errors.ErrAlreadyExists,
			"destination already contains a generated project; use update").
			WithDetail("path", projectDir)
	}

	for _, sf := range staged {
		dest := filepath.Join(projectDir, filepath.FromSlash(sf.RelPath))
		info, err := os.Stat(dest)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot inspect destination path").
				WithDetail("path", dest)
		}
		if info.IsDir() || info.Size() > 0 {
			return nil, errors.Newf(errors.ErrMaterializeExists,
				"destination path %q already exists and is not empty", sf.RelPath).
				WithDetail("path", sf.RelPath)
		}
	}

	result := &Result{}
	for _, sf := range staged {
		if err := writeStaged(projectDir, sf, state); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, sf.RelPath)
	}

	logger.Info().Int("files", len(result.Written)).Str("dir", projectDir).Msg("Project created")
	return result, nil
}

// update reconciles the staged set against the existing tree and its
// managed-file records, per file:
//
//   - no record, no file on disk: new file, write it
//   - no record, file on disk: unmanaged collision, conflict
//   - record matches disk, staged content unchanged: skip
//   - record matches disk, staged content differs: overwrite
//   - record differs from disk: user edit, conflict
//   - record without a staged counterpart: template removed the file;
//     delete if unmodified, otherwise conflict
func update(projectDir string, staged []templates.StagedFile, state *ManagedState, decisions Decisions) (*Result, error) {
	logger := logging.GetLogger("materialize")
	result := &Result{}

	stagedPaths := make(map[string]bool, len(staged))
	for _, sf := range staged {
		stagedPaths[sf.RelPath] = true
	}

	for _, sf := range staged {
		dest := filepath.Join(projectDir, filepath.FromSlash(sf.RelPath))
		recorded, hasRecord := state.Files[sf.RelPath]
		diskFP, onDisk, err := fingerprintFile(dest)
		if err != nil {
			return nil, err
		}

		switch {
		case !hasRecord && !onDisk:
			if err := writeStaged(projectDir, sf, state); err != nil {
				return nil, err
			}
			result.Written = append(result.Written, sf.RelPath)

		case !hasRecord && onDisk:
			// Engine never owned this path. Treated as a conflict, not
			// silently resolved, even when the staged content happens to
			// match what's there.
			if approved, answered := decisions[sf.RelPath]; answered {
				if approved {
					if err := writeStaged(projectDir, sf, state); err != nil {
						return nil, err
					}
					result.Written = append(result.Written, sf.RelPath)
				} else {
					result.Skipped = append(result.Skipped, sf.RelPath)
				}
			} else {
				result.Pending = append(result.Pending, Conflict{Path: sf.RelPath, Kind: ConflictUnmanaged})
			}

		case onDisk && diskFP == recorded:
			if Fingerprint(sf.Content) == recorded {
				result.Skipped = append(result.Skipped, sf.RelPath)
				continue
			}
			if err := writeStaged(projectDir, sf, state); err != nil {
				return nil, err
			}
			result.Written = append(result.Written, sf.RelPath)

		case !onDisk:
			// Record present but the file is gone; regenerate it.
			if err := writeStaged(projectDir, sf, state); err != nil {
				return nil, err
			}
			result.Written = append(result.Written, sf.RelPath)

		default:
			// Managed file hand-edited since last generation.
			if approved, answered := decisions[sf.RelPath]; answered {
				if approved {
					if err := writeStaged(projectDir, sf, state); err != nil {
						return nil, err
					}
					result.Written = append(result.Written, sf.RelPath)
				} else {
					result.Skipped = append(result.Skipped, sf.RelPath)
				}
			} else {
				result.Pending = append(result.Pending, Conflict{Path: sf.RelPath, Kind: ConflictModified})
			}
		}
	}

	// Managed files the new staged set no longer produces.
	removed := make([]string, 0)
	for relPath := range state.Files {
		if !stagedPaths[relPath] {
			removed = append(removed, relPath)
		}
	}
	sort.Strings(removed)
	for _, relPath := range removed {
		dest := filepath.Join(projectDir, filepath.FromSlash(relPath))
		diskFP, onDisk, err := fingerprintFile(dest)
		if err != nil {
			return nil, err
		}
		if !onDisk {
			if err := state.Forget(relPath); err != nil {
				return nil, err
			}
			continue
		}
		if diskFP == state.Files[relPath] {
			if err := deleteManaged(dest, relPath, state); err != nil {
				return nil, err
			}
			result.Deleted = append(result.Deleted, relPath)
			continue
		}
		if approved, answered := decisions[relPath]; answered {
			if approved {
				if err := deleteManaged(dest, relPath, state); err != nil {
					return nil, err
				}
				result.Deleted = append(result.Deleted, relPath)
			} else {
				result.Skipped = append(result.Skipped, relPath)
			}
		} else {
			result.Pending = append(result.Pending, Conflict{Path: relPath, Kind: ConflictRemoveModified})
		}
	}

	logger.Info().
		Int("written", len(result.Written)).
		Int("deleted", len(result.Deleted)).
		Int("skipped", len(result.Skipped)).
		Int("pending", len(result.Pending)).
		Msg("Project updated")
	return result, nil
}

// writeStaged writes one file, content first, then its record. The
// ordering keeps a crash mid-run recoverable by re-running Update.
func writeStaged(projectDir string, sf templates.StagedFile, state *ManagedState) error {
	dest := filepath.Join(projectDir, filepath.FromSlash(sf.RelPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create parent directory").
			WithDetail("path", sf.RelPath)
	}
	if err := os.WriteFile(dest, sf.Content, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write generated file").
			WithDetail("path", sf.RelPath)
	}
	return state.Record(sf.RelPath, sf.Content)
}

func deleteManaged(dest, relPath string, state *ManagedState) error {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot delete managed file").
			WithDetail("path", relPath)
	}
	return state.Forget(relPath)
}
