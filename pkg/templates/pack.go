package templates

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/logging"
)

// PackManifestName is the optional manifest file at a pack's root. It is
// metadata about the pack, never rendered into the destination tree.
const PackManifestName = "pack.toml"

// Pack is a loaded template pack: its root directory plus manifest.
type Pack struct {
	Name     string
	Root     string
	Manifest PackManifest
}

// PackManifest is the parsed pack.toml.
type PackManifest struct {
	Description string      `toml:"description"`
	Markers     []string    `toml:"markers"`
	BinaryGlobs []string    `toml:"binary"`
	Conditions  []Condition `toml:"condition"`
}

// Condition attaches a predicate to a subtree of the pack. Paths are
// relative to the pack root; a condition on "android" governs the whole
// android/ subtree. When several conditions govern the same path, for
// example "android" and "android/wear", all of them must hold.
type Condition struct {
	Path string `toml:"path"`
	Predicate
}

// Predicate is a tagged variant evaluated against the render context.
// Exactly one form applies, selected by When:
//
//	when = "platform"  - true when Platform is among the enabled platforms
//	when = "truthy"    - true when Key's value is truthy
//	when = "equals"    - true when Key's value renders equal to Value
type Predicate struct {
	When     string `toml:"when"`
	Platform string `toml:"platform,omitempty"`
	Key      string `toml:"key,omitempty"`
	Value    string `toml:"value,omitempty"`
}

// Eval evaluates the predicate. Referencing a key absent from the
// context is an error, not a false: a typo'd key in a pack would
// otherwise silently exclude a subtree.
func (p Predicate) Eval(ctx *RenderContext) (bool, error) {
	switch p.When {
	case "platform":
		key := p.Platform + "_enabled"
		value, ok := ctx.Bool(key)
		if !ok {
			return false, errors.Newf(errors.ErrRenderPredicate,
				"predicate references unknown platform %q", p.Platform).
				WithDetail("platform", p.Platform)
		}
		return value, nil
	case "truthy":
		value, ok := ctx.Bool(p.Key)
		if !ok {
			return false, errors.Newf(errors.ErrRenderPredicate,
				"predicate references unknown context key %q", p.Key).
				WithDetail("key", p.Key)
		}
		return value, nil
	case "equals":
		value, ok := ctx.Lookup(p.Key)
		if !ok {
			return false, errors.Newf(errors.ErrRenderPredicate,
				"predicate references unknown context key %q", p.Key).
				WithDetail("key", p.Key)
		}
		return stringify(value) == p.Value, nil
	default:
		return false, errors.Newf(errors.ErrRenderPredicate,
			"unknown predicate kind %q", p.When).
			WithDetail("when", p.When)
	}
}

// UserPackRoot is the user-extensible template-pack root.
func UserPackRoot() string {
	return filepath.Join(xdg.DataHome, "crossgen", "templates")
}

// BuiltinPackRoot looks for the packs shipped alongside the executable.
func BuiltinPackRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "templates"
	}
	return filepath.Join(filepath.Dir(exe), "templates")
}

// DefaultPackRoots returns the roots searched for packs, user root first
// so a user pack shadows a built-in pack of the same name.
func DefaultPackRoots() []string {
	return []string{UserPackRoot(), BuiltinPackRoot()}
}

// ListPacks returns the names of every pack found under the given roots,
// sorted, deduplicated across roots.
func ListPacks(roots []string) ([]string, error) {
	logger := logging.GetLogger("templates.packs")
	seen := make(map[string]bool)
	var names []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Trace().Str("root", root).Msg("Pack root missing, skipping")
				continue
			}
			return nil, errors.Wrap(err, errors.ErrPackAccess, "cannot read template pack root").
				WithDetail("path", root)
		}
		for _, entry := range entries {
			if entry.IsDir() && !seen[entry.Name()] {
				seen[entry.Name()] = true
				names = append(names, entry.Name())
			}
		}
	}
	sort.Strings(names)
	logger.Debug().Int("count", len(names)).Msg("Listed template packs")
	return names, nil
}

// LoadPack locates a pack by name under the given roots and parses its
// manifest. The pack tree itself is read lazily during rendering.
func LoadPack(roots []string, name string) (*Pack, error) {
	for _, root := range roots {
		dir := filepath.Join(root, name)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		pack := &Pack{Name: name, Root: dir}
		data, err := os.ReadFile(filepath.Join(dir, PackManifestName))
		if err != nil {
			if os.IsNotExist(err) {
				return pack, nil
			}
			return nil, errors.Wrap(err, errors.ErrPackAccess, "cannot read pack manifest").
				WithDetail("pack", name)
		}
		if err := toml.Unmarshal(data, &pack.Manifest); err != nil {
			return nil, errors.Wrap(err, errors.ErrPackInvalid, "cannot parse pack manifest").
				WithDetail("pack", name)
		}
		return pack, nil
	}
	return nil, errors.Newf(errors.ErrPackNotFound,
		"template pack %q not found (searched: %v)", name, roots).
		WithDetail("pack", name)
}

// conditionsFor returns every condition governing relPath, matching on
// the path itself or any of its ancestors.
func (p *Pack) conditionsFor(relPath string) []Condition {
	var conds []Condition
	for _, cond := range p.Manifest.Conditions {
		if cond.Path == relPath || strings.HasPrefix(relPath, cond.Path+"/") {
			conds = append(conds, cond)
		}
	}
	return conds
}

// isBinary reports whether relPath matches one of the pack's binary
// globs. Matching is on the path's base name and on the full relative
// path, so both "*.png" and "assets/**" styles work for flat patterns.
func (p *Pack) isBinary(relPath string) bool {
	base := filepath.Base(relPath)
	for _, glob := range p.Manifest.BinaryGlobs {
		if ok, _ := filepath.Match(glob, base); ok {
			return true
		}
		if ok, _ := filepath.Match(glob, relPath); ok {
			return true
		}
	}
	return false
}
