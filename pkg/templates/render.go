package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/logging"
)

// StagedFile is one rendered output file, held in memory between
// rendering and materialization.
type StagedFile struct {
	// RelPath is the destination path relative to the project root,
	// slash-separated.
	RelPath string

	// Content is the rendered (or, for binary nodes, verbatim) bytes.
	Content []byte

	// Binary marks files that were copied byte-for-byte.
	Binary bool
}

var missingKeyRe = regexp.MustCompile(`no entry for key "([^"]+)"`)

// Render walks the pack tree once and produces the staged file set for
// the given context. It holds no state between calls; calling it again
// re-walks the pack from scratch.
//
// File and directory names go through the same marker substitution as
// text contents. Subtrees excluded by a pack condition are not visited.
// Any failure aborts the whole render; partial output is never returned.
func Render(pack *Pack, ctx *RenderContext) ([]StagedFile, error) {
	logger := logging.GetLogger("templates.render")

	// Pre-flight: every marker the pack declares must resolve, so a
	// missing key fails before any file is read.
	for _, marker := range pack.Manifest.Markers {
		if _, ok := ctx.Lookup(marker); !ok {
			return nil, errors.Newf(errors.ErrRenderMarker,
				"template pack %q references marker %q absent from the render context", pack.Name, marker).
				WithDetail("pack", pack.Name).
				WithDetail("marker", marker)
		}
	}

	var staged []StagedFile
	err := filepath.WalkDir(pack.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(err, errors.ErrPackAccess, "cannot walk template pack").
				WithDetail("path", path)
		}
		rel, relErr := filepath.Rel(pack.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." || rel == PackManifestName {
			return nil
		}

		for _, cond := range pack.conditionsFor(rel) {
			include, evalErr := cond.Eval(ctx)
			if evalErr != nil {
				return evalErr
			}
			if !include {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		dest, renderErr := renderText(ctx, rel, rel)
		if renderErr != nil {
			return renderErr
		}
		dest = filepath.ToSlash(filepath.Clean(dest))
		if dest == "" || dest == "." || strings.HasPrefix(dest, "../") {
			return errors.Newf(errors.ErrRenderSyntax,
				"template node %q renders to invalid path %q", rel, dest).
				WithDetail("node", rel)
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return errors.Wrap(readErr, errors.ErrFileAccess, "cannot read template file").
				WithDetail("path", path)
		}

		if pack.isBinary(rel) {
			staged = append(staged, StagedFile{RelPath: dest, Content: content, Binary: true})
			return nil
		}

		rendered, renderErr := renderText(ctx, rel, string(content))
		if renderErr != nil {
			return renderErr
		}
		staged = append(staged, StagedFile{RelPath: dest, Content: []byte(rendered)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(staged, func(i, j int) bool { return staged[i].RelPath < staged[j].RelPath })
	logger.Debug().Str("pack", pack.Name).Int("files", len(staged)).Msg("Rendered template pack")
	return staged, nil
}

// renderText substitutes markers in src. node names the template-pack
// node for error reporting. An unresolved marker is fatal, never a blank
// substitution.
func renderText(ctx *RenderContext, node, src string) (string, error) {
	tmpl, err := template.New(node).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrRenderSyntax, "malformed template syntax").
			WithDetail("node", node)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.data()); err != nil {
		if m := missingKeyRe.FindStringSubmatch(err.Error()); m != nil {
			return "", errors.Wrapf(err, errors.ErrRenderMarker,
				"unresolved marker %q in template node %q", m[1], node).
				WithDetail("marker", m[1]).
				WithDetail("node", node)
		}
		return "", errors.Wrap(err, errors.ErrRenderSyntax, "template execution failed").
			WithDetail("node", node)
	}
	return buf.String(), nil
}

func stringify(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
