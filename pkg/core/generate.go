// Package core wires the generation pipeline together: derive
// identifiers, resolve targets, build the render context, render the
// configured template pack, and materialize the result. Commands call
// into here rather than orchestrating the lower packages themselves.
package core

import (
	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/identifier"
	"github.com/crossgen/crossgen/pkg/logging"
	"github.com/crossgen/crossgen/pkg/materialize"
	"github.com/crossgen/crossgen/pkg/targets"
	"github.com/crossgen/crossgen/pkg/templates"
)

// Options carries the per-invocation knobs of a generation run.
type Options struct {
	// ProjectDir is the destination project root.
	ProjectDir string

	// PackRoots are the template-pack roots to search; defaults to
	// templates.DefaultPackRoots() when empty.
	PackRoots []string

	// Decisions resolves materialization conflicts from a previous run.
	Decisions materialize.Decisions
}

// Handoff is the read-only structure consumed by the external build/run
// pipeline: the resolved build targets plus the derived identifiers.
type Handoff struct {
	Identifiers *identifier.Set
	Targets     []targets.ConcreteTarget
}

// Result is the outcome of one Generate or Update run.
type Result struct {
	*materialize.Result
	Handoff Handoff
}

// Generate performs the first generation of a project: renders the
// configured pack and materializes it in Create mode, then persists the
// project manifest. Rendering happens entirely before the first write,
// so a render failure leaves the destination untouched.
func Generate(cfg *config.ProjectConfig, opts Options) (*Result, error) {
	logger := logging.GetLogger("core")
	logger.Info().Str("dir", opts.ProjectDir).Str("pack", cfg.TemplatePack).Msg("Generating project")

	staged, handoff, err := stage(cfg, opts)
	if err != nil {
		return nil, err
	}

	matResult, err := materialize.Materialize(opts.ProjectDir, staged, materialize.Create, nil)
	if err != nil {
		return nil, err
	}

	if err := cfg.Save(opts.ProjectDir); err != nil {
		return nil, err
	}

	return &Result{Result: matResult, Handoff: handoff}, nil
}

// Update re-renders the configured pack and reconciles it against the
// existing project tree. Conflicts that have no entry in opts.Decisions
// come back in Result.Pending; re-run with decisions to resolve them.
func Update(cfg *config.ProjectConfig, opts Options) (*Result, error) {
	logger := logging.GetLogger("core")
	logger.Info().Str("dir", opts.ProjectDir).Str("pack", cfg.TemplatePack).Msg("Updating project")

	staged, handoff, err := stage(cfg, opts)
	if err != nil {
		return nil, err
	}

	matResult, err := materialize.Materialize(opts.ProjectDir, staged, materialize.Update, opts.Decisions)
	if err != nil {
		return nil, err
	}

	return &Result{Result: matResult, Handoff: handoff}, nil
}

// BuildHandoff derives the build-orchestration handoff for a config
// without touching the filesystem.
func BuildHandoff(cfg *config.ProjectConfig) (Handoff, error) {
	ids, err := cfg.Identifiers()
	if err != nil {
		return Handoff{}, err
	}
	resolved, err := cfg.ResolveTargets()
	if err != nil {
		return Handoff{}, err
	}
	return Handoff{Identifiers: ids, Targets: resolved}, nil
}

func stage(cfg *config.ProjectConfig, opts Options) ([]templates.StagedFile, Handoff, error) {
	handoff, err := BuildHandoff(cfg)
	if err != nil {
		return nil, Handoff{}, err
	}

	ctx, err := templates.BuildContext(cfg, handoff.Identifiers, handoff.Targets)
	if err != nil {
		return nil, Handoff{}, err
	}

	roots := opts.PackRoots
	if len(roots) == 0 {
		roots = templates.DefaultPackRoots()
	}
	pack, err := templates.LoadPack(roots, cfg.TemplatePack)
	if err != nil {
		return nil, Handoff{}, err
	}

	staged, err := templates.Render(pack, ctx)
	if err != nil {
		return nil, Handoff{}, err
	}
	return staged, handoff, nil
}
