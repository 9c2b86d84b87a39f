package config

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/targets"
)

// PromptMissing interactively fills in whichever fields of cfg are still
// zero, then validates through New. Fields already supplied (via flags)
// are not prompted for, and the validation rules are exactly the ones the
// non-interactive path uses.
//
// packNames is the list of selectable template packs; it must not be
// empty when cfg.TemplatePack is unset.
func PromptMissing(cfg ProjectConfig, packNames []string) (*ProjectConfig, error) {
	var groups []*huh.Group

	if cfg.AppName == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("App name").
				Description("The human-readable application name, e.g. \"Fire Truck\"").
				Value(&cfg.AppName).
				Validate(nonEmpty("app name")),
		))
	}

	if cfg.DomainPrefix == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Domain").
				Description("Reverse-domain prefix for identifiers, e.g. \"com.example\"").
				Value(&cfg.DomainPrefix).
				Validate(nonEmpty("domain")),
		))
	}

	var selectedPlatforms []string
	promptPlatforms := len(cfg.Platforms) == 0
	if promptPlatforms {
		options := make([]huh.Option[string], len(targets.Platforms))
		for i, p := range targets.Platforms {
			options[i] = huh.NewOption(string(p), string(p)).Selected(true)
		}
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Platforms").
				Options(options...).
				Value(&selectedPlatforms),
		))
	}

	if cfg.TemplatePack == "" && len(packNames) > 0 {
		options := make([]huh.Option[string], len(packNames))
		for i, name := range packNames {
			options[i] = huh.NewOption(name, name)
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Template pack").
				Options(options...).
				Value(&cfg.TemplatePack),
		))
	}

	if len(groups) > 0 {
		if err := huh.NewForm(groups...).Run(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "interactive configuration aborted")
		}
	}
	if promptPlatforms {
		for _, s := range selectedPlatforms {
			cfg.Platforms = append(cfg.Platforms, targets.Platform(s))
		}
	}

	return New(cfg)
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.Newf(errors.ErrInvalidInput, "%s must not be empty", field)
		}
		return nil
	}
}
