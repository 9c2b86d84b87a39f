package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/crossgen/crossgen/internal/version"
	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/core"
	"github.com/crossgen/crossgen/pkg/logging"
	"github.com/crossgen/crossgen/pkg/materialize"
	"github.com/crossgen/crossgen/pkg/targets"
	"github.com/crossgen/crossgen/pkg/templates"
)

var (
	headingStyle  = lipgloss.NewStyle().Bold(true)
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "crossgen",
		Short: "Cross-platform mobile project generator",
		Long: `crossgen scaffolds Android Studio and Xcode project trees from a single
logical app description, derives the identifiers each native build system
requires, and keeps generated projects up to date without destroying your
edits.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newTargetsCmd())
	rootCmd.AddCommand(newPacksCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("crossgen version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	var (
		appName        string
		domain         string
		platforms      []string
		pack           string
		targetArchs    []string
		minAndroidSDK  int
		minIOSVersion  string
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Generate a new mobile project",
		Long: `Init renders the chosen template pack into the destination directory,
deriving the Android package name and Apple bundle identifier from the app
name and domain. Missing fields are prompted for unless --non-interactive
is given; both paths validate identically.`,
		Example: `  # Fully specified, no prompts
  crossgen init my-app --name "Fire Truck" --domain com.example --non-interactive

  # Prompt for whatever is missing
  crossgen init my-app`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := "."
			if len(args) == 1 {
				projectDir = args[0]
			}

			packRoots := templates.DefaultPackRoots()
			seed := config.ProjectConfig{
				AppName:       appName,
				DomainPrefix:  domain,
				TemplatePack:  pack,
				MinAndroidSDK: minAndroidSDK,
				MinIOSVersion: minIOSVersion,
				Targets:       targetArchs,
			}
			for _, p := range platforms {
				parsed, err := targets.ParsePlatform(p)
				if err != nil {
					return err
				}
				seed.Platforms = append(seed.Platforms, parsed)
			}

			var cfg *config.ProjectConfig
			var err error
			if nonInteractive {
				cfg, err = config.New(seed)
			} else {
				var packNames []string
				packNames, err = templates.ListPacks(packRoots)
				if err != nil {
					return err
				}
				cfg, err = config.PromptMissing(seed, packNames)
			}
			if err != nil {
				return err
			}

			result, err := core.Generate(cfg, core.Options{ProjectDir: projectDir, PackRoots: packRoots})
			if err != nil {
				return err
			}

			fmt.Println(headingStyle.Render("Project generated"))
			for _, path := range result.Written {
				fmt.Printf("  %s\n", pathStyle.Render(path))
			}
			printHandoff(result.Handoff)
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "name", "", "App display name")
	cmd.Flags().StringVar(&domain, "domain", "", "Reverse-domain prefix, e.g. com.example")
	cmd.Flags().StringSliceVar(&platforms, "platforms", nil, "Platforms to enable (android, apple)")
	cmd.Flags().StringVar(&pack, "pack", "", "Template pack name")
	cmd.Flags().StringSliceVar(&targetArchs, "targets", nil, "Target architectures (or \"all\")")
	cmd.Flags().IntVar(&minAndroidSDK, "min-android-sdk", 0, "Minimum Android SDK version")
	cmd.Flags().StringVar(&minIOSVersion, "min-ios-version", "", "Minimum iOS version")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Fail instead of prompting for missing fields")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "update [directory]",
		Short: "Re-apply the template pack to an existing project",
		Long: `Update re-renders the project's template pack and reconciles the output
against the project tree. Files you have edited since the last generation
are reported as conflicts and only overwritten after confirmation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := "."
			if len(args) == 1 {
				projectDir = args[0]
			}

			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}

			opts := core.Options{ProjectDir: projectDir}
			result, err := core.Update(cfg, opts)
			if err != nil {
				return err
			}

			if len(result.Pending) > 0 {
				decisions, err := resolveConflicts(result.Pending, assumeYes)
				if err != nil {
					return err
				}
				opts.Decisions = decisions
				result, err = core.Update(cfg, opts)
				if err != nil {
					return err
				}
			}

			printUpdateResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&assumeYes, "yes", false, "Overwrite conflicting files without prompting")
	return cmd
}

// resolveConflicts is the interactive recovery point: one yes/no decision
// per conflicting file. The core only ever sees the resulting decision
// map.
func resolveConflicts(pending []materialize.Conflict, assumeYes bool) (materialize.Decisions, error) {
	decisions := make(materialize.Decisions, len(pending))
	if assumeYes {
		for _, c := range pending {
			decisions[c.Path] = true
		}
		return decisions, nil
	}

	for _, c := range pending {
		var approved bool
		title := fmt.Sprintf("Overwrite %s?", c.Path)
		description := "This managed file was modified since the last generation."
		switch c.Kind {
		case materialize.ConflictUnmanaged:
			title = fmt.Sprintf("Replace %s?", c.Path)
			description = "This path exists but is not managed by crossgen."
		case materialize.ConflictRemoveModified:
			title = fmt.Sprintf("Delete %s?", c.Path)
			description = "The template pack no longer produces this file, but it was modified."
		}
		confirm := huh.NewConfirm().
			Title(conflictStyle.Render(title)).
			Description(description).
			Value(&approved)
		if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
			return nil, err
		}
		decisions[c.Path] = approved
	}
	return decisions, nil
}

func printUpdateResult(result *core.Result) {
	if len(result.Written) == 0 && len(result.Deleted) == 0 && len(result.Pending) == 0 {
		fmt.Println("Project already up to date")
		return
	}
	if len(result.Written) > 0 {
		fmt.Println(headingStyle.Render("Updated"))
		for _, path := range result.Written {
			fmt.Printf("  %s\n", pathStyle.Render(path))
		}
	}
	if len(result.Deleted) > 0 {
		fmt.Println(headingStyle.Render("Removed"))
		for _, path := range result.Deleted {
			fmt.Printf("  %s\n", pathStyle.Render(path))
		}
	}
	for _, c := range result.Pending {
		fmt.Printf("%s %s (%s)\n", conflictStyle.Render("conflict:"), c.Path, c.Kind)
	}
}

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets [directory]",
		Short: "Show the resolved build targets and identifiers",
		Long: `Targets prints the concrete build targets and the derived platform
identifiers for a project - the structure handed to the native build
pipeline.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := "."
			if len(args) == 1 {
				projectDir = args[0]
			}

			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			handoff, err := core.BuildHandoff(cfg)
			if err != nil {
				return err
			}
			printHandoff(handoff)
			return nil
		},
	}
}

func printHandoff(h core.Handoff) {
	fmt.Println(headingStyle.Render("Identifiers"))
	fmt.Printf("  android package:  %s\n", h.Identifiers.AndroidPackage)
	fmt.Printf("  apple bundle id:  %s\n", h.Identifiers.AppleBundleID)
	fmt.Printf("  source (snake):   %s\n", h.Identifiers.SnakeCase)
	fmt.Printf("  source (camel):   %s\n", h.Identifiers.UpperCamel)

	fmt.Println(headingStyle.Render("Targets"))
	for _, t := range h.Targets {
		line := fmt.Sprintf("  %-8s %-8s %s", t.Platform, t.Arch, t.Triple)
		if t.ABI != "" {
			line += fmt.Sprintf("  (abi %s)", t.ABI)
		}
		fmt.Println(line)
	}
}

func newPacksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List available template packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := templates.DefaultPackRoots()
			names, err := templates.ListPacks(roots)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Printf("No template packs found (searched %s)\n", strings.Join(roots, ", "))
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

// Execute runs the root command and reports the error, since both
// SilenceUsage and SilenceErrors are set.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
