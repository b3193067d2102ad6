package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillmcp/pkg/presenter"
	"github.com/jingkaihe/skillmcp/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type SkillListConfig struct {
	JSON bool
}

func NewSkillListConfig() *SkillListConfig {
	return &SkillListConfig{
		JSON: false,
	}
}

type SkillShowConfig struct {
	ReturnType string
	BodyOnly   bool
}

func NewSkillShowConfig() *SkillShowConfig {
	return &SkillShowConfig{
		ReturnType: string(skills.ReturnContent),
		BodyOnly:   false,
	}
}

type SkillFilesConfig struct {
	Absolute bool
	Pattern  string
}

func NewSkillFilesConfig() *SkillFilesConfig {
	return &SkillFilesConfig{
		Absolute: false,
		Pattern:  "",
	}
}

type SkillCatConfig struct {
	ReturnType string
}

func NewSkillCatConfig() *SkillCatConfig {
	return &SkillCatConfig{
		ReturnType: string(skills.ReturnContent),
	}
}

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Inspect the skills in the skills directory",
	Long:  `List, read and validate skills without starting the MCP server.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discovered skills",
	Long:  `List all discovered skills with their names, descriptions, and directory paths.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := newRegistry(appConfig)
		if err != nil {
			return err
		}
		return runSkillList(cmd.Context(), registry, getSkillListConfigFromFlags(cmd), newPresenter(cmd), cmd.OutOrStdout())
	},
}

var skillShowCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Print the SKILL.md of a skill",
	Long: `Print the SKILL.md of a skill.

Examples:
  skillmcp skill show pdf
  skillmcp skill show pdf --body
  skillmcp skill show pdf --return-type both`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry(appConfig)
		if err != nil {
			return err
		}
		return runSkillShow(cmd.Context(), registry, args[0], getSkillShowConfigFromFlags(cmd), cmd.OutOrStdout())
	},
}

var skillFilesCmd = &cobra.Command{
	Use:   "files <skill-name>",
	Short: "List the files of a skill",
	Long: `List every file in a skill directory, sorted, relative to the directory.

Examples:
  skillmcp skill files pdf
  skillmcp skill files pdf --pattern 'scripts/**/*.py'
  skillmcp skill files pdf --absolute`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry(appConfig)
		if err != nil {
			return err
		}
		return runSkillFiles(cmd.Context(), registry, args[0], getSkillFilesConfigFromFlags(cmd), cmd.OutOrStdout())
	},
}

var skillCatCmd = &cobra.Command{
	Use:   "cat <skill-name> <relative-path>",
	Short: "Print a file from a skill directory",
	Long: `Print a file from a skill directory. The path is relative to the skill directory
and may not resolve outside of it.

Examples:
  skillmcp skill cat pdf scripts/extract.py
  skillmcp skill cat pdf scripts/extract.py --return-type file_path`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry(appConfig)
		if err != nil {
			return err
		}
		return runSkillCat(cmd.Context(), registry, args[0], args[1], getSkillCatConfigFromFlags(cmd), cmd.OutOrStdout())
	},
}

var skillValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every SKILL.md in the skills directory",
	Long: `Parse every SKILL.md in the skills directory and report the ones that would be
skipped by the server. Exits with status 1 if any manifest is invalid.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := newRegistry(appConfig)
		if err != nil {
			return err
		}
		return runSkillValidate(cmd.Context(), registry, newPresenter(cmd))
	},
}

func init() {
	listDefaults := NewSkillListConfig()
	skillListCmd.Flags().Bool("json", listDefaults.JSON, "Print skills as a JSON array")

	showDefaults := NewSkillShowConfig()
	skillShowCmd.Flags().String("return-type", showDefaults.ReturnType, "What to print: content, file_path or both")
	skillShowCmd.Flags().Bool("body", showDefaults.BodyOnly, "Print only the markdown after the frontmatter")

	filesDefaults := NewSkillFilesConfig()
	skillFilesCmd.Flags().Bool("absolute", filesDefaults.Absolute, "Print absolute paths")
	skillFilesCmd.Flags().String("pattern", filesDefaults.Pattern, "Only list files matching a glob pattern, ** matches across directories")

	catDefaults := NewSkillCatConfig()
	skillCatCmd.Flags().String("return-type", catDefaults.ReturnType, "What to print: content, file_path or both")

	skillCmd.AddCommand(withTracing(skillListCmd))
	skillCmd.AddCommand(withTracing(skillShowCmd))
	skillCmd.AddCommand(withTracing(skillFilesCmd))
	skillCmd.AddCommand(withTracing(skillCatCmd))
	skillCmd.AddCommand(withTracing(skillValidateCmd))
	rootCmd.AddCommand(skillCmd)
}

func getSkillListConfigFromFlags(cmd *cobra.Command) *SkillListConfig {
	config := NewSkillListConfig()
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func getSkillShowConfigFromFlags(cmd *cobra.Command) *SkillShowConfig {
	config := NewSkillShowConfig()
	if returnType, err := cmd.Flags().GetString("return-type"); err == nil {
		config.ReturnType = returnType
	}
	if body, err := cmd.Flags().GetBool("body"); err == nil {
		config.BodyOnly = body
	}
	return config
}

func getSkillFilesConfigFromFlags(cmd *cobra.Command) *SkillFilesConfig {
	config := NewSkillFilesConfig()
	if absolute, err := cmd.Flags().GetBool("absolute"); err == nil {
		config.Absolute = absolute
	}
	if pattern, err := cmd.Flags().GetString("pattern"); err == nil {
		config.Pattern = pattern
	}
	return config
}

func getSkillCatConfigFromFlags(cmd *cobra.Command) *SkillCatConfig {
	config := NewSkillCatConfig()
	if returnType, err := cmd.Flags().GetString("return-type"); err == nil {
		config.ReturnType = returnType
	}
	return config
}

func runSkillList(ctx context.Context, registry *skills.Registry, config *SkillListConfig, p presenter.Presenter, out io.Writer) error {
	discovered := registry.Discover(ctx)
	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].Name < discovered[j].Name
	})

	if config.JSON {
		if discovered == nil {
			discovered = []*skills.Skill{}
		}
		return printJSON(out, discovered)
	}

	if len(discovered) == 0 {
		p.Info("No skills found in " + registry.Root())
		return nil
	}

	rows := make([][]string, 0, len(discovered))
	for _, skill := range discovered {
		rows = append(rows, []string{skill.Name, skill.Description, skill.Directory})
	}
	p.Table([]string{"NAME", "DESCRIPTION", "DIRECTORY"}, rows)
	return nil
}

func runSkillShow(ctx context.Context, registry *skills.Registry, name string, config *SkillShowConfig, out io.Writer) error {
	if config.BodyOnly {
		skill, err := registry.FindByName(ctx, name)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, skill.Body())
		return err
	}

	rt, err := skills.ParseReturnType(config.ReturnType)
	if err != nil {
		return err
	}
	doc, err := registry.GetSkillContent(ctx, name, rt)
	if err != nil {
		return err
	}
	return printDocument(out, doc)
}

func runSkillFiles(ctx context.Context, registry *skills.Registry, name string, config *SkillFilesConfig, out io.Writer) error {
	files, err := registry.ListFiles(ctx, name, true)
	if err != nil {
		return err
	}
	files, err = skills.FilterFiles(files, config.Pattern)
	if err != nil {
		return err
	}

	var dir string
	if config.Absolute {
		skill, err := registry.FindByName(ctx, name)
		if err != nil {
			return err
		}
		dir = skill.Directory
	}

	for _, file := range files {
		if config.Absolute {
			file = filepath.Join(dir, filepath.FromSlash(file))
		}
		if _, err := fmt.Fprintln(out, file); err != nil {
			return err
		}
	}
	return nil
}

func runSkillCat(ctx context.Context, registry *skills.Registry, name, relativePath string, config *SkillCatConfig, out io.Writer) error {
	rt, err := skills.ParseReturnType(config.ReturnType)
	if err != nil {
		return err
	}
	doc, err := registry.GetFile(ctx, name, relativePath, rt)
	if err != nil {
		return err
	}
	return printDocument(out, doc)
}

func runSkillValidate(ctx context.Context, registry *skills.Registry, p presenter.Presenter) error {
	discovered, err := registry.DiscoverWithErrors(ctx)

	p.Section("Skills in " + registry.Root())
	for _, skill := range discovered {
		p.Success(skill.Name + " (" + skill.ManifestPath() + ")")
	}

	if err == nil {
		p.Info(strconv.Itoa(len(discovered)) + " skill(s) valid")
		return nil
	}

	var merr *multierror.Error
	failures := []error{err}
	if errors.As(err, &merr) {
		failures = merr.Errors
	}
	for _, failure := range failures {
		p.Error(failure, "")
	}
	p.Warning(strconv.Itoa(len(failures)) + " manifest(s) skipped")

	return errors.Errorf("%d skill manifest(s) failed validation", len(failures))
}

// printDocument writes plain text for a single-field document and indented
// JSON when both content and path were requested
func printDocument(out io.Writer, doc *skills.Document) error {
	if doc.ReturnType == skills.ReturnBoth {
		return printJSON(out, doc)
	}

	text := doc.String()
	if doc.ReturnType == skills.ReturnFilePath {
		text += "\n"
	}
	_, err := fmt.Fprint(out, text)
	return err
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	return nil
}
