package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitescan/internal/model"
	"github.com/nao1215/sitescan/internal/pipeline"
	"github.com/nao1215/sitescan/internal/schema"
)

// ErrSchemaViolations is returned when the input does not match the
// assessment schema.
var ErrSchemaViolations = errors.New("assessment does not match the schema")

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var colorize, nocolor, printSchema bool

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a saved service response against the assessment schema",
		Long: `Validate checks the assessment in a saved scanning service response against
the schema sitescan expects, and prints every deviation with a compliance
percentage. Deviations never stop a scan; this command helps to spot service
versions that changed their output.

Examples:
  sitescan validate response.json
  sitescan validate - < response.json
  sitescan validate --schema`,
		Args: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				_, err := cmd.OutOrStdout().Write(schema.Schema())
				return err
			}
			setColor(colorize, nocolor)
			return runValidate(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&printSchema, "schema", false, "print the assessment schema and exit")

	return cmd
}

func setColor(colorize, nocolor bool) {
	if nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	} else if colorize {
		color.NoColor = false //nolint:reassign // intentional override of library global
	}
}

// runValidate loads the input and reports schema issues.
func runValidate(cmd *cobra.Command, path string) error {
	logger := setupLogger(cmd)
	out := cmd.OutOrStdout()

	scan := model.NewScan(path)
	load := pipeline.NewLoadStep(pipeline.WithStdin(cmd.InOrStdin()), pipeline.WithLoadLogger(logger))
	if err := load.Do(cmd.Context(), scan); err != nil {
		return err
	}

	label := path
	if path == pipeline.StdinTarget {
		label = "stdin"
	}

	raw := scan.Response.Assessment()
	issues := schema.Validate(raw)
	compliance := schema.Compliance(raw, issues)

	if len(issues) == 0 {
		color.New(color.FgGreen).Fprintf(out, "Assessment is valid (%s)\n", label)
		color.New(color.FgGreen).Fprintf(out, "  Compliance: %d%%\n", compliance)
		if len(raw) == 0 {
			color.New(color.FgYellow).Fprintf(out, "  Note: no assessment sections found\n")
		}
		return nil
	}

	color.New(color.FgRed).Fprintf(out, "Assessment validation failed (%s)\n", label)
	color.New(color.FgYellow).Fprintf(out, "  Compliance: %d%%\n", compliance)

	fmt.Fprintf(out, "\nIssues:\n")
	for _, issue := range issues {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", issue)
	}

	if hints := recommendations(issues); len(hints) > 0 {
		fmt.Fprintf(out, "\nRecommendations:\n")
		for _, hint := range hints {
			color.New(color.FgCyan).Fprintf(out, "  - %s\n", hint)
		}
	}

	return fmt.Errorf("%w: %d issue(s)", ErrSchemaViolations, len(issues))
}

// recommendations turns issues into unique hints, in first-seen order.
func recommendations(issues []schema.Issue) []string {
	var hints []string
	seen := make(map[string]bool)
	add := func(hint string) {
		if !seen[hint] {
			seen[hint] = true
			hints = append(hints, hint)
		}
	}

	for _, issue := range issues {
		switch {
		case strings.Contains(issue.Field, "risk_score"):
			add("risk_score should be a number between 0 and 100")
		case strings.Contains(issue.Field, "vendor_analysis"):
			add("vendor_analysis entries should be objects with purpose, data_collected and reputation")
		case strings.Contains(issue.Description, "Invalid type"):
			add("Check the type of " + sectionOf(issue.Field) + " against `sitescan validate --schema`")
		}
	}
	return hints
}

// sectionOf returns the top-level section of a field path.
func sectionOf(fieldPath string) string {
	section, _, _ := strings.Cut(fieldPath, ".")
	return section
}
