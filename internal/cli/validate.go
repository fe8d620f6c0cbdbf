package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verity/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	World     string                     `json:"world"`
	WorldHash string                     `json:"world_hash,omitempty"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
	Warnings  []compiler.CycleWarning    `json:"warnings,omitempty"`
	Witness   map[string]bool            `json:"witness,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <world>",
		Short: "Check a world for errors, rule cycles and unwinnable goals",
		Long: `Validate a CUE world without playing it.

Checks references, names and goals, warns about rules and formulas that can
trigger each other in a cycle, and asks a SAT solver whether the goals can
hold together with every rule. A world whose goals can never hold fails
with E209.

Exit codes:
  0 - World is valid (cycle warnings do not fail)
  1 - World has errors
  2 - Command error (world not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := loadWorld(path)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Code != ErrCodeNotFound {
			return outputValidationErrors(formatter, ValidationResult{
				World: path,
				Errors: []compiler.ValidationError{{
					Field:   "load",
					Message: le.Message,
					Code:    le.Code,
					Line:    le.Line,
				}},
			})
		}
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return loadExitError(err)
	}

	formatter.VerboseLog("Loaded world %s: %d entities, %d rules, %d formulas, %d goals",
		spec.Name, len(spec.Entities), len(spec.Rules), len(spec.Formulas), len(spec.Goals))

	result := ValidationResult{World: spec.Name}
	result.Errors = compiler.Validate(spec)
	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}

	result.Warnings = compiler.AnalyzeCycles(spec)

	check, err := compiler.CheckGoals(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "goal check failed", err)
	}
	if !check.Satisfiable {
		result.Errors = []compiler.ValidationError{compiler.UnwinnableError(spec)}
		return outputValidationErrors(formatter, result)
	}
	result.Witness = check.Witness

	hash, err := compiler.WorldHash(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash world", err)
	}
	result.WorldHash = hash
	result.Valid = true

	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn.Message)
	}
	fmt.Fprintf(w, "✓ World %s valid\n", result.World)
	if formatter.Verbose {
		fmt.Fprintf(w, "  hash: %s\n", result.WorldHash)
	}
	return nil
}

// outputValidationErrors outputs validation errors and returns exit code 1.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(w, "line %d\n", err.Line)
		}
		fmt.Fprintf(w, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
