package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Entity string // entity to validate a payload against
	Data   string // JSON payload file
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Entity string            `json:"entity,omitempty"` // set when a payload was checked
	Errors []CLIError        `json:"errors,omitempty"`
	Fields map[string]string `json:"fields,omitempty"` // payload field errors by path
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate specs, or a payload against an entity",
		Long: `Check CUE entity schemas for consistency.

With --entity and --data, also build a store node for the entity, merge
the JSON payload into it and report every field whose value fails its
required flag or domain validators.

Examples:
  formstate validate ./specs
  formstate validate ./specs --entity contact --data contact.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity to validate the payload against")
	cmd.Flags().StringVar(&opts.Data, "data", "", "JSON payload file")
	cmd.MarkFlagsRequiredTogether("entity", "data")

	return cmd
}

func runValidate(opts *ValidateOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Entity != "" {
		return validatePayload(opts, specsDir, formatter)
	}

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll, nil)
	if loadResult == nil {
		code, message := parseLoadError(loadErrors[0])
		return outputCommandError(formatter, code, message)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := ValidationResult{Valid: len(loadErrors) == 0}
	for _, err := range loadErrors {
		code, message := parseLoadError(err)
		result.Errors = append(result.Errors, CLIError{Code: code, Message: message})
	}
	return outputValidation(formatter, result)
}

func validatePayload(opts *ValidateOptions, specsDir string, formatter *OutputFormatter) error {
	node, err := opts.loadEntity(formatter, specsDir, opts.Entity)
	if err != nil {
		return err
	}
	if err := mergePayload(formatter, node, opts.Data); err != nil {
		return err
	}

	fields := fieldErrors(node)
	result := ValidationResult{Valid: len(fields) == 0, Entity: opts.Entity, Fields: fields}
	if !result.Valid {
		result.Errors = []CLIError{{
			Code:    ErrCodeInvalid,
			Message: fmt.Sprintf("%d field(s) of %s are invalid", len(fields), opts.Entity),
		}}
	}
	return outputValidation(formatter, result)
}

// outputValidation prints the result. Spec problems exit with code 2,
// invalid payloads with code 1.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			response.Error = &result.Errors[0]
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else if result.Valid && result.Entity != "" {
		fmt.Fprintf(formatter.Writer, "✓ %s payload valid\n", result.Entity)
	} else if result.Valid {
		fmt.Fprintln(formatter.Writer, "✓ All specs valid")
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Validation failed with %d error(s)\n\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", e.Code, e.Message)
		}
		if len(result.Fields) > 0 {
			fmt.Fprintln(formatter.Writer)
			formatter.FieldErrors(result.Fields)
		}
	}

	switch {
	case result.Valid:
		return nil
	case len(result.Fields) > 0:
		return NewExitError(ExitFailure, result.Errors[0].Message)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
}
