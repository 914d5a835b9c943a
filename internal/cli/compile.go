package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/formstate/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult describes the compiled domains and entities.
type CompilationResult struct {
	Domains  []DomainSummary `json:"domains"`
	Entities []EntitySummary `json:"entities"`
}

// DomainSummary is the serializable part of a compiled domain.
type DomainSummary struct {
	Name       string   `json:"name"`
	ClassName  string   `json:"class_name,omitempty"`
	Validators []string `json:"validators,omitempty"`
}

// EntitySummary lists the properties of a compiled entity.
type EntitySummary struct {
	Name       string            `json:"name"`
	Properties []PropertySummary `json:"properties"`
}

// PropertySummary describes one entry of an entity.
type PropertySummary struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Entity   string `json:"entity,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [specs-dir]",
		Short: "Compile CUE entity schemas",
		Long: `Compile CUE domain and entity declarations into a schema registry.

Every problem is reported: unknown field types, undeclared domains,
references to unregistered entities and embedding cycles. The specs
directory defaults to specs.dir from the configuration.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the compiled summary as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll, nil)
	if loadResult == nil {
		code, message := parseLoadError(loadErrors[0])
		return outputCommandError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, name := range loadResult.Entities {
		formatter.VerboseLog("Compiled entity: %s", name)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := summarize(loadResult.Registry, loadResult.Entities)

	if opts.Output != "" {
		if err := writeSummary(result, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// summarize describes the named entities of reg and every domain they may use.
func summarize(reg *schema.Registry, names []string) *CompilationResult {
	result := &CompilationResult{
		Domains:  []DomainSummary{},
		Entities: make([]EntitySummary, 0, len(names)),
	}

	for _, name := range reg.DomainNames() {
		d, _ := reg.Domain(name)
		ds := DomainSummary{Name: name, ClassName: d.ClassName}
		for _, v := range d.Validators {
			ds.Validators = append(ds.Validators, string(v.Kind()))
		}
		result.Domains = append(result.Domains, ds)
	}

	for _, name := range names {
		e, err := reg.Resolve(name)
		if err != nil {
			continue
		}
		es := EntitySummary{Name: name, Properties: make([]PropertySummary, 0, e.Len())}
		for _, entry := range e.Entries() {
			ps := PropertySummary{Name: entry.Prop(), Kind: entry.Kind().String()}
			switch en := entry.(type) {
			case schema.FieldEntry:
				ps.Type = en.Type.String()
				ps.Label = en.Label
				ps.Required = en.IsRequired
				ps.Domain = en.Domain.Name
			case schema.ObjectEntry:
				ps.Entity = en.EntityName
			case schema.ListEntry:
				ps.Entity = en.EntityName
			}
			es.Properties = append(es.Properties, ps)
		}
		result.Entities = append(result.Entities, es)
	}
	return result
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d entity(s), %d domain(s)\n\n",
		len(result.Entities), len(result.Domains))

	if len(result.Entities) > 0 {
		fmt.Fprintln(formatter.Writer, "Entities:")
		for _, e := range result.Entities {
			fields, nested := 0, 0
			for _, p := range e.Properties {
				if p.Kind == "field" {
					fields++
				} else {
					nested++
				}
			}
			fmt.Fprintf(formatter.Writer, "  %s: %d field(s), %d nested\n", e.Name, fields, nested)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled schema to %s\n", outputFile)
	}

	return nil
}

// outputCompileErrors outputs every consistency problem.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := parseLoadError(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for i, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErrors[i].Code, cliErrors[i].Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseLoadError extracts error code and message from an error.
func parseLoadError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeSummary writes the compilation result as indented JSON.
func writeSummary(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
