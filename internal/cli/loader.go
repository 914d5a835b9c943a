package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/formstate/internal/compiler"
	"github.com/roach88/formstate/internal/schema"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll also runs the registry consistency checks and
	// reports every problem they find.
	LoadModeCollectAll
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Registry  *schema.Registry
	Entities  []string  // compiled entity names in file order
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the CUE package in dir and compiles its domains and
// entities into a new registry. Predicates named by "function" validators
// are looked up in preds.
//
// A nil result means nothing could be compiled. With a non-nil result, the
// returned errors are consistency problems (LoadModeCollectAll only).
func LoadSpecs(dir string, mode LoadMode, preds compiler.Predicates) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	reg := schema.NewRegistry()
	names, err := compiler.Compile(value, reg, preds)
	if err != nil {
		return nil, []error{convertCompileError(err)}
	}
	if len(names) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: "no entities found in specs"}}
	}

	result := &LoadResult{
		Registry:  reg,
		Entities:  names,
		CUEValue:  value,
		FileCount: len(cueFiles),
	}
	if mode == LoadModeFailFast {
		return result, nil
	}

	var errs []error
	for _, verr := range compiler.Validate(reg) {
		errs = append(errs, &LoadError{Code: verr.Code, Message: fmt.Sprintf("%s: %s", verr.Field, verr.Message)})
	}
	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeUnknownEntity = "E008" // Entity name not in the registry
	ErrCodeStore         = "E009" // Snapshot store error

	// Schema compilation errors (E101-E104 come from compiler.Validate)
	ErrCodeInvalidType   = "E105" // Unknown fieldType
	ErrCodeMissingRef    = "E106" // object/list entry without entity
	ErrCodeUnknownDomain = "E107" // Field names an undeclared domain
	ErrCodeValidator     = "E108" // Malformed validator
	ErrCodeDuplicate     = "E109" // Entity declared twice

	// Payload errors
	ErrCodeBadData    = "E201" // Payload is not a JSON object
	ErrCodeMerge      = "E202" // Payload does not fit the entity
	ErrCodeInvalid    = "E203" // Payload has field errors
	ErrCodeNoSnapshot = "E204" // No snapshot stored
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.HasSuffix(field, ".fieldType"):
		return ErrCodeInvalidType
	case strings.HasSuffix(field, ".entity"):
		return ErrCodeMissingRef
	case strings.HasSuffix(field, ".domain"):
		return ErrCodeUnknownDomain
	case strings.Contains(field, "validators"):
		return ErrCodeValidator
	case strings.HasPrefix(field, "entity."):
		return ErrCodeDuplicate
	default:
		return ErrCodeGeneric
	}
}
