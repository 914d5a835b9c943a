package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/ir"
	"github.com/roach88/formstate/internal/reactive"
	"github.com/roach88/formstate/internal/schema"
	"github.com/roach88/formstate/internal/store"
)

// loadEntity compiles specsDir and builds a blank store node for name.
// Failures are already reported on formatter.
func (o *RootOptions) loadEntity(formatter *OutputFormatter, specsDir, name string) (*entity.Node, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast, nil)
	if loadResult == nil {
		code, message := parseLoadError(loadErrors[0])
		return nil, outputCommandError(formatter, code, message)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	tr, err := o.translator()
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("loading messages: %v", err))
	}

	b := entity.NewBuilder(reactive.NewRuntime(), loadResult.Registry, tr)
	node, err := b.Build(name)
	if err != nil {
		var nf *schema.SchemaNotFoundError
		if errors.As(err, &nf) {
			return nil, outputCommandError(formatter, ErrCodeUnknownEntity, err.Error())
		}
		return nil, outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	return node, nil
}

// readPayload decodes a JSON object from path. Integral numbers decode as
// int64 so they coerce cleanly into int fields.
func readPayload(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := ir.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	obj, ok := ir.ToGo(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: payload must be a JSON object", path)
	}
	return obj, nil
}

// mergePayload reads path and merges it into node.
func mergePayload(formatter *OutputFormatter, node *entity.Node, path string) error {
	data, err := readPayload(path)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadData, err.Error())
	}
	if err := node.Set(data); err != nil {
		var me *entity.MergeError
		if errors.As(err, &me) {
			_ = formatter.Error(ErrCodeMerge, me.Message, map[string]string{"path": me.Path})
			return WrapExitError(ExitFailure, ErrCodeMerge, err)
		}
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	return nil
}

// fieldErrors collects the current error of every field under node.
func fieldErrors(node *entity.Node) map[string]string {
	errs := map[string]string{}
	entity.Walk(node, func(path string, f *entity.Field) bool {
		if msg := f.Error(); msg != "" {
			errs[path] = msg
		}
		return true
	})
	return errs
}

// dbPath picks the --db flag, else store.path.
func (o *RootOptions) dbPath(flag string) string {
	if flag != "" {
		return flag
	}
	return o.Config.Store.Path
}

// openStore opens the snapshot database, creating its directory.
func openStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	if path == "" {
		return nil, outputCommandError(formatter, ErrCodeStore, "no database path: set --db or store.path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("creating database directory: %v", err))
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	return st, nil
}
