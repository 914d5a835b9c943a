package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/formstate/internal/compiler"
	"github.com/roach88/formstate/internal/schema"
)

// LoadSpecs compiles the given CUE files, unified into one value, into a
// new registry and checks it for dangling references and embedding cycles.
func LoadSpecs(paths []string, preds compiler.Predicates) (*schema.Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString("{}")
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read spec: %w", err)
		}
		file := ctx.CompileBytes(data, cue.Filename(path))
		if err := file.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		v = v.Unify(file)
	}

	reg := schema.NewRegistry()
	if _, err := compiler.Compile(v, reg, preds); err != nil {
		return nil, err
	}
	if errs := compiler.Validate(reg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid specs: %w", errs[0])
	}
	return reg, nil
}
