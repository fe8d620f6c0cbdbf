package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadWorld loads and compiles a world from a CUE package directory or a
// single .cue file.
func LoadWorld(path string) (*WorldSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	cfg := &load.Config{Dir: path}
	args := []string{"."}
	if !info.IsDir() {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("load world %s: no CUE instances loaded", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("load world %s: %w", path, formatCUEError(inst.Err))
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("load world %s: %w", path, formatCUEError(err))
	}

	spec, err := CompileWorld(value)
	if err != nil {
		return nil, fmt.Errorf("load world %s: %w", path, err)
	}
	if spec.Name == "" {
		spec.Name = filepath.Base(filepath.Clean(path))
	}
	return spec, nil
}
