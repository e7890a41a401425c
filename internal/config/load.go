package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

//go:embed default.cue
var defaultCUE string

// Default returns the built-in development runtime: the Janus pallet at index 8
// and the alice and bob accounts.
func Default() *Runtime {
	rt, err := CompileString(defaultCUE, "default.cue")
	if err != nil {
		panic(fmt.Sprintf("default runtime: %v", err))
	}
	return rt
}

// CompileString compiles a runtime description held in memory.
func CompileString(src, filename string) (*Runtime, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return CompileRuntime(v)
}

// Load reads a runtime description from path: a single .cue file, or a
// directory whose package-less .cue files form one CUE instance, written like
// default.cue. An empty path yields Default.
func Load(path string) (*Runtime, error) {
	if path == "" {
		return Default(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("runtime description: %w", err)
	}

	if !info.IsDir() {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("runtime description: %w", err)
		}
		rt, err := CompileString(string(src), path)
		if err != nil {
			return nil, fmt.Errorf("runtime description %s: %w", path, err)
		}
		return rt, nil
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path, Package: "_"})
	if len(instances) == 0 {
		return nil, fmt.Errorf("runtime description %s: no CUE instances loaded", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("runtime description %s: loading CUE files: %w", path, inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	rt, err := CompileRuntime(v)
	if err != nil {
		return nil, fmt.Errorf("runtime description %s: %w", path, err)
	}
	return rt, nil
}
