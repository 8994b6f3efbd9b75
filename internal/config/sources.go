package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GlobalFileName is the file name used for the user and installation
// level configuration files.
const GlobalFileName = ".ai-codereview.env"

// Layer names, highest precedence first.
const (
	LayerFlags   = "flags"
	LayerEnv     = "environment"
	LayerProject = "project config"
	LayerUser    = "user global config"
	LayerInstall = "installation global config"
	LayerPackage = "package default config"
)

// Layer is one configuration source.
type Layer struct {
	Name   string
	Path   string
	Loaded bool
	Values map[string]string
}

// Paths holds the file locations consulted by Load.
type Paths struct {
	Project string
	User    string
	Install string
	Package string
}

// ResolvePaths computes the file locations for the given directories.
// Empty directories produce empty paths, which are skipped.
func ResolvePaths(workDir, homeDir, exeDir string) Paths {
	var p Paths
	if workDir != "" {
		p.Project = filepath.Join(workDir, ".env")
	}
	if homeDir != "" {
		p.User = filepath.Join(homeDir, GlobalFileName)
	}
	if exeDir != "" {
		p.Install = filepath.Join(exeDir, GlobalFileName)
		p.Package = filepath.Join(exeDir, ".env")
	}
	return p
}

// DefaultPaths resolves Paths for the running process.
func DefaultPaths() Paths {
	o := Options{}.withDefaults()
	return ResolvePaths(o.WorkDir, o.HomeDir, o.ExeDir)
}

func readLayers(opts Options) ([]Layer, error) {
	paths := ResolvePaths(opts.WorkDir, opts.HomeDir, opts.ExeDir)

	layers := []Layer{
		{Name: LayerFlags, Loaded: true, Values: copyMap(opts.Overrides)},
		{Name: LayerEnv, Loaded: true, Values: readEnv(opts.LookupEnv)},
	}

	for _, f := range []struct {
		name string
		path string
	}{
		{LayerProject, paths.Project},
		{LayerUser, paths.User},
		{LayerInstall, paths.Install},
		{LayerPackage, paths.Package},
	} {
		l := Layer{Name: f.name, Path: f.path}
		if f.path != "" {
			values, err := readEnvFile(f.path)
			if err != nil {
				return nil, err
			}
			if values != nil {
				l.Loaded = true
				l.Values = values
			}
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// readEnvFile parses a dotenv file without touching the process
// environment. A missing file yields nil values and no error.
func readEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

func readEnv(lookup func(string) (string, bool)) map[string]string {
	out := make(map[string]string)
	for _, k := range Keys {
		if v, ok := lookup(k); ok {
			out[k] = v
		}
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
