package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCatalog is returned when a directory holds no recognised catalog.
var ErrNoCatalog = errors.New("no app catalog found")

// LoadApp reads the catalogs of the app at path. path is either an app
// directory or one of its catalog files. Directories are probed in order:
// app.cue, app.hcl, install.json, install.yaml (or install.yml), and finally
// any CUE package. install files pick up their sibling layout file when one
// exists.
func LoadApp(path string) (*App, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading app %s: %w", path, err)
	}

	dir, file := path, ""
	if !info.IsDir() {
		dir = filepath.Dir(path)
		if file, err = entryFile(dir, filepath.Base(path)); err != nil {
			return nil, fmt.Errorf("loading app %s: %w", path, err)
		}
	} else {
		file, err = probe(dir)
		if err != nil {
			return nil, err
		}
	}

	app := &App{Name: filepath.Base(dir), Dir: dir}
	switch {
	case file == "":
		app.Format = "cue"
		app.Params, app.Layout, err = LoadCUE(dir)
	case strings.HasSuffix(file, ".cue"):
		app.Format = "cue"
		app.Params, app.Layout, err = readWhole(filepath.Join(dir, file), ParseCUE)
	case strings.HasSuffix(file, ".hcl"):
		app.Format = "hcl"
		app.Params, app.Layout, err = readWhole(filepath.Join(dir, file), ParseHCL)
	case strings.HasSuffix(file, ".json"):
		app.Format = "json"
		app.Params, app.Layout, err = readPair(dir, file, []string{"layout.json"}, ReadJSON)
	case strings.HasSuffix(file, ".yaml"), strings.HasSuffix(file, ".yml"):
		app.Format = "yaml"
		app.Params, app.Layout, err = readPair(dir, file, []string{"layout.yaml", "layout.yml"}, ReadYAML)
	default:
		return nil, fmt.Errorf("loading app %s: unsupported catalog file %s", path, file)
	}
	if err != nil {
		return nil, fmt.Errorf("loading app %s: %w", path, err)
	}
	return app, nil
}

// probe returns the catalog file to read in dir, or "" for a CUE package.
func probe(dir string) (string, error) {
	for _, name := range []string{"app.cue", "app.hcl", "install.json", "install.yaml", "install.yml"} {
		if fileExists(filepath.Join(dir, name)) {
			return name, nil
		}
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return "", err
	}
	if len(matches) > 0 {
		return "", nil
	}
	return "", fmt.Errorf("%s: %w", dir, ErrNoCatalog)
}

// entryFile maps a catalog file named on the command line to the file that
// starts the read. A layout file resolves to its sibling install file; any
// other JSON or YAML name is rejected.
func entryFile(dir, file string) (string, error) {
	ext := filepath.Ext(file)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return file, nil
	}

	switch strings.TrimSuffix(file, ext) {
	case "install":
		return file, nil
	case "layout":
		candidates := []string{"install" + ext}
		if ext != ".json" {
			candidates = []string{"install.yaml", "install.yml"}
		}
		for _, c := range candidates {
			if fileExists(filepath.Join(dir, c)) {
				return c, nil
			}
		}
		return "", fmt.Errorf("layout file %s has no sibling %s: %w", file, candidates[0], ErrNoCatalog)
	default:
		return "", fmt.Errorf("unsupported catalog file %s: expected install%s or layout%s", file, ext, ext)
	}
}

func readWhole(path string, parse func([]byte, string) (*ParameterCatalog, *LayoutCatalog, error)) (*ParameterCatalog, *LayoutCatalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return parse(src, path)
}

func readPair(dir, install string, layouts []string, read func(io.Reader, io.Reader) (*ParameterCatalog, *LayoutCatalog, error)) (*ParameterCatalog, *LayoutCatalog, error) {
	inst, err := os.Open(filepath.Join(dir, install))
	if err != nil {
		return nil, nil, err
	}
	defer inst.Close()

	for _, name := range layouts {
		lf, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		defer lf.Close()
		return read(inst, lf)
	}
	return read(inst, nil)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
