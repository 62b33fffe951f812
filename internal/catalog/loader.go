package catalog

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edufiliova/navigator/model"
)

// OverrideFile is a parsed YAML override file.
type OverrideFile struct {
	Pages      []Override `yaml:"pages"`
	Checksum   string     `yaml:"-"`
	SourceFile string     `yaml:"-"`
}

// Override replaces selected catalog fields for one state. Nil fields keep
// the builtin value.
type Override struct {
	State       string  `yaml:"state"`
	Access      *string `yaml:"access,omitempty"`
	Policy      *string `yaml:"policy,omitempty"`
	WebsiteOnly *bool   `yaml:"website_only,omitempty"`
	Section     *string `yaml:"section,omitempty"`
	Forward     *string `yaml:"forward,omitempty"`
}

// Loader scans directories for YAML override files, parses them, and
// computes SHA-256 checksums.
type Loader struct{}

// NewLoader creates a new override Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadAll recursively scans directories for *.yaml and *.yml files and parses
// each into an OverrideFile.
func (l *Loader) LoadAll(directories []string) ([]OverrideFile, error) {
	var files []OverrideFile

	for _, dir := range directories {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}

			f, err := l.LoadFile(path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning directory %s: %w", dir, err)
		}
	}

	return files, nil
}

// LoadFile loads and parses a single YAML override file. It computes the
// SHA-256 checksum and records the source file path.
func (l *Loader) LoadFile(path string) (OverrideFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OverrideFile{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var f OverrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return OverrideFile{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	f.Checksum = fmt.Sprintf("%x", sha256.Sum256(data))
	f.SourceFile = path

	return f, nil
}

// ApplyOverrides returns a copy of descs with every override applied in file
// order. Overrides naming a state absent from descs are reported as errors
// and skipped. Roles are re-resolved from the resulting policies.
func ApplyOverrides(descs []PageDescriptor, files []OverrideFile) ([]PageDescriptor, []VError) {
	out := make([]PageDescriptor, len(descs))
	copy(out, descs)

	index := make(map[model.PageState]int, len(out))
	for i, d := range out {
		index[d.State] = i
	}

	var errs []VError
	for _, f := range files {
		for j, o := range f.Pages {
			path := fmt.Sprintf("%s.pages[%d]", f.SourceFile, j)
			i, ok := index[model.PageState(o.State)]
			if !ok {
				errs = append(errs, VError{
					Path:    path + ".state",
					Code:    "UNKNOWN_STATE",
					Message: fmt.Sprintf("state %q is not in the catalog", o.State),
				})
				continue
			}
			d := &out[i]
			if o.Access != nil {
				d.Access = model.Access(*o.Access)
			}
			if o.Policy != nil {
				d.Policy = *o.Policy
			}
			if o.WebsiteOnly != nil {
				d.WebsiteOnly = *o.WebsiteOnly
			}
			if o.Section != nil {
				d.Section = Section(*o.Section)
			}
			if o.Forward != nil {
				d.Forward = model.PageState(*o.Forward)
			}
		}
	}

	return ResolvePolicies(out), errs
}
