package rfs

import (
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// Meta is the optional meta.yaml sidecar written alongside a completed
// realization, for human/tool introspection only -- it is never read back by
// the core; the only persistent completion signal is the exit_code file.
type Meta struct {
	Task      string    `yaml:"task"`
	Branch    string    `yaml:"branch"`
	StartedAt time.Time `yaml:"started_at"`
	EndedAt   time.Time `yaml:"ended_at"`
}

// MetaYaml returns realization/meta.yaml.
func (f *Fs) MetaYaml(realization string) string {
	return filepath.Join(realization, "meta.yaml")
}

// WriteMeta marshals m and writes it to realization/meta.yaml.
func (f *Fs) WriteMeta(realization string, m Meta) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "marshaling meta.yaml for %q", realization)
	}
	return f.WriteFile(f.MetaYaml(realization), string(b))
}
