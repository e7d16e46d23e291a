package storage

import (
	"fmt"

	"github.com/starford/ifcstep/internal/step"
)

// Load reads and parses the exchange file at path.
func Load(p Provider, path string, opts step.ParseOptions) (*step.File, error) {
	data, err := p.Read(path)
	if err != nil {
		return nil, err
	}
	f, err := step.ParseWithOptions(string(data), opts)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", path, err)
	}
	return f, nil
}

// Save prints f and writes it atomically to path.
func Save(p Provider, path string, f *step.File) error {
	return p.Write(path, []byte(f.String()))
}
