package nav

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a route tree.
//
//	routes:
//	  - title: Dashboard
//	    path: /user
//	  - title: Admin
//	    path: /admin
//	    requires: [admin]
//	    children:
//	      - {title: Users, path: /admin/users}
type File struct {
	Routes []Route `yaml:"routes"`
}

// Load decodes a YAML route tree from r and validates it.
// Unknown keys are rejected so typos fail at startup.
func Load(r io.Reader) (*Tree, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, &ConfigError{Reason: "empty route file"}
		}
		return nil, fmt.Errorf("decode nav config: %w", err)
	}
	return NewTree(f.Routes)
}

// LoadFile reads and validates the route tree at path.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nav config %s: %w", path, err)
	}
	t, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load nav config %s: %w", path, err)
	}
	return t, nil
}
