package catalog

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ReadYAML decodes install.yaml and, when layout is non-nil, layout.yaml.
// The keys are the same as in the JSON documents.
func ReadYAML(install, layout io.Reader) (*ParameterCatalog, *LayoutCatalog, error) {
	var inst installFile
	if err := yaml.NewDecoder(install).Decode(&inst); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("decoding install.yaml: %w", err)
	}
	if layout == nil {
		return build(&inst, nil)
	}
	var lf layoutFile
	if err := yaml.NewDecoder(layout).Decode(&lf); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("decoding layout.yaml: %w", err)
	}
	return build(&inst, &lf)
}
