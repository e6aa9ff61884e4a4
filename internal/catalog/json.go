package catalog

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSON decodes install.json and, when layout is non-nil, layout.json.
func ReadJSON(install, layout io.Reader) (*ParameterCatalog, *LayoutCatalog, error) {
	var inst installFile
	if err := json.NewDecoder(install).Decode(&inst); err != nil {
		return nil, nil, fmt.Errorf("decoding install.json: %w", err)
	}
	if layout == nil {
		return build(&inst, nil)
	}
	var lf layoutFile
	if err := json.NewDecoder(layout).Decode(&lf); err != nil {
		return nil, nil, fmt.Errorf("decoding layout.json: %w", err)
	}
	return build(&inst, &lf)
}
