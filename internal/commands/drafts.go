package commands

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// readDraft decodes a YAML or JSON draft file into out, rejecting unknown keys
func readDraft(path string, out any) error {
	if path == "" {
		return fmt.Errorf("draft file is required (-f)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read draft: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to parse draft %s: %w", path, err)
	}
	return nil
}

func readInterfaceDraft(path string) (schema.InterfaceDraft, error) {
	var d schema.InterfaceDraft
	err := readDraft(path, &d)
	return d, err
}

func readTypeDraft(path string) (schema.CustomTypeDraft, error) {
	var d schema.CustomTypeDraft
	err := readDraft(path, &d)
	return d, err
}
