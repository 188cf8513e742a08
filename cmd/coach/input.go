package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput decodifica un archivo JSON o YAML en v. El YAML se normaliza a JSON para
// respetar los tags json de los tipos del dominio.
func readInput(path string, v any) error {
	if path == "" {
		return fmt.Errorf("input file is required (--in)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse yaml %s: %w", path, err)
		}
		data, err = json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("normalize yaml %s: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
