package repository

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"interview-coach/internal/domain"
)

//go:embed history.schema.json
var historySchemaJSON string

var (
	historySchemaOnce sync.Once
	historySchema     *gojsonschema.Schema
	historySchemaErr  error
)

// SchemaError lista los campos que no cumplen el schema del documento.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return "history document invalid: " + strings.Join(e.Fields, "; ")
}

func loadHistorySchema() (*gojsonschema.Schema, error) {
	historySchemaOnce.Do(func() {
		historySchema, historySchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(historySchemaJSON))
	})
	return historySchema, historySchemaErr
}

// ValidateHistory valida el JSON crudo contra el schema embebido.
func ValidateHistory(data []byte) error {
	schema, err := loadHistorySchema()
	if err != nil {
		return fmt.Errorf("load history schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate history: %w", err)
	}
	if result.Valid() {
		return nil
	}
	fields := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, field+": "+desc.Description())
	}
	return &SchemaError{Fields: fields}
}

// decodeHistory valida y decodifica; conserva campos desconocidos.
func decodeHistory(data []byte) (domain.HistoryDocument, error) {
	if err := ValidateHistory(data); err != nil {
		return domain.HistoryDocument{}, err
	}
	var doc domain.HistoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.HistoryDocument{}, fmt.Errorf("decode history: %w", err)
	}
	return doc, nil
}
