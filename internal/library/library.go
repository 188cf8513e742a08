// Package library expone la biblioteca estatica de preguntas, ejemplos STAR y
// minutos base por categoria. Se carga una vez por proceso y es de solo lectura.
package library

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"interview-coach/internal/domain"
)

//go:embed library.yaml
var embedded []byte

type libraryFile struct {
	Questions    map[string]any                `yaml:"questions"`
	StarExamples map[string]domain.StarExample `yaml:"star_examples"`
	BaseMinutes  map[string]int                `yaml:"base_minutes"`
}

// Library implementa domain.QuestionLibrary.
type Library struct {
	questions map[string][]string
	stars     map[string]domain.StarExample
	minutes   map[string]int
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default devuelve el singleton construido desde el YAML embebido.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Parse(embedded)
	})
	return defaultLib, defaultErr
}

// MustDefault entra en panico si el YAML embebido es invalido.
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(err)
	}
	return lib
}

// Parse construye una biblioteca desde YAML.
func Parse(data []byte) (*Library, error) {
	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse question library: %w", err)
	}
	lib := &Library{
		questions: make(map[string][]string),
		stars:     make(map[string]domain.StarExample, len(file.StarExamples)),
		minutes:   make(map[string]int, len(file.BaseMinutes)),
	}
	for category, node := range file.Questions {
		if err := flatten(lib.questions, category, "", node); err != nil {
			return nil, err
		}
	}
	for label, ex := range file.StarExamples {
		lib.stars[label] = ex
	}
	for category, m := range file.BaseMinutes {
		if m < 0 {
			return nil, fmt.Errorf("base minutes for %s must be >= 0", category)
		}
		lib.minutes[category] = m
	}
	return lib, nil
}

// flatten convierte technical.python.fundamental en la clave "technical/python.fundamental".
func flatten(out map[string][]string, category, prefix string, node any) error {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			sub := key
			if prefix != "" {
				sub = prefix + "." + key
			}
			if err := flatten(out, category, sub, child); err != nil {
				return err
			}
		}
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("question %s/%s: expected string, got %T", category, prefix, item)
			}
			items = append(items, s)
		}
		out[key(category, prefix)] = items
	default:
		return fmt.Errorf("question %s/%s: unexpected node %T", category, prefix, node)
	}
	return nil
}

func key(category, subcategory string) string {
	return strings.ToLower(category) + "/" + strings.ToLower(subcategory)
}

// Questions devuelve una copia de las preguntas de la subcategoria.
func (l *Library) Questions(category domain.QuestionCategory, subcategory string) []string {
	items := l.questions[key(string(category), subcategory)]
	return append([]string(nil), items...)
}

func (l *Library) StarExample(label string) (domain.StarExample, bool) {
	ex, ok := l.stars[label]
	return ex, ok
}

func (l *Library) BaseMinutes(category string) int {
	return l.minutes[category]
}

// Subcategories lista las subcategorias de una categoria, ordenadas.
func (l *Library) Subcategories(category domain.QuestionCategory) []string {
	prefix := strings.ToLower(string(category)) + "/"
	var subs []string
	for k := range l.questions {
		if strings.HasPrefix(k, prefix) {
			subs = append(subs, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(subs)
	return subs
}
