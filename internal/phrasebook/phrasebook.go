// Package phrasebook loads and validates warm-up phrase files for the
// translation cache.
package phrasebook

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/innkeep/localize/internal/language"
)

//go:embed phrasebook.schema.json
var phrasebookSchemaJSON string

// Phrasebook is a list of phrases to pre-translate into target languages.
// Phrases are expected to be written in the session's default source language.
type Phrasebook struct {
	Name      string   `json:"name,omitempty"`
	Phrases   []string `json:"phrases"`
	Languages []string `json:"languages"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// LoadFile reads and validates a phrasebook JSON file.
func LoadFile(path string) (*Phrasebook, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrasebook file: %w", err)
	}
	return Parse(payload)
}

// Parse validates raw phrasebook JSON against the embedded schema and
// normalizes its language codes.
func Parse(payload []byte) (*Phrasebook, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode phrasebook JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize phrasebook JSON: %w", err)
	}

	var book Phrasebook
	if err := json.Unmarshal(normalized, &book); err != nil {
		return nil, fmt.Errorf("unmarshal phrasebook: %w", err)
	}

	if err := normalizeSemantics(&book); err != nil {
		return nil, err
	}
	return &book, nil
}

func normalizeSemantics(book *Phrasebook) error {
	phrases := make([]string, 0, len(book.Phrases))
	seen := make(map[string]struct{}, len(book.Phrases))
	for i, phrase := range book.Phrases {
		trimmed := strings.TrimSpace(phrase)
		if trimmed == "" {
			return fmt.Errorf("phrases[%d] must not be blank", i)
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		phrases = append(phrases, trimmed)
	}
	book.Phrases = phrases

	languages := make([]string, 0, len(book.Languages))
	seenLangs := make(map[string]struct{}, len(book.Languages))
	for i, lang := range book.Languages {
		code := language.NormalizeCode(lang)
		if code == "" {
			return fmt.Errorf("languages[%d] (%q) is not a valid language code", i, lang)
		}
		if _, exists := seenLangs[code]; exists {
			continue
		}
		seenLangs[code] = struct{}{}
		languages = append(languages, code)
	}
	book.Languages = languages

	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("phrasebook.schema.json", strings.NewReader(phrasebookSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("phrasebook.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("phrasebook is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("phrasebook contains trailing content")
	}

	return value, nil
}
