package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// File is the on-disk bank format.
type File struct {
	Version   int        `json:"version,omitempty"`
	Questions []Question `json:"questions"`
}

// ValidationError reports a bank file that does not match the schema or
// contains inconsistent questions.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question bank %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// LoadFile reads, validates and decodes a bank file.
func LoadFile(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	return parse(path, data)
}

// Parse validates and decodes bank JSON.
func Parse(data []byte) ([]Question, error) {
	return parse("<input>", data)
}

func parse(source string, data []byte) ([]Question, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile bank schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &ValidationError{Source: source, Err: fmt.Errorf("decode: %w", err)}
	}

	if err := checkQuestions(f.Questions); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}
	return f.Questions, nil
}

// checkQuestions enforces the rules the schema cannot express.
func checkQuestions(qs []Question) error {
	ids := make(map[string]bool, len(qs))
	for _, q := range qs {
		if ids[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		ids[q.ID] = true

		optIDs := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if optIDs[o.ID] {
				return fmt.Errorf("question %q: duplicate option id %q", q.ID, o.ID)
			}
			optIDs[o.ID] = true
		}
		if len(q.CorrectOptionIDs()) == 0 {
			return fmt.Errorf("question %q has no correct option", q.ID)
		}
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not the Go literal.
		raw, err := json.Marshal(fileSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		url := fmt.Sprintf("schema://%s.json", fileSchemaName)
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}
