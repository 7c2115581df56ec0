package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DecodeFunc turns the raw bytes of an artifact file into a Classifier.
type DecodeFunc func(path string, data []byte) (Classifier, error)

//go:embed schema/artifact.schema.json
var artifactSchemaJSON []byte

var (
	artifactSchemaOnce sync.Once
	artifactSchema     *jsonschema.Schema
	artifactSchemaErr  error
)

func compiledArtifactSchema() (*jsonschema.Schema, error) {
	artifactSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("artifact.schema.json", bytes.NewReader(artifactSchemaJSON)); err != nil {
			artifactSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		artifactSchema, artifactSchemaErr = compiler.Compile("artifact.schema.json")
	})
	return artifactSchema, artifactSchemaErr
}

// artifact is the exported form of a trained model.
type artifact struct {
	Kind         string    `json:"kind"`
	Classes      []int     `json:"classes"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    *float64  `json:"intercept"`
}

// Decode selects a decoder from the file extension of path. YAML documents are
// converted to JSON so both formats go through the same schema check.
func Decode(path string, data []byte) (Classifier, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml artifact: %w", err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert yaml artifact: %w", err)
		}
		data = converted
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", ext)
	}

	if err := validateArtifact(data); err != nil {
		return nil, err
	}

	var a artifact
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return a.build()
}

func validateArtifact(data []byte) error {
	schema, err := compiledArtifactSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode json artifact: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("artifact does not match schema: %w", err)
	}
	return nil
}

func (a *artifact) build() (Classifier, error) {
	switch a.Kind {
	case "", KindLogisticRegression:
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
	if a.Intercept == nil {
		return nil, fmt.Errorf("artifact has no intercept")
	}
	return NewLogisticRegression(a.Classes, a.Coefficients, *a.Intercept)
}
