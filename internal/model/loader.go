package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artifact es la forma serializada del árbol exportado por el pipeline de entrenamiento.
// Value lleva los pesos de clase por nodo ya aplanados: [[n0, n1], ...].
type Artifact struct {
	FeatureNames []string     `json:"feature_names" yaml:"feature_names"`
	Structure    `yaml:",inline"`
	Value        [][2]float64 `json:"value" yaml:"value"`
}

// Format es el formato de codificación del artefacto.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Load lee el artefacto desde disco y elige el decoder por extensión.
func Load(path string) (*DecisionTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	return Decode(f, format)
}

// Decode construye un DecisionTree desde un reader.
func Decode(r io.Reader, format Format) (*DecisionTree, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art Artifact
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &art); err != nil {
			return nil, fmt.Errorf("decode yaml artifact: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &art); err != nil {
			return nil, fmt.Errorf("decode json artifact: %w", err)
		}
	}

	tree, err := NewDecisionTree(art.FeatureNames, art.Structure, art.Value)
	if err != nil {
		return nil, fmt.Errorf("build decision tree: %w", err)
	}
	return tree, nil
}

// Export devuelve el artefacto equivalente a un DecisionTree.
func (t *DecisionTree) Export() Artifact {
	return Artifact{
		FeatureNames: t.FeatureNames(),
		Structure:    t.structure,
		Value:        append([][2]float64(nil), t.values...),
	}
}
