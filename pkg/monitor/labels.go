package monitor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Labels maps document type tags to their display names used in messages.
type Labels struct {
	byType map[string]string
}

// DefaultLabels returns the built-in document type labels.
func DefaultLabels() *Labels {
	return &Labels{byType: map[string]string{
		"contrato":    "Contrato",
		"atestado":    "Atestado Médico",
		"aditivo":     "Aditivo Contratual",
		"certidao":    "Certidão",
		"comprovante": "Comprovante",
		"declaracao":  "Declaração",
		"outro":       "Outro",
	}}
}

// LoadLabels reads a YAML file of type-to-label overrides and merges it
// over the defaults, so a deployment can rename or add document types
// without a rebuild.
func LoadLabels(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels file: %w", err)
	}

	overrides := make(map[string]string)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse labels file: %w", err)
	}

	labels := DefaultLabels()
	for typeTag, label := range overrides {
		labels.byType[typeTag] = label
	}
	return labels, nil
}

// Label returns the display name for a document type, falling back to the
// raw tag for unknown types.
func (l *Labels) Label(typeTag string) string {
	if label, ok := l.byType[typeTag]; ok {
		return label
	}
	return typeTag
}
