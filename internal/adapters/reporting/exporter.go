package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by ForFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// Document is everything one exported report carries.
type Document struct {
	Title       string                `json:"title" yaml:"title"`
	GeneratedAt time.Time             `json:"generated_at" yaml:"generated_at"`
	Session     *domain.ScanSession   `json:"scan_session,omitempty" yaml:"scan_session,omitempty"`
	Networks    []domain.AccessPoint  `json:"networks" yaml:"networks"`
	Clients     []domain.Client       `json:"clients" yaml:"clients"`
	Analysis    domain.AnalysisReport `json:"analysis" yaml:"analysis"`
}

// Exporter renders a Document in one output format.
type Exporter interface {
	Export(doc Document) ([]byte, error)
	// Extension is the file extension without the dot.
	Extension() string
}

// ForFormat returns the exporter for "json", "yaml" (or "yml") and "pdf".
func ForFormat(name string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return JSONExporter{}, nil
	case "yaml", "yml":
		return YAMLExporter{}, nil
	case "pdf":
		return NewPDFExporter(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// JSONExporter writes indented JSON.
type JSONExporter struct{}

func (JSONExporter) Export(doc Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func (JSONExporter) Extension() string { return "json" }

// YAMLExporter writes YAML with two-space indentation.
type YAMLExporter struct{}

func (YAMLExporter) Export(doc Document) ([]byte, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return []byte(sb.String()), nil
}

func (YAMLExporter) Extension() string { return "yaml" }
