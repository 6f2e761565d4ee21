package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ParseTOML decodes a TOML settings document. Only a syntax error or a
// malformed top-level "lsp" table fails the whole document.
func ParseTOML(data []byte) (*File, error) {
	var doc struct {
		LSP map[string]interface{} `toml:"lsp"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Message: "TOML syntax error", Detail: err.Error()}
	}

	f := &File{}
	for id, raw := range doc.LSP {
		lsp, err := decodeTOMLServer(id, raw)
		f.add(id, lsp, err)
	}
	return f, nil
}

// decodeTOMLServer strictly decodes one "lsp.<id>" table.
func decodeTOMLServer(id string, raw interface{}) (LSP, error) {
	var lsp LSP

	table, ok := raw.(map[string]interface{})
	if !ok {
		return lsp, &ParseError{
			Message: "invalid server entry",
			Detail:  fmt.Sprintf("lsp.%s must be a table, got %T", id, raw),
		}
	}
	data, err := toml.Marshal(table)
	if err != nil {
		return lsp, &ParseError{Message: "invalid server entry", Detail: fmt.Sprintf("lsp.%s: %v", id, err)}
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&lsp); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return lsp, &ParseError{Message: "unknown settings key", Detail: fmt.Sprintf("lsp.%s: %s", id, strict.String())}
		}
		return lsp, &ParseError{Message: "invalid server entry", Detail: fmt.Sprintf("lsp.%s: %v", id, err)}
	}
	return lsp, nil
}

// ParseYAML decodes a YAML settings document. Only a syntax error or a
// malformed top-level "lsp" mapping fails the whole document.
func ParseYAML(data []byte) (*File, error) {
	var doc struct {
		LSP map[string]yaml.Node `yaml:"lsp"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ParseError{Message: "YAML syntax error", Detail: err.Error()}
	}

	f := &File{}
	for id, node := range doc.LSP {
		lsp, err := decodeYAMLServer(id, &node)
		f.add(id, lsp, err)
	}
	return f, nil
}

// decodeYAMLServer strictly decodes one "lsp.<id>" mapping. yaml.Node.Decode
// has no known-fields mode, so the node is re-encoded first.
func decodeYAMLServer(id string, node *yaml.Node) (LSP, error) {
	var lsp LSP

	data, err := yaml.Marshal(node)
	if err != nil {
		return lsp, &ParseError{Message: "invalid server entry", Detail: fmt.Sprintf("lsp.%s: %v", id, err)}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lsp); err != nil && !errors.Is(err, io.EOF) {
		return lsp, &ParseError{Message: "invalid server entry", Detail: fmt.Sprintf("lsp.%s (line %d): %v", id, node.Line, err)}
	}
	return lsp, nil
}
