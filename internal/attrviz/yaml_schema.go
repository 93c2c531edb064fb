package attrviz

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var settingsSections = map[string][]string{
	"binning": {"method", "scope"},
	"style":   {"font_sizes", "color_positions", "darken_below", "colormap"},
	"render":  {"title", "dark_background", "score_precision", "cell_width"},
	"ingest":  {"normalize_nfc"},
}

var settingsSequences = map[string]bool{
	"style.font_sizes":      true,
	"style.color_positions": true,
}

type schemaError struct {
	Path    string
	Line    int
	Message string
}

func (e schemaError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d field %s: %s", e.Line, e.Path, e.Message)
	}
	return fmt.Sprintf("field %s: %s", e.Path, e.Message)
}

func formatSchemaErrors(path string, errs []schemaError) string {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Line != errs[j].Line {
			return errs[i].Line < errs[j].Line
		}
		return errs[i].Path < errs[j].Path
	})
	var b strings.Builder
	b.WriteString("schema validation failed for ")
	b.WriteString(path)
	for _, e := range errs {
		b.WriteString("\n- ")
		b.WriteString(e.String())
	}
	return b.String()
}

// validateSettingsYAML checks key names and shapes only; values are checked
// after decoding. Every key is optional.
func validateSettingsYAML(root *yaml.Node) []schemaError {
	if root == nil || len(root.Content) == 0 {
		return []schemaError{{Path: "settings", Message: "empty YAML document"}}
	}
	errList := []schemaError{}
	top := []string{"num_bins", "default_style"}
	for section := range settingsSections {
		top = append(top, section)
	}
	m := validateMapNode(root.Content[0], "settings", top, &errList)
	for section, keys := range settingsSections {
		node, ok := m[section]
		if !ok {
			continue
		}
		fields := validateMapNode(node, "settings."+section, keys, &errList)
		for key, v := range fields {
			path := section + "." + key
			if settingsSequences[path] {
				validateScalarSequence(v, "settings."+path, &errList)
			} else if v.Kind != yaml.ScalarNode {
				errList = append(errList, schemaError{Path: "settings." + path, Line: v.Line, Message: "must be a scalar"})
			}
		}
	}
	for _, key := range []string{"num_bins", "default_style"} {
		if v, ok := m[key]; ok && v.Kind != yaml.ScalarNode {
			errList = append(errList, schemaError{Path: "settings." + key, Line: v.Line, Message: "must be a scalar"})
		}
	}
	return errList
}

func validateMapNode(node *yaml.Node, path string, allowed []string, errs *[]schemaError) map[string]*yaml.Node {
	result := map[string]*yaml.Node{}
	if node.Kind != yaml.MappingNode {
		*errs = append(*errs, schemaError{Path: path, Line: node.Line, Message: "must be a mapping/object"})
		return result
	}
	allowedSet := map[string]bool{}
	for _, a := range allowed {
		allowedSet[a] = true
	}
	seen := map[string]int{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := node.Content[i]
		v := node.Content[i+1]
		key := k.Value
		if prevLine, ok := seen[key]; ok {
			*errs = append(*errs, schemaError{Path: path + "." + key, Line: k.Line, Message: fmt.Sprintf("duplicate key (already defined at line %d)", prevLine)})
			continue
		}
		seen[key] = k.Line
		if !allowedSet[key] {
			*errs = append(*errs, schemaError{Path: path + "." + key, Line: k.Line, Message: "unknown field"})
			continue
		}
		result[key] = v
	}
	return result
}

func validateScalarSequence(node *yaml.Node, path string, errs *[]schemaError) {
	if node.Kind != yaml.SequenceNode {
		*errs = append(*errs, schemaError{Path: path, Line: node.Line, Message: "must be a sequence/array"})
		return
	}
	for i, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			*errs = append(*errs, schemaError{Path: fmt.Sprintf("%s[%d]", path, i), Line: item.Line, Message: "must be a scalar"})
		}
	}
}

func yamlNodeToValue(node *yaml.Node) interface{} {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil
		}
		return yamlNodeToValue(node.Content[0])
	case yaml.MappingNode:
		m := make(map[string]interface{}, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			m[node.Content[i].Value] = yamlNodeToValue(node.Content[i+1])
		}
		return m
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(node.Content))
		for _, c := range node.Content {
			out = append(out, yamlNodeToValue(c))
		}
		return out
	case yaml.AliasNode:
		return yamlNodeToValue(node.Alias)
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!bool":
			return strings.EqualFold(node.Value, "true")
		case "!!int":
			var i int64
			if _, err := fmt.Sscan(node.Value, &i); err == nil {
				return i
			}
			return node.Value
		case "!!float":
			var f float64
			if _, err := fmt.Sscan(node.Value, &f); err == nil {
				return f
			}
			return node.Value
		case "!!null":
			return nil
		default:
			return node.Value
		}
	default:
		return node.Value
	}
}
