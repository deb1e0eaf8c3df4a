package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColumnEntry maps a lake table column name to its short key.
type ColumnEntry struct {
	Name string
	Key  string
}

// ColumnMap is a YAML mapping of column name to key that keeps file order.
type ColumnMap []ColumnEntry

func (m *ColumnMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: column group must be a mapping of name: key", value.Line)
	}
	out := make(ColumnMap, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var entry ColumnEntry
		if err := value.Content[i].Decode(&entry.Name); err != nil {
			return fmt.Errorf("line %d: column name: %w", value.Content[i].Line, err)
		}
		if err := value.Content[i+1].Decode(&entry.Key); err != nil {
			return fmt.Errorf("line %d: column %s: %w", value.Content[i+1].Line, entry.Name, err)
		}
		out = append(out, entry)
	}
	*m = out
	return nil
}

func (m ColumnMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
		)
	}
	return node, nil
}
