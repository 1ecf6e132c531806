package format

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type yamlFormat struct{}

// YAML returns the YAML format built on yaml.v3 nodes, which keep mapping
// order in both directions. Sequences of scalars are written in flow style.
func YAML() Format {
	return yamlFormat{}
}

func (yamlFormat) ContentType() string { return ContentTypeYAML }

func (yamlFormat) Aliases() []string {
	return []string{"yaml", "yml", "application/x-yaml", "text/yaml"}
}

func (yamlFormat) Marshal(tree any) ([]byte, error) {
	normalized, err := token.Normalize(tree)
	if err != nil {
		return nil, err
	}
	node, err := toYAMLNode(normalized)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeYAML, err)
	}
	if err := enc.Close(); err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeYAML, err)
	}
	return buf.Bytes(), nil
}

func toYAMLNode(tree any) (*yaml.Node, error) {
	switch v := tree.(type) {
	case *token.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.Range(func(key string, value any) bool {
			var child *yaml.Node
			child, err = toYAMLNode(value)
			if err != nil {
				return false
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
			return true
		})
		return node, err
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		flow := true
		for _, item := range v {
			child, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			flow = flow && child.Kind == yaml.ScalarNode
			node.Content = append(node.Content, child)
		}
		if flow {
			node.Style = yaml.FlowStyle
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, merr.WrapErrFormatFailed(ContentTypeYAML, err)
		}
		if node.Kind != yaml.ScalarNode {
			return nil, merr.WrapErrUnsupportedType(fmt.Sprintf("%T", v), "yaml scalar")
		}
		return node, nil
	}
}

func (yamlFormat) Unmarshal(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeYAML, err)
	}
	if doc.Kind == 0 {
		return nil, merr.WrapErrFormatFailed(ContentTypeYAML, errors.New("empty document"))
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		obj := token.NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(node.Content[i].Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case yaml.ScalarNode:
		// Timestamps stay text, the tree has no time node.
		if node.ShortTag() == "!!timestamp" {
			return node.Value, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, merr.WrapErrFormatFailed(ContentTypeYAML, err)
		}
		return v, nil
	default:
		return nil, merr.WrapErrStructuralMismatch("yaml node", node.Kind)
	}
}
