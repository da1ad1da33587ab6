package types

import (
	"encoding/base64"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders the row as a mapping with keys in column order.
func (r Row) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			f.Value.yamlNode(),
		)
	}
	return node, nil
}

// MarshalYAML renders the value as a YAML scalar. Blobs are base64 text.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch v.kind {
	case KindText:
		n.Tag, n.Value = "!!str", v.text
	case KindInteger:
		n.Tag, n.Value = "!!int", strconv.FormatInt(v.i, 10)
	case KindReal:
		switch {
		case math.IsNaN(v.f):
			n.Tag, n.Value = "!!float", ".nan"
		case math.IsInf(v.f, 1):
			n.Tag, n.Value = "!!float", ".inf"
		case math.IsInf(v.f, -1):
			n.Tag, n.Value = "!!float", "-.inf"
		default:
			n.Tag, n.Value = "!!float", formatReal(v.f)
		}
	case KindBool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(v.b)
	case KindBlob:
		n.Tag, n.Value = "!!binary", base64.StdEncoding.EncodeToString(v.blob)
	default:
		n.Tag, n.Value = "!!null", "null"
	}
	return n
}
