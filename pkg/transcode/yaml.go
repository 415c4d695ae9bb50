package transcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"gopkg.in/yaml.v3"
)

// WriteYAML writes v as a YAML document. Byte strings that are not valid
// UTF-8 are tagged !!binary.
func WriteYAML(w io.Writer, v bencode.Value) error {
	node, err := toYAMLNode(v)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

func toYAMLNode(v bencode.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case bencode.KindInteger:
		n, _ := v.Int()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(n, 10)}, nil

	case bencode.KindString:
		b, _ := v.Bytes()
		return stringNode(b), nil

	case bencode.KindList:
		items, _ := v.List()
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range items {
			child, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	case bencode.KindDictionary:
		entries, _ := v.Dict()
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range entries {
			child, err := toYAMLNode(e.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, stringNode(e.Key), child)
		}
		return node, nil
	}
	return nil, fmt.Errorf("cannot convert %s value to YAML", v.Kind())
}

func stringNode(b []byte) *yaml.Node {
	if utf8.Valid(b) {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(b)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(b)}
}

// FromYAML builds a value from a single YAML document. Mapping order is
// kept. Integers, strings and !!binary scalars are accepted; floats,
// booleans, nulls and timestamps are rejected with ErrUnsupported.
func FromYAML(data []byte) (bencode.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return bencode.Value{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return bencode.Value{}, errors.New("failed to parse YAML: empty document")
	}
	return fromYAMLNode(doc.Content[0], 0)
}

func fromYAMLNode(n *yaml.Node, depth int) (bencode.Value, error) {
	if depth > maxDepth {
		return bencode.Value{}, fmt.Errorf("YAML nesting exceeds %d levels", maxDepth)
	}

	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias, depth+1)

	case yaml.ScalarNode:
		return fromYAMLScalar(n)

	case yaml.SequenceNode:
		items := make([]bencode.Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := fromYAMLNode(child, depth+1)
			if err != nil {
				return bencode.Value{}, err
			}
			items = append(items, item)
		}
		return bencode.List(items...), nil

	case yaml.MappingNode:
		entries := make([]bencode.Entry, 0, len(n.Content)/2)
		seen := make(map[string]struct{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, err := yamlKey(n.Content[i])
			if err != nil {
				return bencode.Value{}, err
			}
			if _, dup := seen[string(key)]; dup {
				return bencode.Value{}, fmt.Errorf("line %d: duplicate mapping key %q", n.Content[i].Line, key)
			}
			seen[string(key)] = struct{}{}

			val, err := fromYAMLNode(n.Content[i+1], depth+1)
			if err != nil {
				return bencode.Value{}, err
			}
			entries = append(entries, bencode.Entry{Key: key, Value: val})
		}
		return bencode.Dict(entries...), nil
	}
	return bencode.Value{}, fmt.Errorf("line %d: unexpected YAML node", n.Line)
}

func fromYAMLScalar(n *yaml.Node) (bencode.Value, error) {
	switch n.ShortTag() {
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return bencode.Value{}, fmt.Errorf("line %d: %w: %v", n.Line, ErrUnsupported, err)
		}
		return bencode.Int(i), nil
	case "!!str":
		return bencode.Str(n.Value), nil
	case "!!binary":
		b, err := decodeBinary(n.Value)
		if err != nil {
			return bencode.Value{}, fmt.Errorf("line %d: invalid !!binary: %w", n.Line, err)
		}
		return bencode.Bytes(b), nil
	}
	return bencode.Value{}, fmt.Errorf("line %d: %w: %s %q", n.Line, ErrUnsupported, n.ShortTag(), n.Value)
}

// yamlKey accepts any scalar key by its literal text, except !!binary
// which is decoded.
func yamlKey(n *yaml.Node) ([]byte, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: mapping key must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!binary" {
		b, err := decodeBinary(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid !!binary key: %w", n.Line, err)
		}
		return b, nil
	}
	return []byte(n.Value), nil
}

func decodeBinary(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	return base64.StdEncoding.DecodeString(s)
}
