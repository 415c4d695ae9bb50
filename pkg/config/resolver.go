package config

import (
	"fmt"
	"io"
	"strings"

	"cuelang.org/go/cue"
	"github.com/alecthomas/kong"
)

// KongLoader is a kong.ConfigurationLoader that reads a YAML settings
// file and resolves flags from it.
func KongLoader(r io.Reader) (kong.Resolver, error) {
	val, err := LoadValueFromReader(r)
	if err != nil {
		return nil, err
	}
	return Resolver(val), nil
}

// Resolver returns a kong resolver backed by a CUE value.
//
// A flag named max-depth on the serve command is looked up first at
// serve.max_depth, then at max_depth, then at codec.max_depth. Absent
// paths leave the flag alone.
func Resolver(val cue.Value) kong.Resolver {
	return kong.ResolverFunc(func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		name := strings.ReplaceAll(flag.Name, "-", "_")

		var candidates []string
		if cmd := commandPath(parent); cmd != "" {
			candidates = append(candidates, cmd+"."+name)
		}
		candidates = append(candidates, name, "codec."+name)

		for _, path := range candidates {
			v := val.LookupPath(cue.ParsePath(path))
			if !v.Exists() {
				continue
			}
			return flagValue(v, path)
		}
		return nil, nil
	})
}

func commandPath(parent *kong.Path) string {
	if parent == nil {
		return ""
	}
	var parts []string
	for n := parent.Node(); n != nil && n.Type == kong.CommandNode; n = n.Parent {
		parts = append([]string{strings.ReplaceAll(n.Name, "-", "_")}, parts...)
	}
	return strings.Join(parts, ".")
}

// flagValue renders a CUE value as flag text. Lists are joined with
// commas, kong's default separator.
func flagValue(v cue.Value, path string) (any, error) {
	switch v.IncompleteKind() {
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		var items []string
		for iter.Next() {
			item, err := scalarText(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
			items = append(items, item)
		}
		return strings.Join(items, ","), nil
	case cue.StructKind:
		return nil, fmt.Errorf("config %s: expected a scalar or list, got a struct", path)
	}

	s, err := scalarText(v)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

func scalarText(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return "", err
		}
		return fmt.Sprint(b), nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		// Integers keep their exact decimal form
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("unsupported value kind %s", v.IncompleteKind())
}
