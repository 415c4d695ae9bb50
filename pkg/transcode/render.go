package transcode

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/cbroglie/mustache"
	"github.com/epithet-ssh/bencode/pkg/bencode"
)

// Render expands a mustache template against v. Dictionaries become
// sections addressable by key, lists iterate, and byte strings that are
// not valid UTF-8 render as lowercase hex. Dictionary keys follow the
// same rule, so a binary key is addressed by its hex form.
func Render(template string, v bencode.Value) (string, error) {
	out, err := mustache.Render(template, templateData(v))
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}

func templateData(v bencode.Value) any {
	switch v.Kind() {
	case bencode.KindInteger:
		n, _ := v.Int()
		return n
	case bencode.KindString:
		b, _ := v.Bytes()
		return templateText(b)
	case bencode.KindList:
		items, _ := v.List()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = templateData(item)
		}
		return out
	case bencode.KindDictionary:
		entries, _ := v.Dict()
		out := make(map[string]any, len(entries))
		for _, e := range entries {
			out[templateText(e.Key)] = templateData(e.Value)
		}
		return out
	}
	return nil
}

func templateText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return hex.EncodeToString(b)
}
