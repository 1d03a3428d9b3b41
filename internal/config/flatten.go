package config

import (
	"maps"
	"slices"
	"strings"
)

// secretKeys are masked by list/get and always stored as strings by set.
var secretKeys = map[string]bool{
	"navigate.password": true,
	"http.token":        true,
}

// minHintLen is the shortest secret that keeps a 4-character hint when masked.
const minHintLen = 8

func IsSecretKey(key string) bool {
	return secretKeys[key]
}

// Flatten turns {"navigate": {"email": "a@b.c"}} into {"navigate.email": "a@b.c"}.
// Empty nested objects disappear.
func Flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	type frame struct {
		prefix string
		m      map[string]any
	}
	stack := []frame{{"", m}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for k, v := range f.m {
			if f.prefix != "" {
				k = f.prefix + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				stack = append(stack, frame{k, child})
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Unflatten is the inverse of Flatten.
func Unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, v := range flat {
		node := out
		rest := key
		for {
			head, tail, more := strings.Cut(rest, ".")
			if !more {
				node[head] = v
				break
			}
			child, ok := node[head].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[head] = child
			}
			node, rest = child, tail
		}
	}
	return out
}

// SortedKeys returns the keys of flat in lexical order.
func SortedKeys(flat map[string]any) []string {
	return slices.Sorted(maps.Keys(flat))
}

// Mask hides a secret value. Secrets of at least eight characters keep
// their last four as a hint; shorter ones are hidden entirely.
func Mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) < minHintLen:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

// MaskSecrets returns a copy of flat with every secret string masked.
func MaskSecrets(flat map[string]any) map[string]any {
	out := maps.Clone(flat)
	for k := range secretKeys {
		if s, ok := out[k].(string); ok {
			out[k] = Mask(s)
		}
	}
	return out
}
