package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// section groups options under one TOML table; name is empty for top level
type section struct {
	name string
	opts []ConfigOption
}

// groupOptions splits dotted keys into tables, preserving first-seen order
func groupOptions(opts []ConfigOption) []section {
	out := []section{{}}
	index := map[string]int{"": 0}
	for _, o := range opts {
		name, key := "", o.Key
		if before, after, ok := strings.Cut(o.Key, "."); ok {
			name, key = before, after
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, section{name: name})
		}
		out[i].opts = append(out[i].opts, ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return out
}

// RenderDefaultTOML renders a commented TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var lines []string
	lines = append(lines, "# topviews configuration (TOML)", "")
	for _, sec := range groupOptions(GetConfigOptions()) {
		if len(sec.opts) == 0 {
			continue
		}
		if sec.name != "" {
			lines = append(lines, "["+sec.name+"]")
		}
		for _, o := range sec.opts {
			lines = appendOption(lines, o)
		}
	}
	return strings.Join(lines, "\n")
}

// UpdateTOML adds missing defaults to an existing TOML string and comments
// out keys no longer in the schema. Missing keys go into their existing
// table when there is one, and top-level keys stay above the first table.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	ends := map[string]int{"": 0}
	current := ""
	changed := false
	var out []string

	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
			out = append(out, line)
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			current = strings.TrimSpace(trim[1 : len(trim)-1])
			out = append(out, line)
		default:
			key, ok := parseTOMLKey(line)
			if ok && current != "" {
				key = current + "." + key
			}
			if ok && !known[key] {
				indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
				out = append(out,
					indent+"# OUTDATED: option removed from config schema",
					indent+"# "+strings.TrimLeft(line, " \t"))
				changed = true
				break
			}
			seen[key] = ok
			out = append(out, line)
		}
		if trim != "" || current == "" {
			ends[current] = len(out)
		}
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	type insertion struct {
		at    int
		lines []string
	}
	var inserts []insertion
	for _, sec := range groupOptions(missing) {
		if len(sec.opts) == 0 {
			continue
		}
		block := []string{"# Added by config update"}
		for _, o := range sec.opts {
			block = appendOption(block, o)
		}
		if at, ok := ends[sec.name]; ok {
			inserts = append(inserts, insertion{at: at, lines: block})
			continue
		}
		out = append(out, "", "["+sec.name+"]")
		out = append(out, block...)
	}
	slices.SortStableFunc(inserts, func(a, b insertion) int { return a.at - b.at })
	for i := len(inserts) - 1; i >= 0; i-- {
		in := inserts[i]
		out = append(out[:in.at], append(in.lines, out[in.at:]...)...)
	}
	return strings.Join(out, "\n"), true
}

func parseTOMLKey(line string) (string, bool) {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key[:1], `["'`) {
		return "", false
	}
	return key, true
}

func appendOption(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case time.Duration:
		return strconv.Quote(t.String())
	case []string:
		q := make([]string, len(t))
		for i, s := range t {
			q[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(q, ", ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}
