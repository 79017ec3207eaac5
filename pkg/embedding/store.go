// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package embedding

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes what an embedded StoreItem represents. Only
// functions are embedded today; the field exists so a future module- or
// class-level embedding can share the same store format.
const KindFunction = "function"

// StoreItem is one embedded document as persisted on disk.
type StoreItem struct {
	Kind      string
	ID        string
	Module    string
	Name      string
	File      string
	Line      int
	Signature string
	Docstring string
	Text      string
	Embedding []float32
}

// Store is the full set of embeddings generated for one repository build,
// tagged with the engine and model versions that produced it so a stale
// store can be detected and regenerated.
type Store struct {
	Version       int
	EngineVersion string
	Model         string
	CreatedAt     string
	RepoRoot      string
	Items         []StoreItem
}

// NewStore creates an empty Store for repoRoot, built by engineVersion
// using model.
func NewStore(repoRoot, engineVersion, model, createdAt string) *Store {
	return &Store{
		Version:       1,
		EngineVersion: engineVersion,
		Model:         model,
		CreatedAt:     createdAt,
		RepoRoot:      repoRoot,
	}
}

// FromResult appends one StoreItem per successfully embedded Item in r
// (items with an empty Embedding, i.e. failed generations, are skipped).
func (s *Store) FromResult(r *Result) {
	for _, item := range r.Items {
		if len(item.Embedding) == 0 {
			continue
		}
		s.Items = append(s.Items, StoreItem{
			Kind:      KindFunction,
			ID:        item.ID,
			Module:    item.Module,
			Name:      item.Name,
			File:      item.File,
			Line:      item.Line,
			Signature: item.Signature,
			Docstring: item.Docstring,
			Text:      item.Text,
			Embedding: item.Embedding,
		})
	}
}

func escapeStoreValue(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\n", "\\n")
	v = strings.ReplaceAll(v, ",", "\\,")
	return v
}

func unescapeStoreValue(v string) string {
	var b strings.Builder
	escaped := false
	for _, r := range v {
		if escaped {
			switch r {
			case 'n':
				b.WriteByte('\n')
			case ',':
				b.WriteByte(',')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteRune(r)
			}
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitStoreRow(line string) []string {
	var fields []string
	var current strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			current.WriteRune(r)
			escaped = true
		case r == ',':
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// ToToon serializes the store into the same columnar convention
// pkg/toon uses for the structural IR: a `store:` header block followed
// by an `items[N]{...}:` table, one row per embedded document, with the
// embedding vector packed as pipe-separated fixed-precision floats.
func (s *Store) ToToon() string {
	var b strings.Builder
	fmt.Fprintf(&b, "store:\n")
	fmt.Fprintf(&b, "  version: %d\n", s.Version)
	fmt.Fprintf(&b, "  engine_version: %s\n", s.EngineVersion)
	fmt.Fprintf(&b, "  model: %s\n", s.Model)
	fmt.Fprintf(&b, "  created_at: %s\n", s.CreatedAt)
	fmt.Fprintf(&b, "  repo_root: %s\n", s.RepoRoot)
	fmt.Fprintf(&b, "  num_items: %d\n", len(s.Items))
	b.WriteString("\n")

	fmt.Fprintf(&b, "items[%d]{kind,id,module,name,file,lineno,signature,docstring,text,embedding}:\n", len(s.Items))
	for _, item := range s.Items {
		vecParts := make([]string, len(item.Embedding))
		for i, v := range item.Embedding {
			vecParts[i] = strconv.FormatFloat(float64(v), 'f', 6, 32)
		}
		row := strings.Join([]string{
			escapeStoreValue(item.Kind),
			escapeStoreValue(item.ID),
			escapeStoreValue(item.Module),
			escapeStoreValue(item.Name),
			escapeStoreValue(item.File),
			strconv.Itoa(item.Line),
			escapeStoreValue(item.Signature),
			escapeStoreValue(item.Docstring),
			escapeStoreValue(item.Text),
			escapeStoreValue(strings.Join(vecParts, "|")),
		}, ",")
		fmt.Fprintf(&b, "  %s\n", row)
	}
	b.WriteString("\n")
	return b.String()
}

// ParseStore parses the format written by Store.ToToon.
func ParseStore(text string) (*Store, error) {
	lines := strings.Split(text, "\n")
	header := map[string]string{}
	inHeader := false
	var itemFields []string
	var itemRows []string

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			inHeader = false
			continue
		}
		if trimmed == "store:" {
			inHeader = true
			continue
		}
		if inHeader && strings.Contains(trimmed, ":") && !strings.HasPrefix(trimmed, "items") {
			parts := strings.SplitN(trimmed, ":", 2)
			header[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			continue
		}
		if !strings.HasPrefix(line, " ") && strings.Contains(line, "[") && strings.Contains(line, "{") && strings.HasSuffix(line, ":") {
			fields, err := parseStoreTableHeader(line)
			if err != nil {
				return nil, err
			}
			itemFields = fields
			continue
		}
		if itemFields != nil && strings.HasPrefix(line, " ") {
			itemRows = append(itemRows, trimmed)
		}
	}

	repoRoot, ok := header["repo_root"]
	if !ok {
		return nil, fmt.Errorf("toon embedding store missing repo_root")
	}

	version := 1
	if v, ok := header["version"]; ok {
		parsed, err := strconv.Atoi(v)
		if err == nil {
			version = parsed
		}
	}

	store := &Store{
		Version:       version,
		EngineVersion: header["engine_version"],
		Model:         header["model"],
		CreatedAt:     header["created_at"],
		RepoRoot:      repoRoot,
	}

	for _, row := range itemRows {
		values := splitStoreRow(row)
		get := func(name string) string {
			for i, f := range itemFields {
				if f == name && i < len(values) {
					return unescapeStoreValue(values[i])
				}
			}
			return ""
		}

		line := 0
		if v := get("lineno"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				line = parsed
			}
		}

		var embedding []float32
		if raw := get("embedding"); raw != "" {
			for _, part := range strings.Split(raw, "|") {
				if part == "" {
					continue
				}
				f, err := strconv.ParseFloat(part, 32)
				if err != nil {
					continue
				}
				embedding = append(embedding, float32(f))
			}
		}

		store.Items = append(store.Items, StoreItem{
			Kind:      get("kind"),
			ID:        get("id"),
			Module:    get("module"),
			Name:      get("name"),
			File:      get("file"),
			Line:      line,
			Signature: get("signature"),
			Docstring: get("docstring"),
			Text:      get("text"),
			Embedding: embedding,
		})
	}

	return store, nil
}

func parseStoreTableHeader(line string) ([]string, error) {
	trimmed := strings.TrimSpace(line)
	bracketStart := strings.Index(trimmed, "[")
	if bracketStart < 0 {
		return nil, fmt.Errorf("malformed table header: %q", line)
	}
	rest := trimmed[bracketStart:]
	braceStart := strings.Index(rest, "{")
	braceEnd := strings.Index(rest, "}")
	if braceStart < 0 || braceEnd < 0 || braceEnd < braceStart {
		return nil, fmt.Errorf("malformed table header: %q", line)
	}
	fieldsStr := rest[braceStart+1 : braceEnd]
	var fields []string
	for _, f := range strings.Split(fieldsStr, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields, nil
}
