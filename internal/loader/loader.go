// Package loader reads technology and project definitions from a dataset
// directory (JSON, CSV, or TSV files) into raw graph nodes, and watches the
// directory for changes to drive reload-token invalidation.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashpool/techplan/internal/graph"
)

// supportedExtensions lists the dataset file formats the loader parses.
var supportedExtensions = map[string]bool{
	".json": true,
	".csv":  true,
	".tsv":  true,
}

// Report is the outcome of one directory load. Errors block planning the
// same way validation errors do; warnings never block.
type Report struct {
	Nodes    map[string]graph.Node
	Warnings []string
	Errors   []string
}

// HasErrors reports whether any record or file failed to load.
func (r Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Loader reads all supported files from a dataset directory.
type Loader struct {
	Dir string
}

// Load parses every supported file in the directory. Files are visited in
// name order so repeated loads of the same directory are deterministic.
// Per-file parse failures and per-record shape problems are collected in
// the report; only an unreadable directory is an error.
func (l Loader) Load() (Report, error) {
	report := Report{Nodes: make(map[string]graph.Node)}

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return report, fmt.Errorf("loader: read dataset dir %s: %w", l.Dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !supportedExtensions[ext] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Ignoring unsupported file: %s", name))
			continue
		}

		path := filepath.Join(l.Dir, name)
		records, err := parseFile(path, ext)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to parse %s: %v", name, err))
			continue
		}

		for _, record := range records {
			node, err := buildNode(record, name)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			if _, exists := report.Nodes[node.ID]; exists {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("Duplicate node id %s in %s; keeping first occurrence", node.ID, name))
				continue
			}
			report.Nodes[node.ID] = node
		}
	}

	return report, nil
}

func parseFile(path, ext string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if ext == ".json" {
		return parseJSON(data)
	}

	comma := ','
	if ext == ".tsv" {
		comma = '\t'
	}
	return parseDelimited(data, comma)
}

// parseJSON accepts either a single record object or an array of records.
func parseJSON(data []byte) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return []map[string]any{record}, nil
}

func parseDelimited(data []byte, comma rune) ([]map[string]any, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(row) {
				record[key] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// reservedKeys are record fields consumed by node construction; everything
// else passes through as metadata.
var reservedKeys = map[string]bool{
	"dataName":     true,
	"friendlyName": true,
	"techCategory": true,
	"prereqs":      true,
	"dependencies": true,
	"type":         true,
	"node_type":    true,
	"nodeType":     true,
}

func buildNode(record map[string]any, source string) (graph.Node, error) {
	id := firstString(record, "dataName", "id", "name")
	if id == "" {
		return graph.Node{}, fmt.Errorf("Record in %s is missing an identifier", source)
	}

	name := firstString(record, "friendlyName", "label")
	if name == "" {
		name = id
	}
	category := firstString(record, "techCategory", "category")
	prereqs := normalizePrereqs(firstValue(record, "prereqs", "dependencies"))

	metadata := make(map[string]any)
	for key, value := range record {
		if !reservedKeys[key] {
			metadata[key] = value
		}
	}

	return graph.Node{
		ID:           id,
		FriendlyName: name,
		Type:         inferNodeType(record, source),
		Category:     category,
		Prereqs:      prereqs,
		Metadata:     metadata,
	}, nil
}

func firstValue(record map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// normalizePrereqs accepts a list of ids or a comma-separated string.
func normalizePrereqs(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range v {
			s := fmt.Sprintf("%v", item)
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		var out []string
		for _, item := range v {
			if strings.TrimSpace(item) != "" {
				out = append(out, item)
			}
		}
		return out
	default:
		return nil
	}
}

// inferNodeType resolves a record's type from an explicit field, the source
// file name, or project-only marker fields, defaulting to tech.
func inferNodeType(record map[string]any, source string) graph.NodeType {
	if explicit, ok := firstValue(record, "type", "node_type", "nodeType").(string); ok {
		normalized := strings.ToLower(strings.TrimSpace(explicit))
		if strings.HasPrefix(normalized, "proj") {
			return graph.NodeTypeProject
		}
		if strings.HasPrefix(normalized, "tech") {
			return graph.NodeTypeTech
		}
	}

	stem := strings.ToLower(strings.TrimSuffix(source, filepath.Ext(source)))
	if strings.Contains(stem, "project") {
		return graph.NodeTypeProject
	}
	if record["AI_projectRole"] != nil {
		return graph.NodeTypeProject
	}
	return graph.NodeTypeTech
}
