package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/wally"
)

// Formatter writes command results.
type Formatter interface {
	FormatList(w io.Writer, result wally.ListResult) error
	FormatComment(w io.Writer, c wally.Comment) error
	FormatDelete(w io.Writer, id string) error
}

// NewFormatter returns the formatter for an --output value.
func NewFormatter(output string, quiet bool) (Formatter, error) {
	switch strings.ToLower(output) {
	case "", "human", "text":
		return &HumanFormatter{Quiet: quiet}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml", "yml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want human, json or yaml)", output)
	}
}

// HumanFormatter outputs a table.
type HumanFormatter struct {
	Quiet bool
}

const maxTextColumn = 50

func (f *HumanFormatter) FormatList(w io.Writer, result wally.ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No comments found")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range result.Items {
		if n := len([]rune(result.Items[i].Name)); n > maxNameLen {
			maxNameLen = n
		}
	}

	_, _ = fmt.Fprintf(w, "%-36s  %-19s  %-*s  %s\n", "ID", "CREATED", maxNameLen, "NAME", "COMMENT")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		strings.Repeat("-", 36), strings.Repeat("-", 19), strings.Repeat("-", maxNameLen), strings.Repeat("-", 7))

	for i := range result.Items {
		c := &result.Items[i]
		_, _ = fmt.Fprintf(w, "%-36s  %-19s  %-*s  %s\n",
			c.ID,
			c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			maxNameLen, c.Name,
			truncate(singleLine(c.Text), maxTextColumn),
		)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d comment(s)\n", len(result.Items))
		if result.NextCursor != "" {
			_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatComment(w io.Writer, c wally.Comment) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, c.ID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Added: %s\n", c.ID)
	_, _ = fmt.Fprintf(w, "  Name: %s\n", c.Name)
	_, _ = fmt.Fprintf(w, "  Created: %s\n", c.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, id string) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Deleted: %s\n", id)
	}
	return nil
}

// JSONFormatter outputs indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatList(w io.Writer, result wally.ListResult) error {
	if result.Items == nil {
		result.Items = []wally.Comment{}
	}
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatComment(w io.Writer, c wally.Comment) error {
	return writeJSON(w, c)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, id string) error {
	return writeJSON(w, map[string]string{"deleted": id})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAMLFormatter outputs YAML documents.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatList(w io.Writer, result wally.ListResult) error {
	items := make([]map[string]any, len(result.Items))
	for i := range result.Items {
		items[i] = yamlComment(result.Items[i])
	}

	out := map[string]any{"items": items}
	if result.NextCursor != "" {
		out["next_cursor"] = result.NextCursor
	}
	return writeYAML(w, out)
}

func (f *YAMLFormatter) FormatComment(w io.Writer, c wally.Comment) error {
	return writeYAML(w, yamlComment(c))
}

func (f *YAMLFormatter) FormatDelete(w io.Writer, id string) error {
	return writeYAML(w, map[string]string{"deleted": id})
}

// yamlComment renders the uuid as a plain string; yaml.v3 would otherwise
// encode the underlying byte array.
func yamlComment(c wally.Comment) map[string]any {
	return map[string]any{
		"id":         c.ID.String(),
		"name":       c.Name,
		"comment":    c.Text,
		"created_at": c.CreatedAt.UTC(),
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
