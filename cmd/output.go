package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or calls table for the table format
func render(w io.Writer, format string, v any, table func(tw *tabwriter.Writer)) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()

	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()

	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func printKeyValue(tw *tabwriter.Writer, key string, value any) {
	fmt.Fprintf(tw, "%s:\t%v\n", key, value)
}
