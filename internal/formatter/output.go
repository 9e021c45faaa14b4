package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/view"
)

// Format is a non-interactive output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatTree  Format = "tree"
)

// Formats lists the supported output formats in help order.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatTree}

// ParseFormat validates an --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("invalid output format %q: valid values are %s", s, strings.Join(names, ", "))
}

// Options configures Render.
type Options struct {
	Format  Format
	NoColor bool
	// Width is the table width; 0 detects the terminal width.
	Width int
	// Footer appends a "page x/y · N records" line to table output.
	Footer bool
}

// Render writes one page of a derived view in the requested format.
func Render(w io.Writer, res view.Result, opts Options) error {
	switch opts.Format {
	case FormatTable, "":
		_, err := io.WriteString(w, renderTable(res, opts))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pageObjects(res))
	case FormatYAML:
		return renderYAML(w, res)
	case FormatCSV:
		return renderCSV(w, res)
	case FormatTree:
		_, err := io.WriteString(w, RenderTree(res, Footer(res)))
		return err
	}
	return fmt.Errorf("unsupported output format %q", opts.Format)
}

// Footer summarizes the page position and total record count.
func Footer(res view.Result) string {
	noun := "records"
	if res.Total == 1 {
		noun = "record"
	}
	return fmt.Sprintf("page %s · %d %s", res.PageLabel(), res.Total, noun)
}

func renderTable(res view.Result, opts Options) string {
	headers := make([]string, len(res.Headers))
	for i, c := range res.Headers {
		headers[i] = c.Title()
	}
	rows := make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		rows[i] = formatRow(res.Headers, row)
	}
	out := RenderColumnarTable(headers, rows, ColumnarOptions{
		NoColor:        opts.NoColor,
		TotalWidth:     opts.Width,
		FirstRowNumber: res.Page*res.PageSize + 1,
		Hints:          HintsFor(res.Headers),
	})
	if opts.Footer {
		out += Footer(res) + "\n"
	}
	return out
}

func formatRow(cols []record.Column, row view.Row) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if i < len(row.Cells) {
			out[i] = FormatCell(c, row.Cells[i])
		}
	}
	return out
}

// pageObjects returns the page as ordered objects holding the identifier and
// every visible, present field.
func pageObjects(res view.Result) []orderedObject {
	out := make([]orderedObject, 0, len(res.Rows))
	for _, row := range res.Rows {
		obj := orderedObject{{Key: record.IDField, Value: row.Record.ID()}}
		for i, c := range res.Headers {
			if i >= len(row.Cells) || row.Cells[i] == nil {
				continue
			}
			v := row.Cells[i]
			if t, ok := v.(time.Time); ok {
				v = t.UTC().Format(time.RFC3339)
			}
			obj = append(obj, field{Key: c.Field, Value: v})
		}
		out = append(out, obj)
	}
	return out
}

type field struct {
	Key   string
	Value any
}

// orderedObject keeps schema column order in JSON and YAML output.
type orderedObject []field

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o orderedObject) node() (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range o {
		var v yaml.Node
		if err := v.Encode(f.Value); err != nil {
			return nil, err
		}
		if v.Kind == yaml.ScalarNode && v.Tag == "!!str" && strings.Contains(v.Value, "\n") {
			v.Style = yaml.LiteralStyle
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}, &v)
	}
	return n, nil
}

func renderYAML(w io.Writer, res view.Result) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, obj := range pageObjects(res) {
		n, err := obj.node()
		if err != nil {
			return err
		}
		seq.Content = append(seq.Content, n)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func renderCSV(w io.Writer, res view.Result) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(res.Headers)+1)
	header = append(header, record.IDField)
	for _, c := range res.Headers {
		header = append(header, c.Field)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range res.Rows {
		line := make([]string, 0, len(header))
		line = append(line, row.Record.ID())
		for i := range res.Headers {
			var v any
			if i < len(row.Cells) {
				v = row.Cells[i]
			}
			line = append(line, PlainValue(v))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
