package cmd

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/charmbracelet/glamour"
	"github.com/etnz/irr"
	"github.com/etnz/irr/config"
	"github.com/etnz/irr/renderer"
)

// outputFlags are the output flags shared by calculation commands.
type outputFlags struct {
	json    bool
	query   string
	monthly bool
}

func (o *outputFlags) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&o.json, "json", false, "Print the calculation as JSON")
	f.StringVar(&o.query, "q", "", "JSONPath query on the JSON calculation, e.g. '$.metrics.rate'. Implies -json.")
	f.BoolVar(&o.monthly, "monthly", false, "List every month of the growth trajectory")
}

// print writes c to w as configured.
func (o *outputFlags) print(w io.Writer, cfg *config.Config, c *irr.Calculation) error {
	if o.json || o.query != "" {
		return printJSON(w, c, o.query)
	}
	report := renderer.NewReport(c, renderer.Options{Monthly: o.monthly || cfg.Report.Monthly})
	return printMarkdown(w, renderer.RenderCalculation(report), cfg.Report.WordWrap)
}

// printJSON writes v as indented JSON, or the result of the JSONPath query on it.
func printJSON(w io.Writer, v any, query string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var out any = json.RawMessage(data)
	if query != "" {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		if out, err = jsonpath.Get(query, doc); err != nil {
			return fmt.Errorf("invalid query %q: %w", query, err)
		}
		// a query on a single value returns it in a list of one.
		if list, ok := out.([]any); ok && len(list) == 1 {
			out = list[0]
		}
		if s, ok := out.(string); ok {
			_, err := fmt.Fprintln(w, s)
			return err
		}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	_, err = w.Write(b.Bytes())
	return err
}

// printMarkdown renders md for the terminal.
func printMarkdown(w io.Writer, md string, wordWrap int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
