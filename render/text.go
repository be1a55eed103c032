package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/securesentinels/vuln-search/types"
)

type Text struct {
	w   io.Writer
	red *color.Color
}

func NewText(w io.Writer) *Text {
	return &Text{w: w, red: color.New(color.FgRed)}
}

func (t *Text) Render(v View) error {
	switch v.Status.Kind {
	case types.StatusIdle:
		return nil
	case types.StatusLoading:
		_, err := fmt.Fprintln(t.w, LoadingText)
		return err
	case types.StatusFailure:
		if _, err := t.red.Fprintln(t.w, v.Status.Message); err != nil {
			return err
		}
		if len(v.Items) == 0 {
			return nil
		}
	}

	if v.Message != "" {
		_, err := fmt.Fprintln(t.w, v.Message)
		return err
	}
	if len(v.Items) == 0 {
		_, err := fmt.Fprintln(t.w, v.emptyText())
		return err
	}

	if v.Title != "" {
		if _, err := fmt.Fprintf(t.w, "%s\n\n", v.Title); err != nil {
			return err
		}
	}
	if v.Mode == ModeSummaries {
		return t.summaries(v.Items)
	}
	return t.records(v.Items)
}

func (t *Text) records(items []types.Record) error {
	for i, item := range items {
		if i > 0 {
			if _, err := fmt.Fprintln(t.w); err != nil {
				return err
			}
		}
		table := tablewriter.NewWriter(t.w)
		table.SetHeader([]string{"Attribute", "Value"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, row := range Rows(item) {
			table.Append([]string{row.Key, row.Value})
		}
		table.Render()
	}
	return nil
}

func (t *Text) summaries(items []types.Record) error {
	table := tablewriter.NewWriter(t.w)
	table.SetHeader([]string{"CVE", "Description", "Link"})
	table.SetAutoFormatHeaders(false)
	table.SetRowLine(true)
	table.SetColWidth(80)
	for _, item := range items {
		s := Summarize(item)
		table.Append([]string{s.ID, s.Description, s.Link})
	}
	table.Render()
	return nil
}
