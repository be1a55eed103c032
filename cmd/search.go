package cmd

import (
	"fmt"
	"strings"
	"time"
	// LoadLocation must work on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/render"
	"github.com/securesentinels/vuln-search/search"
	"github.com/securesentinels/vuln-search/types"
)

func (a *app) newKeywordCommand() *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "keyword <word>",
		Short: "Search CVEs by keyword",
		Long: `Search CVEs whose description matches a keyword.

The backend only searches CVEs published in the last 100 days.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.keyword(strings.Join(args, " "), exportPath)
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "also save the results to this directory or .json.zst file")
	return cmd
}

func (a *app) keyword(keyword, exportPath string) error {
	view := render.View{Title: fmt.Sprintf("Keyword: %s", keyword), Mode: render.ModeRecords}

	res, err := search.New(a.client).Keyword(keyword)
	if err != nil {
		return a.fail(view, search.Message(err, search.PageKeyword), err)
	}

	view.Status = types.Status{Kind: types.StatusSuccess}
	view.Items = res.Records
	view.Message = res.Message
	if err = a.show(view); err != nil {
		return err
	}
	return a.save(res.Records, exportPath)
}

func (a *app) newCategoryCommand() *cobra.Command {
	var (
		exportPath string
		list       bool
	)
	cmd := &cobra.Command{
		Use:   "category [<name>]",
		Short: "Search CVEs by CWE category",
		Long: `Search CVEs by CWE category. Any of the predefined categories
(see --list) can be used, or a category of your own.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, c := range search.Categories {
					fmt.Fprintln(a.out, c)
				}
				return nil
			}
			return a.category(strings.Join(args, " "), exportPath)
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "also save the results to this directory or .json.zst file")
	cmd.Flags().BoolVar(&list, "list", false, "print the predefined categories")
	return cmd
}

func (a *app) category(category, exportPath string) error {
	view := render.View{
		Title: fmt.Sprintf("Category: %s", category),
		Mode:  render.ModeSummaries,
		Empty: render.NoVulns,
	}

	records, err := search.New(a.client).Category(category)
	if err != nil {
		return a.fail(view, search.Message(err, search.PageCategory), err)
	}

	view.Status = types.Status{Kind: types.StatusSuccess}
	view.Items = records
	if err = a.show(view); err != nil {
		return err
	}
	return a.save(records, exportPath)
}

func (a *app) newDateCommand() *cobra.Command {
	var exportPath, tz string
	cmd := &cobra.Command{
		Use:   "date <date>",
		Short: "Search CVEs published on a date",
		Long: `Search CVEs published on a date. The date may be written in most
common formats, e.g. 2024-03-07, 03/07/2024 or "Mar 7, 2024".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.date(strings.Join(args, " "), tz, exportPath)
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "also save the results to this directory or .json.zst file")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone the date is read in (default local)")
	return cmd
}

func (a *app) date(input, tz, exportPath string) error {
	view := render.View{Mode: render.ModeSummaries, Empty: render.NoVulns}

	loc := time.Local
	if tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return xerrors.Errorf("invalid time zone %q: %w", tz, err)
		}
	}

	date, records, err := search.New(a.client, search.WithLocation(loc)).Date(input)
	view.Title = fmt.Sprintf("Published on %s", date)
	if err != nil {
		return a.fail(view, search.Message(err, search.PageDate), err)
	}

	view.Status = types.Status{Kind: types.StatusSuccess}
	view.Items = records
	if err = a.show(view); err != nil {
		return err
	}
	return a.save(records, exportPath)
}
