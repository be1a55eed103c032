package cmd

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/export"
	"github.com/securesentinels/vuln-search/render"
	"github.com/securesentinels/vuln-search/types"
)

func (a *app) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file" + export.BundleExt + ">",
		Short: "Print the records of an exported bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showBundle(args[0])
		},
	}
}

func (a *app) showBundle(path string) error {
	if !export.IsBundle(path) {
		return xerrors.Errorf("%s is not a %s bundle", path, export.BundleExt)
	}
	records, err := export.LoadBundle(a.fs, path)
	if err != nil {
		return xerrors.Errorf("unable to read bundle: %w", err)
	}

	mode := render.ModeSummaries
	// bundles of keyword results hold arbitrary records
	if lo.SomeBy(records, func(r types.Record) bool { return r.ID() == "" }) {
		mode = render.ModeRecords
	}
	return a.show(render.View{
		Title:  path,
		Mode:   mode,
		Items:  records,
		Status: types.Status{Kind: types.StatusSuccess},
		Empty:  render.NoVulns,
	})
}
