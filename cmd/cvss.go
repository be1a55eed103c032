package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/cvss"
	"github.com/securesentinels/vuln-search/export"
	"github.com/securesentinels/vuln-search/render"
	"github.com/securesentinels/vuln-search/types"
	"github.com/securesentinels/vuln-search/utils"
)

const cvssHelp = `Commands:
  n              next page
  p              previous page
  <number>       go to page
  s <SEVERITY>   switch to LOW, MEDIUM, HIGH or CRITICAL
  q              quit`

func (a *app) newCVSSCommand() *cobra.Command {
	var (
		severity    string
		page        int
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "cvss",
		Short: "Page through CVEs by CVSS severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sev, err := types.ParseSeverity(severity)
			if err != nil {
				return err
			}
			c := cvss.New(a.client,
				cvss.WithSeverity(sev),
				cvss.WithPageSize(a.conf.PageSize),
				cvss.WithOnChange(func(st cvss.State) {
					if interactive && st.Loading {
						a.showLoading()
					}
				}),
			)
			if interactive {
				return a.cvssInteractive(c)
			}
			if err = c.SetPage(page); err != nil {
				return err
			}
			c.Wait()
			return a.showCVSS(c.State())
		},
	}
	cmd.Flags().StringVarP(&severity, "severity", "s", string(types.SeverityLow), "LOW, MEDIUM, HIGH or CRITICAL")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().Int("page-size", cvss.DefaultPageSize, "results per page")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "page through results interactively")

	cmd.AddCommand(a.newCVSSExportCommand())
	return cmd
}

func (a *app) newCVSSExportCommand() *cobra.Command {
	var (
		severity string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save every CVE of a severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sev, err := types.ParseSeverity(severity)
			if err != nil {
				return err
			}
			e := export.New(export.WithFs(a.fs), export.WithProgressOutput(a.progressOutput()))
			n, err := e.ExportSeverity(a.client, sev, output)
			if err != nil {
				return xerrors.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(a.out, "Exported %d %s vulnerabilities to %s\n", n, sev, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&severity, "severity", "s", "", "LOW, MEDIUM, HIGH or CRITICAL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory, or a file ending in "+export.BundleExt)
	_ = cmd.MarkFlagRequired("severity")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) showCVSS(st cvss.State) error {
	view := render.View{
		Title:  fmt.Sprintf("Severity %s, page %d of %d", st.Severity, st.Page, st.TotalPages()),
		Mode:   render.ModeSummaries,
		Items:  st.Items,
		Status: st.Status(),
		Empty:  render.NoVulns,
	}
	if err := a.show(view); err != nil {
		return err
	}
	if a.flags.htmlPath == "" && len(st.PageButtons()) > 0 {
		fmt.Fprintf(a.out, "Pages: %s\n", pageList(st.PageButtons(), st.Page))
	}
	if st.Err != "" {
		return errReported
	}
	return nil
}

// pageList renders the page numbers with the current one bracketed.
func pageList(pages []int, current int) string {
	return strings.Join(lo.Map(pages, func(p int, _ int) string {
		if p == current {
			return fmt.Sprintf("[%d]", p)
		}
		return strconv.Itoa(p)
	}), " ")
}

func (a *app) cvssInteractive(c *cvss.Controller) error {
	prompt := isTerminal(a.in)
	c.Refresh()
	c.Wait()
	_ = a.showCVSS(c.State())
	fmt.Fprintln(a.out, cvssHelp)

	scanner := bufio.NewScanner(a.in)
	for {
		if prompt {
			fmt.Fprint(a.out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := utils.TrimSpaceNewline(scanner.Text())
		st := c.State()

		var err error
		switch fields := strings.Fields(line); {
		case line == "":
			continue
		case line == "q":
			return nil
		case line == "n":
			if st.Page >= st.TotalPages() {
				fmt.Fprintln(a.out, "Already on the last page.")
				continue
			}
			err = c.SetPage(st.Page + 1)
		case line == "p":
			if st.Page <= 1 {
				fmt.Fprintln(a.out, "Already on the first page.")
				continue
			}
			err = c.SetPage(st.Page - 1)
		case fields[0] == "s" && len(fields) == 2:
			var sev types.Severity
			if sev, err = types.ParseSeverity(fields[1]); err == nil {
				err = c.SetFilter(sev)
			}
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil || !lo.Contains(st.PageButtons(), n) {
				fmt.Fprintf(a.out, "Unknown command %q\n%s\n", line, cvssHelp)
				continue
			}
			err = c.SetPage(n)
		}
		if err != nil {
			fmt.Fprintln(a.out, err)
			continue
		}
		c.Wait()
		_ = a.showCVSS(c.State())
	}
	if err := scanner.Err(); err != nil {
		return xerrors.Errorf("unable to read input: %w", err)
	}
	return nil
}
