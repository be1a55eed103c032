package cmd

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/render"
	"github.com/securesentinels/vuln-search/selector"
	"github.com/securesentinels/vuln-search/utils"
)

type vendorFlags struct {
	vendor      string
	product     string
	version     string
	interactive bool
	exportPath  string
}

func (a *app) newVendorCommand() *cobra.Command {
	var f vendorFlags
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Search CVEs by vendor, product and version",
		Long: `Search CVEs affecting one version of a vendor's product.

Without --vendor the known vendors are listed, without --product the vendor's
products, and without --version the product's versions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := selector.New(a.client, selector.WithOnChange(func(st selector.State) {
				if f.interactive && (st.Vendor.Loading || st.Product.Loading || st.Version.Loading || st.Searching) {
					a.showLoading()
				}
			}))
			if f.interactive {
				return a.vendorInteractive(c, f.exportPath)
			}
			return a.vendor(c, f)
		},
	}
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "vendor name")
	cmd.Flags().StringVar(&f.product, "product", "", "product name")
	cmd.Flags().StringVar(&f.version, "version", "", "product version")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "choose vendor, product and version from numbered lists")
	cmd.Flags().StringVar(&f.exportPath, "export", "", "also save the results to this directory or .json.zst file")
	return cmd
}

func (a *app) vendor(c *selector.Controller, f vendorFlags) error {
	switch {
	case f.vendor == "" && f.product != "":
		return xerrors.Errorf("--product requires --vendor: %w", selector.ErrFieldDisabled)
	case f.product == "" && f.version != "":
		return xerrors.Errorf("--version requires --product: %w", selector.ErrFieldDisabled)
	}

	if f.vendor == "" {
		c.LoadVendors()
		c.Wait()
		return a.printOptions("Vendors", c.State().Vendor)
	}

	c.SetVendor(f.vendor)
	c.Wait()
	if f.product == "" {
		return a.printOptions("Products of "+f.vendor, c.State().Product)
	}

	if err := c.SetProduct(f.product); err != nil {
		return err
	}
	c.Wait()
	if f.version == "" {
		return a.printOptions("Versions of "+f.product, c.State().Version)
	}

	if err := c.SetVersion(f.version); err != nil {
		return err
	}
	return a.vendorSearch(c, f.exportPath)
}

func (a *app) vendorSearch(c *selector.Controller, exportPath string) error {
	if err := c.Search(); err != nil {
		return err
	}
	c.Wait()

	st := c.State()
	view := render.View{
		Title:  fmt.Sprintf("%s %s %s", st.Vendor.Value, st.Product.Value, st.Version.Value),
		Mode:   render.ModeSummaries,
		Items:  st.Results,
		Status: st.Status(),
		Empty:  render.NoVulns,
	}
	if err := a.show(view); err != nil {
		return err
	}
	if st.Err != "" {
		return errReported
	}
	return a.save(st.Results, exportPath)
}

func (a *app) printOptions(title string, field selector.Field) error {
	if field.Err != "" {
		return a.fail(render.View{}, field.Err, nil)
	}
	if len(field.Options) == 0 {
		fmt.Fprintf(a.out, "%s: none\n", title)
		return nil
	}
	fmt.Fprintf(a.out, "%s:\n", title)
	for i, o := range field.Options {
		fmt.Fprintf(a.out, "%3d) %s\n", i+1, o)
	}
	return nil
}

func (a *app) vendorInteractive(c *selector.Controller, exportPath string) error {
	scanner := bufio.NewScanner(a.in)

	c.LoadVendors()
	c.Wait()
	vendor, err := a.choose(scanner, "vendor", c.State().Vendor)
	if err != nil {
		return err
	}
	c.SetVendor(vendor)
	c.Wait()

	product, err := a.choose(scanner, "product", c.State().Product)
	if err != nil {
		return err
	}
	if err = c.SetProduct(product); err != nil {
		return err
	}
	c.Wait()

	version, err := a.choose(scanner, "version", c.State().Version)
	if err != nil {
		return err
	}
	if err = c.SetVersion(version); err != nil {
		return err
	}
	return a.vendorSearch(c, exportPath)
}

// choose lists the options of field and reads a selection, either by number
// or by name, until a valid one is entered.
func (a *app) choose(scanner *bufio.Scanner, name string, field selector.Field) (string, error) {
	if err := a.printOptions("Select a "+name, field); err != nil {
		return "", err
	}
	if len(field.Options) == 0 {
		return "", xerrors.Errorf("no %s to choose from", name)
	}

	prompt := isTerminal(a.in)
	for {
		if prompt {
			fmt.Fprintf(a.out, "%s> ", name)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", xerrors.Errorf("unable to read input: %w", err)
			}
			return "", xerrors.Errorf("no %s selected", name)
		}
		line := utils.TrimSpaceNewline(scanner.Text())
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(field.Options) {
			return field.Options[n-1], nil
		}
		if lo.Contains(field.Options, line) {
			return line, nil
		}
		fmt.Fprintf(a.out, "Unknown %s %q\n", name, line)
	}
}
