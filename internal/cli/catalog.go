package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/errors"
)

func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect entity catalogs",
		Long:  `Inspect the configured entity catalog, or validate a catalog file.`,
	}
	cmd.AddCommand(c.catalogListCommand())
	cmd.AddCommand(c.catalogShowCommand())
	cmd.AddCommand(c.catalogValidateCommand())
	return cmd
}

func (c *CLI) catalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entity classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := c.loadCatalog()
			if err != nil {
				return err
			}
			writeClassTable(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func (c *CLI) catalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <class>",
		Short: "Show the rows and relations of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog()
			if err != nil {
				return err
			}
			return writeClass(cmd.OutOrStdout(), cat, args[0])
		},
	}
}

func (c *CLI) catalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.toml>",
		Short: "Check a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s classes\n",
				styleIconSuccess.Render(iconSuccess), args[0], StyleNumber.Render(strconv.Itoa(cat.Len())))
			return nil
		},
	}
}

func writeClassTable(w io.Writer, cat *catalog.Catalog) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	var rows [][]string
	for _, cl := range cat.Classes() {
		rows = append(rows, []string{
			cl.ID,
			strconv.Itoa(len(cl.Fields)),
			strconv.Itoa(len(cl.Relations)),
			cl.Description,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Class", "Fields", "Relations", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
	if cat.Name != "" {
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %s: %d classes", cat.Name, cat.Len())))
	}
}

func writeClass(w io.Writer, cat *catalog.Catalog, id string) error {
	cl, ok := cat.Lookup(id)
	if !ok {
		return errors.New(errors.ErrCodeClassNotFound, "class %q not in catalog", id)
	}
	fmt.Fprintln(w, StyleTitle.Render(cl.ID))
	if cl.Description != "" {
		fmt.Fprintln(w, StyleDim.Render(cl.Description))
	}
	fmt.Fprintln(w)
	for _, row := range cat.Rows(id) {
		fmt.Fprintln(w, "  "+row)
	}
	if related := cat.Related(id); len(related) > 0 {
		fmt.Fprintln(w)
		for _, r := range related {
			fmt.Fprintf(w, "  %s %s\n", StyleDim.Render(iconArrow), StyleHighlight.Render(r))
		}
	}
	return nil
}
