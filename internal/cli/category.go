package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smartcents/internal/core"
	"smartcents/internal/taxonomy"
)

func newCategoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage the category taxonomy",
	}
	cmd.AddCommand(newCategoryAddCommand(app))
	cmd.AddCommand(newCategoryUpdateCommand(app))
	cmd.AddCommand(newCategoryDeleteCommand(app))
	cmd.AddCommand(newCategoryListCommand(app))
	cmd.AddCommand(newCategoryTreeCommand(app))
	cmd.AddCommand(newCategoryImportCommand(app))
	return cmd
}

func newCategoryAddCommand(app *App) *cobra.Command {
	var typ, color, parent string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			t, err := core.ParseTransactionType(typ)
			if err != nil {
				return err
			}
			c, err := app.Taxonomy.Create(ctx, id.UserID, taxonomy.NewCategory{
				Name:     args[0],
				Type:     t,
				Color:    color,
				ParentID: parent,
			})
			if err != nil {
				return err
			}
			return app.render(cmd, c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created category %s (%s)\n", c.Name, c.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVar(&color, "color", taxonomy.DefaultColor, "display color")
	cmd.Flags().StringVar(&parent, "parent", "", "parent category id")
	return cmd
}

func newCategoryUpdateCommand(app *App) *cobra.Command {
	var name, color, parent string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename, recolor or move a category",
		Long:  "Rename, recolor or move a category. --parent '' turns it into a root.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}

			var patch taxonomy.CategoryPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("color") {
				patch.Color = &color
			}
			if flags.Changed("parent") {
				patch.ParentID = &parent
			}
			if patch.Name == nil && patch.Color == nil && patch.ParentID == nil {
				return usageErrorf("nothing to update: set --name, --color or --parent")
			}

			c, err := app.Taxonomy.Update(ctx, id.UserID, args[0], patch)
			if err != nil {
				return err
			}
			return app.render(cmd, c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated category %s (%s)\n", c.Name, c.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent id, empty for root")
	return cmd
}

func newCategoryDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Its transactions and budgets become uncategorized
and its direct children become roots.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			if err := app.Taxonomy.Delete(ctx, id.UserID, args[0]); err != nil {
				return err
			}
			return app.render(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted category %s\n", args[0])
				return err
			})
		},
	}
}

func newCategoryListCommand(app *App) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			cats, err := app.Taxonomy.List(ctx, id.UserID)
			if err != nil {
				return err
			}
			if typ != "" {
				t, err := core.ParseTransactionType(typ)
				if err != nil {
					return err
				}
				kept := cats[:0]
				for _, c := range cats {
					if c.Type == t {
						kept = append(kept, c)
					}
				}
				cats = kept
			}

			return app.render(cmd, cats, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCOLOR\tPARENT")
				for _, c := range cats {
					parent := ""
					if c.ParentID != nil {
						parent = *c.ParentID
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, c.Color, parent)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only income or expense")
	return cmd
}

func newCategoryTreeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show categories as a hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			forest, err := app.Taxonomy.ListTree(ctx, id.UserID)
			if err != nil {
				return err
			}
			return app.render(cmd, forest, func(w io.Writer) error {
				return taxonomy.Walk(forest, func(n *taxonomy.Node) error {
					_, err := fmt.Fprintf(w, "%s%s [%s] %s\n", strings.Repeat("  ", n.Depth), n.Category.Name, n.Category.Type, n.Category.ID)
					return err
				})
			})
		},
	}
}

func newCategoryImportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create categories from a YAML seed file",
		Long: `Create categories from a YAML seed file, for example:

  categories:
    - name: Home
      type: expense
      color: "#F59E0B"
      children:
        - name: Rent
        - name: Utilities

Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open seed file: %w", err)
				}
				defer f.Close()
				r = f
			}

			created, err := app.Taxonomy.Import(ctx, id.UserID, r)
			if err != nil {
				return fmt.Errorf("import aborted, nothing saved: %w", err)
			}
			return app.render(cmd, created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Imported %d categories\n", len(created))
				return err
			})
		},
	}
}
