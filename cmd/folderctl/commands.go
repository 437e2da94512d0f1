package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	models "tapstampr/internal/domain/models/library"
	libSvc "tapstampr/internal/domain/services/library"
	"tapstampr/internal/seed"
)

var errBlockedInProd = errors.New("refusing to clear folders in the prod environment")

func newSeedCmd(a *app) *cobra.Command {
	var clearFirst bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create folders from a YAML fixture",
		Long: `Create folders from a YAML fixture.

Examples:
  folderctl seed fixtures/music.yaml
  folderctl seed fixtures/music.yaml --clear   # replace existing folders`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearFirst && a.cfg.IsProduction() {
				return errBlockedInProd
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fx, err := seed.Decode(f)
			if err != nil {
				return err
			}

			if clearFirst {
				if err := a.store.ClearAll(cmd.Context()); err != nil {
					return err
				}
			}

			created, err := seed.NewSeeder(a.store, a.logger).Apply(cmd.Context(), fx)
			if err != nil {
				return fmt.Errorf("seeded %d of %d folders: %w", created, fx.Count(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d folders\n", created)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "Remove all existing folders before seeding")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the folder hierarchy as a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := seed.Export(cmd.Context(), a.store)
			if err != nil {
				return err
			}

			if out == "" {
				return seed.Encode(cmd.OutOrStdout(), fx)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := seed.Encode(f, fx); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.store.GetTree(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			tree.Walk(func(node *models.FolderTreeNode, depth int) {
				fmt.Fprintf(w, "%s%s (%d items)  %s\n", strings.Repeat("  ", depth), node.Name, node.ItemCount, node.ID)
			})
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [parent-id]",
		Short:   "List root folders, or the sub-folders of a parent",
		Aliases: []string{"list"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				folders []models.Folder
				err     error
			)
			settings := models.DefaultFolderSettings()

			if len(args) == 0 {
				folders, err = a.store.GetRootFolders(cmd.Context())
			} else {
				parent, perr := a.store.GetByID(cmd.Context(), args[0])
				if perr != nil {
					return perr
				}
				settings = parent.Settings
				folders, err = a.store.GetSubFolders(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tITEMS\tSUBFOLDERS\tCREATED")
			for _, f := range models.SortFolders(folders, settings) {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					f.ID, f.Name, len(f.Items), len(f.SubFolderIDs), f.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Print the breadcrumb path of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.store.GetFolderPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(path, " / "))
			return nil
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	var parent, description string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &libSvc.CreateFolderRequest{Name: args[0], Description: description}
			if parent != "" {
				req.ParentFolderID = &parent
			}

			folder, err := a.store.CreateFolder(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), folder.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent folder id")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Folder description")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "mv <id> [new-parent-id]",
		Short: "Move a folder under another folder, or to the root with --root",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var newParent *string
			switch {
			case toRoot && len(args) == 2:
				return errors.New("give either a new parent id or --root, not both")
			case len(args) == 2:
				newParent = &args[1]
			case !toRoot:
				return errors.New("missing new parent id (use --root to move to the top level)")
			}

			folder, err := a.store.MoveToParent(cmd.Context(), args[0], newParent)
			if err != nil {
				return err
			}
			path, err := a.store.GetFolderPath(cmd.Context(), folder.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(path, " / "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move the folder to the top level")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a folder and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.DeleteFolder(cmd.Context(), args[0])
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.IsProduction() {
				return errBlockedInProd
			}
			if !yes {
				return errors.New("pass --yes to confirm")
			}
			if err := a.store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All folders cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm removal")
	return cmd
}
