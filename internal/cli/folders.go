package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"inkdeck/internal/order"
)

func newFoldersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage deck folders",
	}
	cmd.AddCommand(newFoldersListCmd(app))
	cmd.AddCommand(newFoldersCreateCmd(app))
	cmd.AddCommand(newFoldersRenameCmd(app))
	cmd.AddCommand(newFoldersDeleteCmd(app))
	cmd.AddCommand(newFoldersMoveCmd(app))
	return cmd
}

func newFoldersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			folders, err := st.Folders(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			order.SortFolders(folders)
			return writeOut(cmd, app, folders)
		},
	}
	return cmd
}

func newFoldersCreateCmd(app *App) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder at the end of the folder order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := st.CreateFolder(cmd.Context(), args[0], color)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, f)
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Accent color for the folder header")
	return cmd
}

func newFoldersRenameCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "rename <folder-id>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(name) == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			if err := st.RenameFolder(cmd.Context(), args[0], name); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "name": name})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New folder name")
	return cmd
}

func newFoldersDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a folder; its fragments fall back to uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.DeleteFolder(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}
	return cmd
}

func newFoldersMoveCmd(app *App) *cobra.Command {
	var before string
	var after string
	cmd := &cobra.Command{
		Use:   "move <folder-id>",
		Short: "Reorder a folder within the folder order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if (before == "" && after == "") || (before != "" && after != "") {
				return writeErr(cmd, errors.New("provide exactly one of --before or --after"))
			}
			refID := before
			if after != "" {
				refID = after
			}

			folders, err := st.Folders(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			order.SortFolders(folders)
			seq := order.FolderIDs(folders)

			id := strings.TrimSpace(args[0])
			if indexOfSeq(seq, id) < 0 {
				return writeErr(cmd, errNotFound("folder", id))
			}
			if indexOfSeq(seq, refID) < 0 {
				return writeErr(cmd, errNotFound("folder", refID))
			}
			if refID == id {
				return writeErr(cmd, errors.New("cannot move a folder relative to itself"))
			}

			next := spliceSeq(seq, id, refID, after != "")
			updates := order.PlanFolderReorder(folders, next)
			if len(updates) > 0 {
				if err := st.ReorderFolders(cmd.Context(), updates); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"id": id, "order": next})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Move before folder id")
	cmd.Flags().StringVar(&after, "after", "", "Move after folder id")
	return cmd
}
