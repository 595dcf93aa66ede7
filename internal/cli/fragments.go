package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"inkdeck/internal/model"
	"inkdeck/internal/order"
)

func newFragmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fragments",
		Short: "List and edit deck fragments",
	}
	cmd.AddCommand(newFragmentsListCmd(app))
	cmd.AddCommand(newFragmentsAddCmd(app))
	cmd.AddCommand(newFragmentsMoveCmd(app))
	cmd.AddCommand(newFragmentsAssignCmd(app))
	cmd.AddCommand(newFragmentsArchiveCmd(app))
	return cmd
}

func newFragmentsListCmd(app *App) *cobra.Command {
	var sortFlag string
	var kind string
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fragments in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			mode := model.SortMode(strings.TrimSpace(sortFlag))
			if !mode.Valid() {
				return writeErr(cmd, errors.New("unknown sort mode: "+sortFlag))
			}
			frags, err := st.Fragments(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			out := frags[:0]
			for _, f := range frags {
				if f.Archived != archived {
					continue
				}
				if kind != "" && f.Kind != kind {
					continue
				}
				out = append(out, f)
			}
			order.SortFragments(out, mode)
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", string(model.SortManual), "Sort mode (manual|name|newest|oldest)")
	cmd.Flags().StringVar(&kind, "kind", "", "Only fragments of this kind")
	cmd.Flags().BoolVar(&archived, "archived", false, "List archived fragments instead of active ones")
	return cmd
}

func newFragmentsAddCmd(app *App) *cobra.Command {
	var title, body, kind, folder string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a fragment at the end of the deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			f := model.Fragment{Title: title, Body: body, Kind: kind}
			if id := strings.TrimSpace(folder); id != "" {
				f.FolderID = &id
			}
			created, err := st.CreateFragment(cmd.Context(), f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, created)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Fragment title")
	cmd.Flags().StringVar(&body, "body", "", "Fragment body (markdown)")
	cmd.Flags().StringVar(&kind, "kind", "", "Fragment kind (free-form tag, e.g. note|scene|snippet)")
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id to file the fragment under")
	return cmd
}

func newFragmentsMoveCmd(app *App) *cobra.Command {
	var before string
	var after string
	cmd := &cobra.Command{
		Use:   "move <fragment-id>",
		Short: "Reorder a fragment within the manual order",
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

			frags, err := st.Fragments(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			active := frags[:0]
			for _, f := range frags {
				if !f.Archived {
					active = append(active, f)
				}
			}
			order.SortFragments(active, model.SortManual)
			seq := order.IDs(active)

			id := strings.TrimSpace(args[0])
			if indexOfSeq(seq, id) < 0 {
				return writeErr(cmd, errNotFound("fragment", id))
			}
			if indexOfSeq(seq, refID) < 0 {
				return writeErr(cmd, errNotFound("fragment", refID))
			}
			if refID == id {
				return writeErr(cmd, errors.New("cannot move a fragment relative to itself"))
			}

			next := spliceSeq(seq, id, refID, after != "")
			// Plan against stored ranks: the active view's ranks can be
			// sparse (archived gaps) or offset, and the unmoved fragments
			// need rewriting too.
			updates := order.PlanReorder(active, next)
			if len(updates) > 0 {
				if err := st.ReorderFragments(cmd.Context(), updates); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"id": id, "order": next})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Move before fragment id")
	cmd.Flags().StringVar(&after, "after", "", "Move after fragment id")
	return cmd
}

func newFragmentsAssignCmd(app *App) *cobra.Command {
	var folder string
	var uncategorized bool
	cmd := &cobra.Command{
		Use:   "assign <fragment-id>",
		Short: "File a fragment under a folder, or back to uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if (folder == "" && !uncategorized) || (folder != "" && uncategorized) {
				return writeErr(cmd, errors.New("provide exactly one of --folder or --uncategorized"))
			}
			var folderID *string
			if folder != "" {
				id := strings.TrimSpace(folder)
				folderID = &id
			}
			if err := st.Reassign(cmd.Context(), args[0], folderID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "folderId": folderID})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Destination folder id")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "Clear the folder assignment")
	return cmd
}

func newFragmentsArchiveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <fragment-id>",
		Short: "Archive a fragment (hidden from the deck, manual order keeps its gap)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.Archive(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "archived": true})
		},
	}
	return cmd
}

func indexOfSeq(seq []string, id string) int {
	for i, v := range seq {
		if v == id {
			return i
		}
	}
	return -1
}

// spliceSeq removes id and reinserts it next to ref.
func spliceSeq(seq []string, id, ref string, afterRef bool) []string {
	out := make([]string, 0, len(seq))
	for _, v := range seq {
		if v != id {
			out = append(out, v)
		}
	}
	at := indexOfSeq(out, ref)
	if afterRef {
		at++
	}
	out = append(out, "")
	copy(out[at+1:], out[at:])
	out[at] = id
	return out
}
