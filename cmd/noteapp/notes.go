package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"noteapp/internal/client"
	"noteapp/internal/domain"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, app *client.App) error {
				if _, err := requireUser(app); err != nil {
					return err
				}
				selected, _ := app.Selected()
				for _, n := range app.Notes() {
					marker := " "
					if n.ID == selected.ID {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", marker, n.ID, n.Title)
				}
				return nil
			})
		},
	}
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Create an untitled note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, app *client.App) error {
				if _, err := requireUser(app); err != nil {
					return err
				}
				note, err := app.AddNote(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), note.ID)
				return nil
			})
		},
	}
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a note, the first one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, app *client.App) error {
				if _, err := requireUser(app); err != nil {
					return err
				}
				if len(args) == 1 {
					app.Select(args[0])
				}
				note, ok := app.Selected()
				if !ok || (len(args) == 1 && note.ID != args[0]) {
					return fmt.Errorf("note not found")
				}
				printNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}
}

func newEditCmd(flags *globalFlags) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titleSet := cmd.Flags().Changed("title")
			contentSet := cmd.Flags().Changed("content")
			if !titleSet && !contentSet {
				return fmt.Errorf("nothing to change, pass --title or --content")
			}

			return withApp(cmd, flags, true, func(ctx context.Context, app *client.App) error {
				if _, err := requireUser(app); err != nil {
					return err
				}
				note, ok := findNote(app.Notes(), args[0])
				if !ok {
					return fmt.Errorf("note %s not found", args[0])
				}
				if titleSet {
					note.Title = title
				}
				if contentSet {
					note.Content = content
				}
				if err := app.SaveNote(note); err != nil {
					return err
				}
				app.Select(note.ID)
				saved, _ := app.Selected()
				printNote(cmd.OutOrStdout(), saved)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title, empty for Untitled")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	return cmd
}

func newRmCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, app *client.App) error {
				if _, err := requireUser(app); err != nil {
					return err
				}
				if _, ok := findNote(app.Notes(), args[0]); !ok {
					return fmt.Errorf("note %s not found", args[0])
				}
				if err := app.DeleteNote(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func findNote(notes []domain.Note, id string) (domain.Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Note{}, false
}

func printNote(w io.Writer, n domain.Note) {
	fmt.Fprintf(w, "# %s\n", n.Title)
	if n.Content != "" {
		fmt.Fprintf(w, "\n%s\n", n.Content)
	}
}
