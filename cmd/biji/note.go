package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
)

var (
	noteTitle   string
	noteContent string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note",
	Long: `Create a note from --title and --content.
Use --content - to read the content from stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(noteContent)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			a.OpenNew(ctx)
			if err := a.Change(noteTitle, content); err != nil {
				return err
			}
			n, err := a.SaveNote(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Note created: %d\n", n.ID)
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the title or content of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			n, err := a.OpenEdit(ctx, id)
			if err != nil {
				return err
			}

			title, content := n.Title, n.Content
			if cmd.Flags().Changed("title") {
				title = noteTitle
			}
			if cmd.Flags().Changed("content") {
				if content, err = readContent(noteContent); err != nil {
					return err
				}
			}

			if err := a.Change(title, content); err != nil {
				return err
			}
			if _, err := a.SaveNote(ctx); err != nil {
				return err
			}
			fmt.Printf("Note updated: %d\n", id)
			return nil
		})
	},
}

func readContent(v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(b), nil
}

func init() {
	for _, c := range []*cobra.Command{newCmd, editCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title")
		c.Flags().StringVarP(&noteContent, "content", "c", "", "Note content (- reads stdin)")
		rootCmd.AddCommand(c)
	}
}
