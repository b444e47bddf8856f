package main

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
	"github.com/aretw0/biji/pkg/export"
)

var copyCmd = &cobra.Command{
	Use:   "copy [id]",
	Short: "Copy a note to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			n, ok := findNote(a, id)
			if !ok {
				return fmt.Errorf("note %d not found", id)
			}
			if err := writeClipboard(export.NoteText(n)); err != nil {
				return err
			}
			fmt.Println("Copied to clipboard")
			return nil
		})
	},
}

func writeClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
