package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
)

var clearYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Delete permanently removes a note. Deleting a note that does not exist is not an error.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			if err := a.DeleteNote(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Note deleted: %d\n", id)
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all notes",
	Long:  `Clear permanently removes every note. The medical profile is kept.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to delete all notes without --yes")
		}
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			before := a.Stats().Total
			if err := a.ClearAll(ctx); err != nil {
				return err
			}
			fmt.Printf("Deleted %d notes\n", before)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting all notes")
}
