package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
	"github.com/aretw0/biji/pkg/search"
)

var (
	listJSON  bool
	listQuery string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently modified first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			notes := a.Search(listQuery)

			if listJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(notes)
			}

			if len(notes) == 0 {
				if listQuery != "" {
					fmt.Println("No notes found")
				} else {
					fmt.Println("No notes yet")
				}
				return nil
			}

			now := time.Now()
			for _, n := range notes {
				title := search.Highlight(n.Title, listQuery, "*", "*")
				fmt.Printf("%d\t%s\t%s\n", n.ID, search.FormatDate(n.Modified, now), title)
			}
			fmt.Println(a.Stats())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only notes whose title or content contains this text")
}
