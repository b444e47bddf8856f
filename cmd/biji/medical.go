package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
	"github.com/aretw0/biji/pkg/export"
	"github.com/aretw0/biji/pkg/medical"
)

var medicalCmd = &cobra.Command{
	Use:   "medical",
	Short: "Show or change the medical profile",
}

var medicalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the medical profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			p := a.Medical()
			fmt.Print(export.MedicalText(p.Data, medical.Fields))
			if p.Saved() {
				fmt.Printf("\nLast saved %s\n", time.UnixMilli(p.Modified).Format(time.DateTime))
			}
			return nil
		})
	},
}

var medicalSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change medical fields",
	Long: `Set changes one or more fields of the medical profile and saves it.
BMI is computed from weight (kg) and height (cm). Run "biji medical fields"
for the list of keys. An empty value clears a field.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			form := medical.NewForm(a.Medical().Data)
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				if err := form.Set(strings.TrimSpace(key), value); err != nil {
					return err
				}
			}

			if err := a.SaveMedical(ctx, form.Data()); err != nil {
				return err
			}
			fmt.Println("Medical profile saved")
			if bmi := form.Get(medical.BMIField); bmi != "" {
				fmt.Printf("BMI: %s\n", bmi)
			}
			return nil
		})
	},
}

var medicalFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the medical field keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range medical.Fields {
			fmt.Printf("%-18s %s\n", f.Key, strings.TrimSuffix(f.Label, ":"))
		}
	},
}

var medicalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the medical profile as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(a.Medical())
		})
	},
}

var medicalCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the medical profile to the clipboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *biji.App) error {
			if err := writeClipboard(export.MedicalText(a.Medical().Data, medical.Fields)); err != nil {
				return err
			}
			fmt.Println("Medical profile copied to clipboard")
			return nil
		})
	},
}

func init() {
	medicalCmd.AddCommand(medicalShowCmd, medicalSetCmd, medicalFieldsCmd, medicalExportCmd, medicalCopyCmd)
	rootCmd.AddCommand(medicalCmd)
}
