package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hantq/dwv.go/pkg/dicom"
)

// NewAnonymizeCmd rewrites a DICOM file through a rules table.
func NewAnonymizeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anonymize <in> <out>",
		Short: "rewrite a DICOM file applying per-element rules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesPath, _ := cmd.Flags().GetString("rules")
			if rulesPath == "" {
				return fmt.Errorf("--rules is required")
			}
			raw, err := os.ReadFile(rulesPath)
			if err != nil {
				return fmt.Errorf("failed to open rules: %v", err)
			}
			rules, err := dicom.ParseRules(raw)
			if err != nil {
				return err
			}

			ds, err := dicom.ReadFile(args[0])
			if err != nil {
				return err
			}
			w := &dicom.Writer{Rules: rules}
			out, err := w.Write(ds)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], out, 0o644)
		},
	}
	cmd.Flags().String("rules", "", "JSON rules file keyed by keyword, tag key, group name or 'default'")
	return cmd
}
