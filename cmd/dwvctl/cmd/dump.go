package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hantq/dwv.go/pkg/dicom"
)

// NewDumpCmd parses a DICOM file and prints its elements.
func NewDumpCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "parse a DICOM file and print its elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			charsetName, _ := cmd.Flags().GetString("charset")
			p := &dicom.Parser{DefaultCharacterSet: charsetName}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to open file: %v", err)
			}
			ds, err := p.Parse(data)
			if err != nil {
				return err
			}

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "text":
				fmt.Println(ds)
			default:
				out, err := json.MarshalIndent(ds, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			}
			return nil
		},
	}
	cmd.Flags().String("format", "json", "Output format (json, text)")
	cmd.Flags().String("charset", "", "Default character set when (0008,0005) is absent")
	return cmd
}
