package cmd

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/image/tiff"

	"github.com/hantq/dwv.go/pkg/dicom"
)

// NewExportCmd decodes a frame of a DICOM file and writes it as TIFF.
func NewExportCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <in> <out.tiff>",
		Short: "export a decoded frame slice as a 16-bit TIFF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dicom.ReadFile(args[0])
			if err != nil {
				return err
			}
			pipeline := dicom.NewPipeline(nil, nil)
			img, err := pipeline.Load(ctx, ds)
			if err != nil {
				return err
			}

			frame, _ := cmd.Flags().GetInt("frame")
			slice, _ := cmd.Flags().GetInt("slice")
			size := img.Geometry.Size

			out := image.NewGray16(image.Rect(0, 0, size.Columns, size.Rows))
			for y := 0; y < size.Rows; y++ {
				for x := 0; x < size.Columns; x++ {
					v, ok := img.RescaledValue(x, y, slice, frame)
					if !ok {
						return fmt.Errorf("frame %d slice %d out of range", frame, slice)
					}
					out.SetGray16(x, y, color.Gray16{Y: clamp16(v)})
				}
			}

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create file: %v", err)
			}
			defer f.Close()
			return tiff.Encode(f, out, nil)
		},
	}
	cmd.Flags().Int("frame", 0, "Frame index to export")
	cmd.Flags().Int("slice", 0, "Slice index to export")
	return cmd
}

func clamp16(v float64) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 65535:
		return 65535
	}
	return uint16(v)
}
