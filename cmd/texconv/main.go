// texconv - Lossless TEX ⇄ DDS texture converter for Monster Hunter: World
//
// Converts between the game's TEX container and standard DDS files. Pixel
// data is copied verbatim; only headers and the TEX mip table are rewritten,
// so a TEX → DDS → TEX round trip is byte-identical for canonical TEX files.
// TEX does not record the DDS raw flag, so uncompressed RGBA8 surfaces read
// from raw DDS files come back with compressed-style sizing.
//
// Supported formats:
//   - R8G8B8A8 (UNORM, sRGB), R8G8: uncompressed
//   - BC1 (UNORM, sRGB), BC4: 4bpp
//   - BC5, BC6H, BC7 (UNORM, sRGB): 8bpp
//
// Usage:
//   texconv tex2dds input.tex output.dds        # TEX → DDS
//   texconv dds2tex input.dds output.tex        # DDS → TEX
//   texconv info input.tex                      # Show texture info
//   texconv batch tex2dds dir/ out/             # Batch convert directory
//   texconv workspace new -name stamps -source tex/
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/goopsie/mhwTexTools/pkg/convert"
	"github.com/goopsie/mhwTexTools/pkg/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tex2dds", "dds2tex":
		if len(os.Args) != 4 {
			fmt.Fprintf(os.Stderr, "Usage: texconv %s input output\n", command)
			os.Exit(1)
		}
		if err := convertOne(command, os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Converted %s → %s\n", os.Args[2], os.Args[3])

	case "info":
		if len(os.Args) != 3 {
			fmt.Fprintf(os.Stderr, "Usage: texconv info input\n")
			os.Exit(1)
		}
		if err := showInfo(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "batch":
		if err := runBatch(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "workspace":
		if err := runWorkspace(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("texconv - Lossless TEX ⇄ DDS texture converter for MHW")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  texconv tex2dds <input.tex> <output.dds>                 # TEX → DDS")
	fmt.Println("  texconv dds2tex <input.dds> <output.tex>                 # DDS → TEX")
	fmt.Println("  texconv info <file>                                      # Show info")
	fmt.Println("  texconv batch <tex2dds|dds2tex> <dir> <out> [-workers N] # Batch convert")
	fmt.Println("  texconv workspace new -name <dir> -source <tex_dir>      # Extract stickers")
	fmt.Println("  texconv workspace list [-dir .]                          # List workspaces")
	fmt.Println("  texconv workspace status -path <dir>                     # Show modified stickers")
	fmt.Println("  texconv workspace package -path <dir> [-dist dist]       # Build mod archive")
	fmt.Println()
	fmt.Println("Supported formats:")
	for _, f := range texture.Formats() {
		fmt.Printf("  %-20s TEX %2d  %s\n", f, f.Code(), f.FourCC())
	}
}

// convertOne converts a single file, checking the input matches the requested
// direction.
func convertOne(command, inputPath, outputPath string) error {
	dir, err := convert.ParseDirection(command)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	out, got, err := convert.Convert(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if got != dir {
		return fmt.Errorf("%s is not a %s file", inputPath, dir.SourceExt())
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func showInfo(inputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	d, err := convert.Inspect(f)
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}

	fmt.Printf("File: %s\n", inputPath)
	fmt.Printf("Container: %s\n", d.Container)
	fmt.Printf("Dimensions: %dx%d\n", d.Width, d.Height)
	fmt.Printf("Mip levels: %d\n", d.MipCount)
	fmt.Printf("Format: %s (TEX %d, %s)\n", d.Format, d.Format.Code(), d.Format.FourCC())
	fmt.Printf("Storage: %s\n", d.Format.StorageClass())
	if d.Raw {
		fmt.Println("Raw: yes")
	}
	fmt.Printf("Data offset: 0x%x\n", d.PayloadOffset)
	fmt.Printf("Data size: %d bytes (%.2f KB)\n", d.PayloadSize, float64(d.PayloadSize)/1024)
	for i, l := range d.Levels {
		fmt.Printf("  mip %2d: %5dx%-5d offset 0x%08x size %d\n", i, l.Width, l.Height, l.Offset, l.Size)
	}

	return nil
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	workers := fs.Int("workers", runtime.NumCPU(), "number of files converted concurrently")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: texconv batch tex2dds|dds2tex input_dir output_dir [-workers N]\n")
		fs.PrintDefaults()
	}

	if len(args) < 3 {
		fs.Usage()
		return fmt.Errorf("batch requires a direction, input dir and output dir")
	}
	if err := fs.Parse(args[3:]); err != nil {
		return err
	}

	dir, err := convert.ParseDirection(args[0])
	if err != nil {
		return err
	}

	report, err := convert.Batch(args[1], args[2], dir,
		convert.WithWorkers(*workers),
		convert.WithProgress(func(done int) {
			if done%100 == 0 {
				fmt.Printf("Processed %d files...\n", done)
			}
		}),
	)
	if err != nil {
		return err
	}

	for _, fe := range report.Errors {
		fmt.Fprintf(os.Stderr, "%v\n", fe)
	}
	fmt.Printf("Completed: %d files converted, %d errors\n", len(report.Converted), len(report.Errors))
	if len(report.Errors) > 0 {
		return fmt.Errorf("%d files failed", len(report.Errors))
	}
	return nil
}
