package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"vidshelf/internal/extract"
	"vidshelf/internal/filesystem"
	"vidshelf/internal/format"
	"vidshelf/internal/library"
	"vidshelf/internal/media"
	"vidshelf/internal/startup"
	"vidshelf/internal/store"
	"vidshelf/internal/vipsimg"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	scanCmd.Flags().StringP("quality", "q", string(media.QualityMedium), "Thumbnail quality tier (low, medium, high)")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a folder and print a summary of its videos",
	Long: "Scan a folder and print duration, resolution, size and date for every video in it.\n" +
		"Without a directory argument the folder is asked for on the terminal.",
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	quality, ok := media.ParseQuality(lo.Must(cmd.Flags().GetString("quality")))
	if !ok {
		return fmt.Errorf("unknown quality %q", lo.Must(cmd.Flags().GetString("quality")))
	}

	var picker library.FolderPicker = library.NewTerminalPicker()
	if len(args) == 1 {
		picker = library.StaticPicker(args[0])
	}

	canvas, vipsActive := newCanvas(cfg.GetBool(startup.KeyVips))
	if vipsActive {
		defer vipsimg.Shutdown()
	}

	st := store.New()
	svc := library.NewService(library.Config{
		Scanner: library.NewScanner(filesystem.NewRetryFs(nil, filesystem.DefaultRetryConfig())),
		Extractor: extract.New(extract.Config{
			Decoder: extract.NewFFmpegDecoder(cfg.GetString(startup.KeyFFmpeg), cfg.GetString(startup.KeyFFprobe)),
			Canvas:  canvas,
		}),
		Store:   st,
		Quality: func() media.Quality { return quality },
	})
	defer svc.Close()

	res, err := svc.Open(cmd.Context(), picker)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Status {
	case library.StatusCancelled:
		return nil
	case library.StatusEmpty:
		fmt.Fprintln(out, res.Message)
		return nil
	}

	printSummary(out, res.Dir, st.Filtered(), time.Now())
	return nil
}

// printSummary writes one row per video followed by a totals line.
func printSummary(w io.Writer, dir string, videos []media.VideoMetadata, now time.Time) {
	fmt.Fprintf(w, "%s\n\n", dir)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDURATION\tRESOLUTION\tSIZE\tDATE\tTHUMBNAIL")
	for _, v := range videos {
		thumb := "yes"
		if v.IsPlaceholder() {
			thumb = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			displayName(v),
			format.Duration(v.Meta.Duration),
			v.Meta.Resolution,
			format.FileSize(v.Meta.Size),
			format.Date(v.Meta.Created, now),
			thumb,
		)
	}
	_ = tw.Flush()

	failed := lo.CountBy(videos, func(v media.VideoMetadata) bool { return v.IsPlaceholder() })
	total := lo.SumBy(videos, func(v media.VideoMetadata) float64 { return v.Meta.Duration })
	fmt.Fprintf(w, "\n%d videos, %s total", len(videos), format.Duration(total))
	if failed > 0 {
		fmt.Fprintf(w, ", %d without metadata", failed)
	}
	fmt.Fprintln(w)
}

func displayName(v media.VideoMetadata) string {
	if v.File.Title != "" {
		return v.File.Title
	}
	return v.File.Name
}
