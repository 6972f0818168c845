package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"segment-studio/internal/composer"
	"segment-studio/internal/platform/config"
	"segment-studio/internal/platform/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	logLevel      string
	materialsFile string
	log           *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "segmentctl",
		Short: "Offline tooling for segment studio projects",
		Long: `segmentctl builds, checks and previews segment studio projects stored as YAML.

Examples:
  # Create a project with one segment per line of a script file
  segmentctl import script.txt -o promo.yaml --materials catalog.yaml --attach m1,m2

  # List segments and duration warnings
  segmentctl check promo.yaml

  # Show what the preview renders at 12.5s, or play the whole timeline
  segmentctl preview promo.yaml --at 12.5
  segmentctl preview promo.yaml --play`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.NewWithWriter(os.Stderr, logLevel, "text")
		},
	}

	importCmd = &cobra.Command{
		Use:   "import <script-file>",
		Short: "Create a project from a script file, one segment per non-empty line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("output")
			name, _ := cmd.Flags().GetString("name")
			attach, _ := cmd.Flags().GetString("attach")
			if out == "" {
				return errors.New("output path is required")
			}

			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}

			svc := composer.NewService(composer.NewInMemoryRepository(), catalog, composer.Owner{})
			sess := svc.CreateProject(name)
			created := sess.ImportScripts(string(text))

			if attach != "" {
				ids := strings.Split(attach, ",")
				for i, seg := range created {
					if i >= len(ids) {
						break
					}
					if _, err := sess.AttachMaterial(seg.ID, composer.MaterialID(strings.TrimSpace(ids[i]))); err != nil {
						return err
					}
				}
			}

			p := sess.Snapshot()
			if err := composer.WriteProjectFile(&p, out); err != nil {
				return err
			}
			log.Info("project written", "path", out, "segments", len(p.Segments))
			printSegments(cmd.OutOrStdout(), p.Segments)
			return nil
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check <project-file>",
		Short: "List segments with estimated durations and material warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openProject(args[0])
			if err != nil {
				return err
			}
			segs := sess.Segments()
			printSegments(cmd.OutOrStdout(), segs)

			warnings := 0
			for _, s := range segs {
				if s.MaterialWarning != "" {
					warnings++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d segments, %.1fs total, %d warnings\n", len(segs), sess.TotalDuration(), warnings)
			return nil
		},
	}

	previewCmd = &cobra.Command{
		Use:   "preview <project-file>",
		Short: "Show the preview frame at a time, or play the timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetFloat64("at")
			play, _ := cmd.Flags().GetBool("play")

			sess, err := openProject(args[0])
			if err != nil {
				return err
			}

			if !play {
				f, ok := sess.FrameAt(at)
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "empty timeline, nothing to render")
					return nil
				}
				printFrame(cmd.OutOrStdout(), f)
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			tick := time.Duration(config.FromEnv().PlaybackTickMS) * time.Millisecond
			return playTimeline(ctx, cmd.OutOrStdout(), sess, tick)
		},
	}

	playlistCmd = &cobra.Command{
		Use:   "playlist <project-file>",
		Short: "Print the HLS preview playlist of the material sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openProject(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sess.PreviewPlaylist())
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.GetEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&materialsFile, "materials", config.GetEnv("MATERIALS_FILE", ""), "YAML material catalog")

	importCmd.Flags().StringP("output", "o", "", "Output project file (required)")
	importCmd.Flags().String("name", "Untitled", "Project name")
	importCmd.Flags().String("attach", "", "Comma-separated material ids attached to segments in order")

	previewCmd.Flags().Float64("at", 0, "Playback time in seconds")
	previewCmd.Flags().Bool("play", false, "Play the whole timeline")

	rootCmd.AddCommand(importCmd, checkCmd, previewCmd, playlistCmd)
}

func loadCatalog() (composer.MaterialCatalog, error) {
	if materialsFile == "" {
		return composer.NewInMemoryCatalog(), nil
	}
	return composer.LoadCatalogFile(materialsFile)
}

func openProject(path string) (*composer.Session, error) {
	p, err := composer.ReadProjectFile(path)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	svc := composer.NewService(composer.NewInMemoryRepository(), catalog, composer.Owner{})
	return svc.Import(*p), nil
}

// playTimeline prints a frame whenever the active segment changes. An
// interrupt ends playback without an error.
func playTimeline(ctx context.Context, w io.Writer, sess *composer.Session, tick time.Duration) error {
	last := -1
	err := sess.Play(ctx, tick, func(f composer.Frame) {
		if f.Index != last {
			last = f.Index
			printFrame(w, f)
		}
	})
	if errors.Is(err, context.Canceled) {
		log.Info("playback cancelled")
		return nil
	}
	return err
}

func printSegments(w io.Writer, segs []composer.Segment) {
	for _, s := range segs {
		material := "-"
		if s.Material != nil {
			material = fmt.Sprintf("%s (%.1fs)", s.Material.Name, s.Material.Duration)
		}
		line := fmt.Sprintf("%-12s est %5.1fs  material %s  %q", s.Name, composer.EstimatedDuration(s.PreviewScript()), material, s.DisplayScript())
		if s.MaterialWarning != "" {
			line += "  ! " + s.MaterialWarning
		}
		fmt.Fprintln(w, line)
	}
}

func printFrame(w io.Writer, f composer.Frame) {
	fmt.Fprintf(w, "[%6.1fs] segment %d: %s\n", f.Time, f.Index+1, f.Script)
	for _, o := range f.Overlays {
		fmt.Fprintf(w, "    %-7s %q at (%.0f,%.0f)\n", o.Kind, o.Content, o.Position.X, o.Position.Y)
	}
	for _, h := range f.DigitalHumans {
		fmt.Fprintf(w, "    avatar  %q at (%.0f,%.0f) x%.2f\n", h.Name, h.Position.X, h.Position.Y, h.Scale)
	}
	if len(f.Occluded) > 0 {
		fmt.Fprintf(w, "    %d element(s) inside platform safe zones\n", len(f.Occluded))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
