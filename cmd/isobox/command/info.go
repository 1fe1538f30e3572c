package command

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tyrese/isobox/format/mp4"
	"github.com/tyrese/isobox/internal/config"
)

type fileInfo struct {
	File  string    `json:"file" yaml:"file"`
	Info  *mp4.Info `json:"info,omitempty" yaml:"info,omitempty"`
	Error string    `json:"error,omitempty" yaml:"error,omitempty"`
}

func newInfoCommand(self *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "info <file>...",
		Short: "Summarize the movie and tracks of one or more files",
		Long: `info reads the movie header and every track of each file. Files
are walked in parallel; a failing file is reported and the others are
still summarized.

Example:
  isobox info a.mp4 b.mp4
  isobox info -o yaml --workers 8 *.mp4`,
		Args: cobra.MinimumNArgs(1),
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "files walked at once (default walk.workers)")

	cmd.RunE = self.run(func(cmd *cobra.Command, args []string) error {
		if workers <= 0 {
			workers = self.cfg.Walk.Workers
		}

		results := make([]fileInfo, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(workers)
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				results[i].File = path
				info, err := self.info(ctx, path)
				if err != nil {
					results[i].Error = err.Error()
					return nil
				}
				results[i].Info = info
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var err error
		if self.cfg.Output.Format == config.FormatText {
			err = printInfos(out, results)
		} else {
			err = self.render(out, results)
		}
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Error != "" {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	})
	return cmd
}

func (self *app) info(ctx context.Context, path string) (info *mp4.Info, err error) {
	var demuxer *mp4.Demuxer
	if demuxer, _, err = self.open(ctx, path); err != nil {
		return
	}
	if info, err = demuxer.Info(); err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func printInfos(w io.Writer, results []fileInfo) error {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n", r.File)
		if r.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", r.Error)
			continue
		}
		info := r.Info
		fmt.Fprintf(&b, "  brand:      %s %s\n", info.Brand, strings.Join(info.CompatibleBrands, ","))
		fmt.Fprintf(&b, "  duration:   %s (timescale %d)\n", info.Duration, info.TimeScale)
		fmt.Fprintf(&b, "  created:    %s\n", formatTime(info.Created))
		fmt.Fprintf(&b, "  modified:   %s\n", formatTime(info.Modified))
		fmt.Fprintf(&b, "  rate:       %g volume: %g next track: %d\n", info.Rate, info.Volume, info.NextTrackID)
		if info.Fragmented {
			b.WriteString("  fragmented: yes\n")
		}
		for _, s := range info.Streams {
			fmt.Fprintf(&b, "  #%d track %d %s %s lang=%s", s.Idx, s.TrackID, s.Handler, s.Duration, s.Language)
			if s.IsVideo() {
				fmt.Fprintf(&b, " %gx%g", s.Width, s.Height)
			}
			if !s.Enabled {
				b.WriteString(" disabled")
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
