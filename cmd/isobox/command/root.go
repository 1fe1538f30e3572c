package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tyrese/isobox/format/mp4"
	"github.com/tyrese/isobox/format/mp4/mp4io"
	"github.com/tyrese/isobox/internal/config"
	"github.com/tyrese/isobox/internal/logger"
	"github.com/tyrese/isobox/internal/metrics"
)

type app struct {
	cfgFile  string
	logLevel string
	format   string
	maxDepth int

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRootCommand builds the isobox command tree. Every call returns a
// fresh tree with its own flags and metrics.
func NewRootCommand() *cobra.Command {
	self := &app{}

	root := &cobra.Command{
		Use:   "isobox",
		Short: "Inspect the box structure of ISO base media (MP4) files",
		Long: `isobox walks the box tree of MP4, MOV and fragmented MP4 files,
decodes the movie, track and media headers and reports what it finds.

Example:
  isobox dump movie.mp4
  isobox dump movie.mp4 --where 'Kind == "opaque"'
  isobox info -o json *.mp4`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return self.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&self.cfgFile, "config", "c", "", "YAML config file")
	flags.StringVar(&self.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&self.format, "output", "o", "", "output format (text, json, yaml)")
	flags.IntVar(&self.maxDepth, "max-depth", 0, "maximum container nesting")

	root.AddCommand(
		newDumpCommand(self),
		newInfoCommand(self),
		newTagsCommand(),
		newVersionCommand(),
	)
	return root
}

func (self *app) setup(cmd *cobra.Command) (err error) {
	if self.cfg, err = config.Load(self.cfgFile); err != nil {
		return
	}
	if self.logLevel != "" {
		self.cfg.Log.Level = self.logLevel
	}
	if self.format != "" {
		self.cfg.Output.Format = self.format
	}
	if self.maxDepth != 0 {
		self.cfg.Walk.MaxDepth = self.maxDepth
	}
	if err = self.cfg.Validate(); err != nil {
		return
	}

	self.logger = logger.NewWithWriter(self.cfg.Log, cmd.ErrOrStderr())
	self.metrics = metrics.New()
	cmd.SetContext(logger.WithLogger(cmd.Context(), self.logger))
	return
}

// run wraps a command body so metrics are flushed on failure too.
func (self *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		err = fn(cmd, args)
		if ferr := self.teardown(); err == nil {
			err = ferr
		}
		return
	}
}

func (self *app) teardown() (err error) {
	if self.cfg == nil {
		return
	}
	if path := self.cfg.Metrics.Textfile; path != "" {
		if err = self.metrics.WriteTextfile(path); err != nil {
			err = fmt.Errorf("write metrics: %w", err)
			return
		}
		self.logger.Debug("metrics written", zap.String("path", path))
	}
	_ = self.logger.Sync()
	return
}

// open walks path and records the walk in the metrics. Nothing is read
// once ctx is done.
func (self *app) open(ctx context.Context, path string) (demuxer *mp4.Demuxer, forest *mp4io.Forest, err error) {
	if err = ctx.Err(); err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		return
	}
	log := logger.FromContext(ctx).With(zap.String("file", path))

	var f *os.File
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()

	demuxer = mp4.NewDemuxer(f,
		mp4io.WithMaxDepth(self.cfg.Walk.MaxDepth),
		mp4io.WithLogger(log),
	)
	start := time.Now()
	forest, err = demuxer.Forest()
	took := time.Since(start)
	self.metrics.ObserveWalk(forest, took, err)
	if err != nil {
		log.Warn("walk failed", zap.Error(err))
		demuxer = nil
		err = fmt.Errorf("%s: %w", path, err)
		return
	}
	log.Info("walked", zap.Int("boxes", forest.Len()), zap.Duration("took", took))
	return
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// render writes v as json or yaml. text output is left to the caller.
func (self *app) render(w io.Writer, v any) error {
	switch self.cfg.Output.Format {
	case config.FormatJSON:
		return writeJSON(w, v)
	case config.FormatYAML:
		return writeYAML(w, v)
	}
	return fmt.Errorf("%w: output.format %q", config.ErrInvalid, self.cfg.Output.Format)
}
