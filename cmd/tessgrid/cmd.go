// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/2dChan/tessgrid"
	"github.com/2dChan/tessgrid/grid"
	"github.com/2dChan/tessgrid/render"
	"github.com/2dChan/tessgrid/utils"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is the version of the command.
const Version = "0.1.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

var log = logrus.New()

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log-level",
			usage: `
              log-level is the minimum level of logged messages
              (debug, info, warn, error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "name",
			usage: `
              name is the name of the input grid. The output is named
              after it.`,
			defaultVal: "grid",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "rows",
			usage:      "\n              rows is the number of grid rows.",
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "cols",
			usage:      "\n              cols is the number of grid columns.",
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "origin-x",
			usage:      "\n              origin-x is the x coordinate of cell (0, 0).",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "origin-y",
			usage:      "\n              origin-y is the y coordinate of cell (0, 0).",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "col-spacing",
			usage:      "\n              col-spacing is the distance between columns.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "row-spacing",
			usage:      "\n              row-spacing is the distance between rows.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "rotation",
			usage: `
              rotation is the angle of the column axis from +x, in
              degrees counter-clockwise.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "plane-a",
			usage:      "\n              plane-a is a in the sampled surface z = a*x + b*y + c.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "plane-b",
			usage:      "\n              plane-b is b in the sampled surface z = a*x + b*y + c.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "plane-c",
			usage:      "\n              plane-c is c in the sampled surface z = a*x + b*y + c.",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "null",
			usage:      "\n              null is the null value marker.",
			defaultVal: -999.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "holes",
			usage: `
              holes is the probability that a cell of the synthetic grid
              is null.`,
			defaultVal: 0.3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "seed",
			usage:      "\n              seed makes the synthetic grid reproducible.",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "aoi",
			usage: `
              aoi is an optional area of interest given as a GeoJSON
              Polygon or MultiPolygon geometry. A value starting with @
              names a file to read it from.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "workers",
			usage:      "\n              workers is the number of goroutines filling the grid.",
			shorthand:  "w",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "eps",
			usage: `
              eps is the relative tolerance below which a circumcircle
              solve is singular.`,
			defaultVal: 1e-12,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "plane-tolerance",
			usage: `
              plane-tolerance is the relative tolerance below which a
              triangle is flat in plan view and skipped.`,
			defaultVal: 1e-5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "degenerate",
			usage: `
              degenerate selects what to do with samples that cannot be
              triangulated: skip or abort.`,
			defaultVal: "skip",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "svg",
			usage: `
              svg is the path of an SVG rendering of the output grid and
              its triangulation. Nothing is written if empty or if the run
              is canceled.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "svg-width",
			usage:      "\n              svg-width is the width of the SVG rendering in pixels.",
			defaultVal: 1000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TESSGRID")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			if err := Cfg.BindPFlag(option.name, set.Lookup(option.name)); err != nil {
				panic(err)
			}
		}
	}

	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and configures logging.
func setConfig(cmd *cobra.Command) error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tessgrid: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("tessgrid: %v", err)
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tessgrid",
	Short: "Fill grid holes by tessellation interpolation.",
	Long: `tessgrid fills the null cells of a regular grid by triangulating the valid
cells and interpolating linearly inside each triangle.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'TESSGRID_var' where 'var'
is the name of the variable to be set, with dashes replaced by underscores.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return setConfig(cmd) },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tessgrid v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interpolate a synthetic grid.",
	Long: `run builds a synthetic grid sampling a plane, nulls a random share of its
cells, fills them and reports how many were filled. Interrupting the run
cancels it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return Run(ctx, cmd)
	},
	DisableAutoGenTag: true,
}

// Run interpolates the grid described by Cfg.
func Run(ctx context.Context, cmd *cobra.Command) error {
	in, err := syntheticGrid(Cfg)
	if err != nil {
		return err
	}
	setters, err := interpolateOptions(ctx, Cfg)
	if err != nil {
		return err
	}

	name := Cfg.GetString("name")
	entry := log.WithFields(logrus.Fields{"input": name, "output": tessgrid.OutputName(name)})
	entry.WithField("nulls", grid.NullCount(in)).Info("interpolating grid")

	res, err := tessgrid.Interpolate(in, setters...)
	if err != nil {
		return err
	}
	if res.Canceled {
		entry.Warn("run canceled; no output written")
		return nil
	}
	entry.WithFields(logrus.Fields{
		"samples":   res.Stats.Samples,
		"skipped":   res.Stats.Skipped,
		"triangles": res.Stats.Triangles,
		"filled":    res.Stats.Filled,
		"nulls":     grid.NullCount(res.Grid),
	}).Info("grid interpolated")
	cmd.Printf("%s: filled %d of %d null cells\n", tessgrid.OutputName(name), res.Stats.Filled, grid.NullCount(in))

	if path := Cfg.GetString("svg"); path != "" {
		if err := writeSVG(path, Cfg.GetInt("svg-width"), in, res); err != nil {
			return err
		}
		entry.WithField("svg", path).Info("rendering written")
	}
	return nil
}

func syntheticGrid(cfg *viper.Viper) (*grid.Dense, error) {
	s := utils.SyntheticGrid{
		Rows: cfg.GetInt("rows"),
		Cols: cfg.GetInt("cols"),
		Geometry: grid.Geometry{
			Origin:     r2.Point{X: cfg.GetFloat64("origin-x"), Y: cfg.GetFloat64("origin-y")},
			ColSpacing: cfg.GetFloat64("col-spacing"),
			RowSpacing: cfg.GetFloat64("row-spacing"),
			Rotation:   s1.Angle(cfg.GetFloat64("rotation")) * s1.Degree,
		},
		Plane: utils.Plane{
			A: cfg.GetFloat64("plane-a"),
			B: cfg.GetFloat64("plane-b"),
			C: cfg.GetFloat64("plane-c"),
		},
		Null:         cfg.GetFloat64("null"),
		HoleFraction: cfg.GetFloat64("holes"),
		Seed:         cfg.GetInt64("seed"),
	}
	return s.Generate()
}

func interpolateOptions(ctx context.Context, cfg *viper.Viper) ([]tessgrid.Option, error) {
	policy, err := tessgrid.ParseDegeneratePolicy(cfg.GetString("degenerate"))
	if err != nil {
		return nil, err
	}
	setters := []tessgrid.Option{
		tessgrid.WithLogger(log),
		tessgrid.WithMonitor(tessgrid.ContextMonitor(ctx, log)),
		tessgrid.WithWorkers(cfg.GetInt("workers")),
		tessgrid.WithEps(cfg.GetFloat64("eps")),
		tessgrid.WithPlaneTolerance(cfg.GetFloat64("plane-tolerance")),
		tessgrid.WithDegeneratePolicy(policy),
	}

	if src := cfg.GetString("aoi"); src != "" {
		data := []byte(src)
		if path, ok := strings.CutPrefix(src, "@"); ok {
			if data, err = os.ReadFile(path); err != nil {
				return nil, fmt.Errorf("tessgrid: reading area of interest: %v", err)
			}
		}
		aoi, err := grid.ParseGeoJSONAOI(data)
		if err != nil {
			return nil, err
		}
		setters = append(setters, tessgrid.WithAOI(aoi))
	}
	return setters, nil
}

func writeSVG(path string, width int, in grid.Grid, res *tessgrid.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	c, err := render.New(f, render.Bounds(in), width)
	if err != nil {
		return err
	}
	c.Grid(in, res.Grid)
	if res.TIN != nil {
		c.TIN(res.TIN)
	}
	c.End()
	return nil
}
