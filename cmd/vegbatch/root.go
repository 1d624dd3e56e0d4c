package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/vegetation-health-mcp/internal/batch"
	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
	"github.com/ironsheep/vegetation-health-mcp/internal/vegetation"
)

// AppFs defines the filesystem interface to use, allows mocking in tests.
var AppFs = afero.NewOsFs()

// SetFs replaces the current filesystem with the provided one and returns a function to restore it.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

const envPrefix = "VEGBATCH"

// newRootCmd builds the vegbatch command tree. Each call gets its own viper
// instance so flag, env and config values never leak between invocations.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vegbatch [flags] <image|dir>...",
		Short: "Batch vegetation health analysis for aerial captures",
		Long: `vegbatch classifies every pixel of each capture with a vegetation index,
buckets vegetation pixels into health levels and reports a health score per image.

Arguments may be image files or directories. Directories are scanned for
PNG, JPEG, GIF, WebP, TIFF and BMP files; classified maps from earlier runs
are skipped.`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, v, args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vegbatch.yaml)")
	flags.Bool("debug", false, "log per-image progress to stderr")

	flags = cmd.Flags()
	flags.StringP("profile", "p", vegetation.DefaultProfileKey,
		"crop profile ("+strings.Join(vegetation.ProfileKeys(), ", ")+")")
	flags.Float64P("threshold", "t", 0, "override the profile's index threshold")
	flags.Bool("equalize", false, "equalize contrast before classifying")
	flags.Int("max-dimension", imaging.DefaultMaxDimension, "cap on the longest image side")
	flags.IntP("workers", "w", 0, "concurrent analyses (default GOMAXPROCS)")
	flags.StringP("output", "o", "", "directory for classified maps and reports")
	flags.StringP("format", "f", string(imaging.FormatPNG), "classified map format (png, jpeg, webp)")
	flags.Int("quality", 0, "JPEG/WebP quality, 0 for the format default")
	flags.Bool("count-plants", false, "count connected plant regions")
	flags.Int("min-plant-area", 25, "smallest region in pixels counted as a plant")

	cobra.CheckErr(v.BindPFlags(cmd.PersistentFlags()))
	cobra.CheckErr(v.BindPFlags(cmd.Flags()))

	cmd.AddCommand(newProfilesCmd(v))
	return cmd
}

// initConfig reads the config file and environment into v.
//
// An explicit --config must exist; the default $HOME/.vegbatch.yaml is optional.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetFs(AppFs)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.SetConfigName(".vegbatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return inputError("failed to read config: %w", err)
	}
	return nil
}

// settings reads typed values from v and keeps the first conversion error.
// viper's Get* accessors turn unparsable values into zero silently.
type settings struct {
	v   *viper.Viper
	err error
}

func (s *settings) fail(key string, err error) {
	if s.err == nil {
		s.err = inputError("invalid value %q for %s: %w", s.v.Get(key), key, err)
	}
}

func (s *settings) Int(key string) int {
	n, err := cast.ToIntE(s.v.Get(key))
	if err != nil {
		s.fail(key, err)
	}
	return n
}

func (s *settings) Bool(key string) bool {
	b, err := cast.ToBoolE(s.v.Get(key))
	if err != nil {
		s.fail(key, err)
	}
	return b
}

func (s *settings) Float64(key string) float64 {
	f, err := cast.ToFloat64E(s.v.Get(key))
	if err != nil {
		s.fail(key, err)
	}
	return f
}

// runnerFromConfig builds a batch runner from the merged flag, env and file settings.
func runnerFromConfig(v *viper.Viper, stderr io.Writer) (*batch.Runner, error) {
	set := &settings{v: v}
	opts := vegetation.Options{
		Profile:      v.GetString("profile"),
		Equalize:     set.Bool("equalize"),
		CountPlants:  set.Bool("count-plants"),
		MinPlantArea: set.Int("min-plant-area"),
	}
	if v.IsSet("threshold") {
		opts.Threshold = vegetation.Float64(set.Float64("threshold"))
	}
	runner := &batch.Runner{
		Fs:           AppFs,
		Workers:      set.Int("workers"),
		MaxDimension: set.Int("max-dimension"),
		OutputDir:    v.GetString("output"),
		Quality:      set.Int("quality"),
		Logger:       log.New(io.Discard, "", 0),
	}
	if set.Bool("debug") {
		runner.Logger = log.New(stderr, "vegbatch: ", log.Ldate|log.Ltime)
	}
	if set.err != nil {
		return nil, set.err
	}

	if _, err := vegetation.ResolveProfile(opts); err != nil {
		return nil, inputError("%w", err)
	}
	runner.Options = opts

	format, err := imaging.ParseFormat(v.GetString("format"))
	if err != nil {
		return nil, inputError("%w", err)
	}
	runner.Format = format
	return runner, nil
}

// collectPaths expands directory arguments into the image files they contain.
func collectPaths(fs afero.Fs, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		isDir, err := afero.IsDir(fs, arg)
		if err != nil {
			return nil, inputError("cannot access %s: %w", arg, err)
		}
		if !isDir {
			paths = append(paths, arg)
			continue
		}
		found, err := batch.Discover(fs, arg)
		if err != nil {
			return nil, &ExitCodeError{Code: ExitGeneralRuntimeError, Err: err}
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, inputError("no images found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

func runBatch(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if len(args) == 0 {
		return inputError("at least one image or directory is required")
	}

	runner, err := runnerFromConfig(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	paths, err := collectPaths(AppFs, args)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(cmd.Context(), paths)
	if summary != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return &ExitCodeError{Code: ExitGeneralRuntimeError, Err: fmt.Errorf("failed to write summary: %w", err)}
		}
	}
	if runErr != nil {
		return &ExitCodeError{Code: ExitGeneralRuntimeError, Err: runErr}
	}
	if summary.Failed > 0 {
		return &ExitCodeError{
			Code: ExitImagesFailed,
			Err:  fmt.Errorf("%d of %d images failed", summary.Failed, len(summary.Items)),
		}
	}
	return nil
}
