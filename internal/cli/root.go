// Package cli implements the rosterctl command line.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/shift-roster-go/pkg/logger"
	"github.com/arnavshah/shift-roster-go/pkg/models"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// ErrNoRoster is returned by solve when the whole ladder failed.
var ErrNoRoster = errors.New("no roster could be built")

type options struct {
	logLevel string
	verbose  bool
	output   string
}

// NewRootCmd builds the rosterctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Build and inspect monthly shift rosters offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log ladder attempts to stderr")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level with --verbose")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(newSolveCmd(opts), newDiagnoseCmd(opts), newLadderCmd(opts))
	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }

func (o *options) logger(cmd *cobra.Command) *logger.Logger {
	if !o.verbose {
		return logger.Discard()
	}
	return logger.NewWriter(cmd.ErrOrStderr(), o.logLevel)
}

func (o *options) checkOutput() error {
	switch o.output {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("unknown output format %q", o.output)
}

// emit writes v as indented JSON. It returns false for table output.
func (o *options) emit(w io.Writer, v interface{}) (bool, error) {
	if o.output != "json" {
		return false, nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

// loadRequest reads a request file. ".yaml" and ".yml" are decoded as YAML,
// everything else as JSON. "-" reads JSON from stdin.
func loadRequest(cmd *cobra.Command, path string) (*roster.Request, error) {
	if path == "" {
		return nil, errors.New("a request file is required (-f)")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}

	var in models.ScheduleInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&in)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return in.ToRequest()
}
