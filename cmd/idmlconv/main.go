package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/idml"
	"github.com/tdewolff/idml/document"
	"github.com/tdewolff/idml/svg"
)

type Convert struct {
	Output  string   `short:"o" default:"." desc:"Output directory"`
	Verbose bool     `short:"v" desc:"Log warnings in addition to errors"`
	Inputs  []string `index:"*" desc:"Input IDML files"`
}

func main() {
	root := argp.NewCmd(&Convert{}, "IDML to SVG conversion by Taco de Wolff")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Convert) Run() error {
	if len(cmd.Inputs) == 0 {
		return argp.ShowUsage
	}

	level := zerolog.ErrorLevel
	if cmd.Verbose {
		level = zerolog.WarnLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	fatal := false
	for _, input := range cmd.Inputs {
		if err := cmd.convert(input, log); err != nil {
			log.Error().Str("file", input).Err(err).Msg("conversion failed")
			fatal = true
		}
	}
	if fatal {
		return fmt.Errorf("one or more conversions failed")
	}
	return nil
}

func (cmd *Convert) convert(input string, log zerolog.Logger) error {
	pkg, err := document.Open(input)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	renderer := svg.New(func(page int) (io.WriteCloser, error) {
		return os.Create(filepath.Join(cmd.Output, fmt.Sprintf("%s_%d.svg", name, page)))
	})

	doc := idml.Resolve(pkg)
	if err := doc.Render(renderer); err != nil {
		return err
	}

	// the post-hoc diagnostic report: warnings do not imply failure
	for _, diag := range doc.Diags {
		event := log.Warn()
		if diag.Level != idml.Warning {
			event = log.Error()
		}
		event.Str("file", input).Str("level", diag.Level.String()).Str("elem", diag.Elem).Msg(diag.Message)
	}
	log.Info().Str("file", input).Int("diagnostics", len(doc.Diags)).Msg("converted")
	return nil
}
