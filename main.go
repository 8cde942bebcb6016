package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/mau"
)

const defaultInputFile = "index.mau"

// outputExtensions gives the extension of the generated file for each visitor
var outputExtensions = map[string]string{
	mau.VisitorHTML: ".html",
	mau.VisitorYAML: ".yaml",
}

// buildEnvironment loads the configuration file and applies the command line
// options on top of it. Assignments given with --set have the last word.
func buildEnvironment(c *cli.Context) (*env.Environment, error) {
	e, err := env.LoadYAML(c.String("config-file"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("visitor") || e.GetString("mau.visitor.name", "") == "" {
		e.Set("mau.visitor.name", c.String("visitor"))
	}
	if dir := c.String("templates-dir"); dir != "" {
		e.Set("mau.visitor.templates_directory", dir)
	}
	if prefixes := c.StringSlice("prefix"); len(prefixes) > 0 {
		e.Set("mau.visitor.prefixes", prefixes)
	}

	for _, assignment := range c.StringSlice("set") {
		key, value, err := env.ParseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		e.Set(key, value)
	}

	return e, nil
}

// outputName derives the name of the output file from the input file name.
func outputName(inputFileName string, e *env.Environment) string {
	name := e.GetString("mau.visitor.name", mau.DefaultVisitor)
	ext, ok := outputExtensions[name]
	if !ok {
		ext = e.GetString("mau.visitor.output_extension", ".txt")
	}
	return strings.TrimSuffix(inputFileName, filepath.Ext(inputFileName)) + ext
}

// convert processes the input file once and writes the result.
func convert(m *mau.Mau, inputFileName string, outputFileName string, dryrun bool, sugar *zap.SugaredLogger) error {
	start := time.Now()

	out, err := m.ProcessFile(inputFileName)
	if err != nil {
		return err
	}

	sugar.Debugw("document processed", "input", inputFileName, "elapsed", time.Since(start))

	if dryrun {
		fmt.Printf("processed %v, %s of output not written\n", inputFileName, humanize.Bytes(uint64(len(out))))
		return nil
	}

	if outputFileName == "-" {
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	}

	if err := os.WriteFile(outputFileName, []byte(out), 0664); err != nil {
		return err
	}

	fmt.Printf("written %v (%s)\n", outputFileName, humanize.Bytes(uint64(len(out))))
	return nil
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	var z *zap.Logger
	var err error

	// Setup the logging system
	if c.Bool("debug") {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	sugar := z.Sugar()
	defer sugar.Sync()

	// Get the input file name
	inputFileName := defaultInputFile
	if c.Args().Present() {
		inputFileName = c.Args().First()
	} else {
		fmt.Printf("no input file provided, using \"%v\"\n", inputFileName)
	}

	e, err := buildEnvironment(c)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	outputFileName := c.String("output")
	if len(outputFileName) == 0 {
		outputFileName = outputName(inputFileName, e)
	}

	m := mau.New(
		mau.WithEnvironment(e),
		mau.WithLogger(sugar),
		mau.WithFrontMatter(c.Bool("front-matter")),
	)

	// If the user specified to watch, process the input file every time it is modified
	if c.Bool("watch") {
		return watch(c.Context, inputFileName, func() {
			if err := convert(m, inputFileName, outputFileName, c.Bool("dryrun"), sugar); err != nil {
				// Keep watching, the next save may fix the document
				sugar.Errorw("processing failed", "input", inputFileName, "error", err)
			}
		}, sugar)
	}

	return convert(m, inputFileName, outputFileName, c.Bool("dryrun"), sugar)
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "mau",
		Version:   "v0.1.0",
		Usage:     "process a Mau document and render it with templates",
		UsageText: "mau [options] [INPUT_FILE] (default input file is " + defaultInputFile + ")",
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the result to `FILE`, - for the standard output (default is the input file name with the extension of the visitor)",
			},
			&cli.StringFlag{
				Name:    "config-file",
				Aliases: []string{"c"},
				Value:   "mau.yaml",
				Usage:   "read the configuration from `FILE`, ignored if it does not exist",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "set a configuration `KEY=VALUE`, the value is parsed as YAML (can be repeated)",
			},
			&cli.StringFlag{
				Name:    "visitor",
				Aliases: []string{"t"},
				Value:   mau.DefaultVisitor,
				Usage:   "output format: " + strings.Join(mau.Visitors(), ", "),
			},
			&cli.StringFlag{
				Name:  "templates-dir",
				Usage: "load templates from `DIR`",
			},
			&cli.StringSliceFlag{
				Name:  "prefix",
				Usage: "template `PREFIX` tried before the plain names (can be repeated)",
			},
			&cli.BoolFlag{
				Name:  "front-matter",
				Usage: "read the YAML header delimited by --- lines at the start of the document",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not generate output file, just process input file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the file for changes",
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
