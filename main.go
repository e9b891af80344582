//go:build !js

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/jcgregorio/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"gokaleido/pkg/config"
	"gokaleido/pkg/kaleido"
	"gokaleido/pkg/render"
	"gokaleido/pkg/session"
	"gokaleido/pkg/utils"
)

// appFlags holds the global command line flags.
type appFlags struct {
	ConfigFile string
	Verbose    bool
	NoColor    bool
	DumpTokens bool
	DumpAST    bool
	Fold       bool
}

func (flags *appFlags) AsCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "JSON5 settings file (precedence overrides, folding, history file).",
			EnvVars:     []string{"KALEIDO_CONFIG"},
			Destination: &flags.ConfigFile,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "Log debug messages to stderr.",
			Destination: &flags.Verbose,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output.",
			Destination: &flags.NoColor,
		},
		&cli.BoolFlag{
			Name:        "dump-tokens",
			Usage:       "Print the tokens of every input before parsing it.",
			Destination: &flags.DumpTokens,
		},
		&cli.BoolFlag{
			Name:        "dump-ast",
			Usage:       "Print the AST of every input after parsing it.",
			Destination: &flags.DumpAST,
		},
		&cli.BoolFlag{
			Name:        "fold",
			Usage:       "Fold constant arithmetic before compiling.",
			Destination: &flags.Fold,
		},
	}
}

// loadConfig reads the settings file, if any, and applies the flags on top.
func (flags *appFlags) loadConfig() (config.Config, error) {
	var cfg config.Config
	if flags.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(flags.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg.DumpTokens = cfg.DumpTokens || flags.DumpTokens
	cfg.DumpAST = cfg.DumpAST || flags.DumpAST
	cfg.Fold = cfg.Fold || flags.Fold
	return cfg, nil
}

func (flags *appFlags) newLogger() *logger.Logger {
	return logger.NewFromOptions(&logger.Options{
		SyncWriter:   os.Stderr,
		IncludeDebug: flags.Verbose,
	})
}

func main() {
	var flags appFlags
	var log *logger.Logger

	newSession := func() (*session.Session, error) {
		cfg, err := flags.loadConfig()
		if err != nil {
			return nil, err
		}
		return session.New(cfg, log, os.Stdout)
	}

	cliApp := &cli.App{
		Name:  "kaleido",
		Usage: "Parse and run Kaleidoscope programs.",
		Flags: (&flags).AsCliFlags(),
		Before: func(c *cli.Context) error {
			color.NoColor = color.NoColor || flags.NoColor
			log = flags.newLogger()
			return nil
		},
		Action: func(c *cli.Context) error {
			return runREPL(c.Context, &flags, log)
		},
		Commands: []*cli.Command{
			{
				Name:  "repl",
				Usage: "Start an interactive session.",
				Action: func(c *cli.Context) error {
					return runREPL(c.Context, &flags, log)
				},
			},
			{
				Name:      "run",
				Usage:     "Run every ';'-separated item of a program file.",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "keep-going",
						Usage: "Report every failing item instead of stopping at the first.",
					},
					&cli.BoolFlag{
						Name:  "print",
						Usage: "Print the value of every top-level expression.",
					},
				},
				Action: func(c *cli.Context) error {
					src, err := readArg(c)
					if err != nil {
						return err
					}
					s, err := newSession()
					if err != nil {
						return err
					}
					log.Debugf("running %s", c.Args().First())
					results, err := s.ExecProgram(c.Context, src, c.Bool("keep-going"))
					if c.Bool("print") {
						for _, res := range results {
							if res.Ran {
								fmt.Println("=>", formatValue(res.Value))
							}
						}
					}
					return err
				},
			},
			{
				Name:      "tokens",
				Usage:     "Print the tokens of a program file, comments included.",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					src, err := readArg(c)
					if err != nil {
						return err
					}
					tokens, err := kaleido.Lex(src)
					for _, tok := range tokens {
						fmt.Println(tok)
					}
					return err
				},
			},
			{
				Name:      "ast",
				Usage:     "Print the syntax tree of every item of a program file.",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					src, err := readArg(c)
					if err != nil {
						return err
					}
					cfg, err := flags.loadConfig()
					if err != nil {
						return err
					}
					prec, err := cfg.PrecedenceTable()
					if err != nil {
						return err
					}
					fns, err := kaleido.ParseProgram(src, prec)
					for _, fn := range fns {
						if cfg.Fold {
							fn = kaleido.FoldFunction(fn)
						}
						fmt.Print(render.Text(render.Tree(fn), "  "))
					}
					return err
				},
			},
		},
	}

	if err := cliApp.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %s", err.Error()))
		os.Exit(1)
	}
}

func readArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.Errorf("%s: expected exactly one FILE argument, got %d", c.Command.Name, c.NArg())
	}
	return utils.ReadSource(c.Args().First())
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
