package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/vkngwrapper/arsenal/memsim/firstfit"
	"github.com/vkngwrapper/arsenal/memsim/script"
	"golang.org/x/exp/slog"
)

var globalFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "size",
		Value: 100,
		Usage: "number of addresses in the simulated address space",
	},
	&cli.BoolFlag{
		Name:  "json",
		Usage: "print dump commands as a json map instead of block lists",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log every allocator operation to stderr",
	},
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openScript(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open script %s: %v", path, err)
	}
	return f, nil
}

func runScript(c *cli.Context) error {
	in, err := openScript(c.Args().First())
	if err != nil {
		return err
	}
	defer in.Close()

	commands, err := script.Parse(in)
	if err != nil {
		return err
	}

	allocator, err := firstfit.New(newLogger(c), firstfit.CreateOptions{MaxSize: c.Int("size")})
	if err != nil {
		return err
	}

	runner := script.Runner{
		Allocator: allocator,
		Out:       os.Stdout,
		Json:      c.Bool("json"),
	}
	return runner.Run(commands)
}

func main() {
	app := &cli.App{
		Name:  "memsim",
		Usage: "simulate a first-fit allocator over an abstract address space",
		Flags: globalFlags,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run a script of malloc/free/defrag commands",
				ArgsUsage: "[script file, or - for stdin]",
				Action:    runScript,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
