package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bodgit/png2ico"
	"github.com/bodgit/png2ico/indexed"
	"github.com/urfave/cli/v2"
)

var quantizers = map[string]indexed.Quantizer{
	"farthest":   indexed.FarthestPoint{},
	"median-cut": indexed.MedianCut{},
}

func quantizerNames() string {
	names := make([]string, 0, len(quantizers))
	for k := range quantizers {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// parseInputs turns the image arguments into inputs. A --colors option
// between images changes the palette size of every image that follows it.
func parseInputs(args []string, colors int) ([]png2ico.Input, error) {
	inputs := make([]png2ico.Input, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		var value string
		switch {
		case arg == "--colors" || arg == "-colors":
			if i+1 == len(args) {
				return nil, fmt.Errorf("flag needs an argument: %s", arg)
			}
			i++
			value = args[i]
		case strings.HasPrefix(arg, "--colors="), strings.HasPrefix(arg, "-colors="):
			value = arg[strings.IndexByte(arg, '=')+1:]
		default:
			inputs = append(inputs, png2ico.Input{File: arg, Colors: colors})
			continue
		}

		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value \"%s\" for flag %s", value, arg)
		}
		if _, err := indexed.BitsFor(n); err != nil {
			return nil, err
		}
		colors = n
	}

	return inputs, nil
}

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "png2ico"
	app.Usage = "Convert images into a Windows icon file"
	app.Version = "1.0.0"
	app.ArgsUsage = "ICOFILE [--colors N] IMAGE..."
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:  "colors",
			Value: png2ico.DefaultColors,
			Usage: "number of palette colors per image, one of 2, 16 or 256, may be repeated between images",
		},
		&cli.StringFlag{
			Name:  "quantizer",
			Value: "farthest",
			Usage: "palette selection algorithm, one of " + quantizerNames(),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.NArg() < 2 {
			_ = cli.ShowAppHelp(c)
			return cli.NewExitError(errors.New("an icon file and at least one image are required"), 1)
		}

		q, ok := quantizers[c.String("quantizer")]
		if !ok {
			return cli.NewExitError(fmt.Errorf("unknown quantizer \"%s\"", c.String("quantizer")), 1)
		}

		options := []png2ico.Option{
			png2ico.Colors(c.Int("colors")),
			png2ico.Strategy(q),
		}
		if c.Bool("verbose") {
			options = append(options, png2ico.Verbose())
		}

		inputs, err := parseInputs(c.Args().Tail(), c.Int("colors"))
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		logger := log.New(c.App.ErrWriter, "", 0)

		conv, err := png2ico.New(logger, options...)
		if err != nil {
			return cli.NewExitError(err, 1)
		}

		if err := conv.Convert(c.Args().First(), inputs...); err != nil {
			return cli.NewExitError(err, 1)
		}

		return nil
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
