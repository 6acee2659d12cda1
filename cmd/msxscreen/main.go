package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	msx "github.com/nataliapc/aseprite-msx"
	"github.com/nataliapc/aseprite-msx/screen"
)

const defaultDB = "msxscreen.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// modeFor resolves the screen mode from the --mode flag or, failing
// that, from a file extension.
func modeFor(c *cli.Context, path string) (screen.Mode, error) {
	if name := c.String("mode"); name != "" {
		if m, err := screen.ModeByName(name); err == nil {
			return m, nil
		}
		var n int
		if _, err := fmt.Sscanf(name, "%d", &n); err == nil {
			if _, err := screen.Descriptor(screen.Mode(n)); err == nil {
				return screen.Mode(n), nil
			}
		}
		return 0, fmt.Errorf("unknown screen mode %q", name)
	}
	return msx.ModeFromPath(path)
}

func writePNG(path string, m image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, m)
}

func main() {
	app := cli.NewApp()

	app.Name = "msxscreen"
	app.Usage = "MSX screen file conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"MSXSCREEN_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "decode",
			Usage:     "Convert a screen file to PNG",
			ArgsUsage: "FILE [PNG]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "mode",
					Usage: "screen mode, e.g. SC5 or 5 (default: from FILE extension)",
				},
				&cli.BoolFlag{
					Name:  "sprites",
					Usage: "render the sprite planes onto the bitmap",
				},
				&cli.IntFlag{
					Name:  "sprite-size",
					Value: 16,
					Usage: "sprite size, 8 or 16",
				},
				&cli.BoolFlag{
					Name:  "tile-layer",
					Usage: "also write the raw tile pattern table (tiled modes)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				in := c.Args().First()

				mode, err := modeFor(c, in)
				if err != nil {
					return cli.Exit(err, 1)
				}

				switch c.Int("sprite-size") {
				case 8, 16:
				default:
					return cli.Exit("sprite-size must be 8 or 16", 1)
				}

				img, err := msx.DecodeFile(in, mode, &screen.DecodeOptions{
					RenderSprites: c.Bool("sprites"),
					SpriteSize16:  c.Int("sprite-size") == 16,
					TileLayer:     c.Bool("tile-layer"),
				})
				if err != nil {
					return cli.Exit(err, 1)
				}

				out := c.Args().Get(1)
				if out == "" {
					out = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
				}
				if err := writePNG(out, img.Bitmap); err != nil {
					return cli.Exit(err, 1)
				}

				if img.Tiles != nil {
					tiles := strings.TrimSuffix(out, ".png") + ".tiles.png"
					if err := writePNG(tiles, img.Tiles); err != nil {
						return cli.Exit(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:      "encode",
			Usage:     "Convert an image to a screen file",
			ArgsUsage: "IMAGE FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "mode",
					Usage: "screen mode, e.g. SC5 or 5 (default: from FILE extension)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				in, out := c.Args().Get(0), c.Args().Get(1)

				mode, err := modeFor(c, out)
				if err != nil {
					return cli.Exit(err, 1)
				}

				f, err := os.Open(in)
				if err != nil {
					return cli.Exit(err, 1)
				}
				m, _, err := image.Decode(f)
				f.Close()
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := msx.EncodeFile(out, m, mode); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Print the geometry of a screen file",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "mode",
					Usage: "screen mode, e.g. SC5 or 5 (default: from FILE extension)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				in := c.Args().First()

				mode, err := modeFor(c, in)
				if err != nil {
					return cli.Exit(err, 1)
				}

				cfg, err := msx.DecodeFileConfig(in, mode)
				if err != nil {
					return cli.Exit(err, 1)
				}

				d, err := screen.Descriptor(mode)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("%s: %v, %dx%d, %d colors, %d byte VRAM dump\n",
					in, mode, cfg.Width, cfg.Height, d.MaxColors, d.FileSize)

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan a directory tree and catalog every screen file",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := msx.NewScreenDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				m := msx.New(db, newLogger(c))
				if err := m.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
