package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1siamBot/ra2view/engine/assets"
	"github.com/1siamBot/ra2view/engine/export"
	"github.com/1siamBot/ra2view/engine/render3d"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func needArgs(c *cli.Context, n int) error {
	if c.NArg() >= n {
		return nil
	}
	cli.ShowCommandHelp(c, c.Command.Name)
	return cli.NewExitError(fmt.Sprintf("%s: need %d argument(s)", c.Command.Name, n), 2)
}

func fail(err error) error {
	if err == nil {
		return nil
	}
	return cli.NewExitError(err, 1)
}

var outFlag = &cli.StringFlag{
	Name:    "out",
	Aliases: []string{"o"},
	Usage:   "output path",
}

func commands(s *session) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "ls",
			Usage:     "List mounted archives, or the entries of one archive",
			ArgsUsage: "[ARCHIVE]",
			Action: func(c *cli.Context) error {
				return fail(s.list(c.App.Writer, c.Args().First()))
			},
		},
		{
			Name:      "extract",
			Usage:     "Copy raw files out of the archives",
			ArgsUsage: "NAME...",
			Flags:     []cli.Flag{outFlag},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				dir := c.String("out")
				if dir == "" {
					dir = "."
				}
				for _, name := range c.Args().Slice() {
					data, err := s.loader.Read(name)
					if err != nil {
						return fail(err)
					}
					if err := writeFile(filepath.Join(dir, name), data); err != nil {
						return fail(err)
					}
					fmt.Fprintf(c.App.Writer, "%s (%d bytes)\n", name, len(data))
				}
				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Describe a decoded asset",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				a, err := s.loader.Load(c.Args().First())
				if err != nil {
					return fail(err)
				}
				describe(c.App.Writer, a)
				return nil
			},
		},
		{
			Name:      "png",
			Usage:     "Render a palette, sprite, tile set or map preview as PNG or BMP",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				outFlag,
				&cli.IntFlag{Name: "frame", Usage: "sprite frame"},
				&cli.BoolFlag{Name: "sheet", Usage: "lay every sprite frame out in a grid"},
				&cli.IntFlag{Name: "cols", Value: 8, Usage: "sheet columns"},
				&cli.Float64Flag{Name: "scale", Value: 1, Usage: "resize factor"},
				&cli.StringFlag{Name: "filter", Value: "nearest", Usage: "nearest, bilinear or catmullrom"},
			},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				name := c.Args().First()
				a, err := s.loader.Load(name)
				if err != nil {
					return fail(err)
				}
				img, err := render(a, s.palette(), renderOptions{Frame: c.Int("frame"), Sheet: c.Bool("sheet"), Cols: c.Int("cols")})
				if err != nil {
					return fail(err)
				}
				if f := c.Float64("scale"); f != 1 {
					filter, err := export.ParseFilter(c.String("filter"))
					if err != nil {
						return fail(err)
					}
					img = export.Scale(img, f, filter)
				}
				return fail(export.Save(outPath(c, name, ".png"), img))
			},
		},
		{
			Name:      "gif",
			Usage:     "Animate every frame of a sprite",
			ArgsUsage: "NAME",
			Flags:     []cli.Flag{outFlag, &cli.IntFlag{Name: "delay", Value: 8, Usage: "frame delay in 1/100 s"}},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				name := c.Args().First()
				sp, err := s.loader.Sprite(name)
				if err != nil {
					return fail(err)
				}
				f, err := create(outPath(c, name, ".gif"))
				if err != nil {
					return fail(err)
				}
				defer f.Close()
				_, err = export.SpriteGIF(f, sp, s.palette(), c.Int("delay"))
				return fail(err)
			},
		},
		{
			Name:      "glb",
			Usage:     "Convert a voxel with its motion and parts to binary glTF",
			ArgsUsage: "NAME",
			Flags:     []cli.Flag{outFlag, &cli.IntFlag{Name: "frame", Usage: "motion frame"}},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				name := c.Args().First()
				v, err := s.loader.Voxel(name)
				if err != nil {
					return fail(err)
				}
				m, err := v.Mesh(c.Int("frame"), s.palette())
				if err != nil {
					return fail(err)
				}
				return fail(render3d.SaveGLB(outPath(c, name, ".glb"), m, v.Name()))
			},
		},
		{
			Name:      "wav",
			Usage:     "Write one sample of an audio bank as WAV",
			ArgsUsage: "INDEX SAMPLE",
			Flags:     []cli.Flag{outFlag, &cli.BoolFlag{Name: "pcm", Usage: "decode ADPCM to 16-bit PCM"}},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 2); err != nil {
					return err
				}
				a, err := s.loader.Load(c.Args().Get(0))
				if err != nil {
					return fail(err)
				}
				ai, ok := a.(*assets.AudioIndex)
				if !ok {
					return fail(errors.Errorf("%s is a %s, not an audio index", a.Name(), a.Kind()))
				}
				sample, err := ai.Bank.Sample(c.Args().Get(1))
				if err != nil {
					return fail(err)
				}
				var data []byte
				if c.Bool("pcm") {
					data, err = sample.PCMWAV()
				} else {
					data, err = sample.WAV()
				}
				if err != nil {
					return fail(err)
				}
				return fail(writeFile(outPath(c, sample.Name, ".wav"), data))
			},
		},
		{
			Name:      "ini",
			Usage:     "Print sections, keys or a value of a config file",
			ArgsUsage: "NAME [SECTION [KEY]]",
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				return fail(s.printINI(c.App.Writer, c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)))
			},
		},
		{
			Name:      "csf",
			Usage:     "Print string table entries",
			ArgsUsage: "NAME [LABEL]",
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				return fail(s.printCSF(c.App.Writer, c.Args().Get(0), c.Args().Get(1)))
			},
		},
		{
			Name:      "map",
			Usage:     "Export a map as JSON and its preview as PNG",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "json", Usage: "JSON output path"},
				&cli.StringFlag{Name: "preview", Usage: "preview image path"},
			},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				return fail(s.exportMap(c.Args().First(), c.String("json"), c.String("preview")))
			},
		},
		{
			Name:      "dump",
			Usage:     "Extract every entry of an archive, converting what can be rendered",
			ArgsUsage: "ARCHIVE",
			Flags: []cli.Flag{
				outFlag,
				&cli.BoolFlag{Name: "convert", Usage: "also write PNGs for sprites, tiles and palettes"},
			},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1); err != nil {
					return err
				}
				dir := c.String("out")
				if dir == "" {
					dir = strings.TrimSuffix(c.Args().First(), filepath.Ext(c.Args().First()))
				}
				st, err := s.dump(c.Context, c.Args().First(), dir, c.Bool("convert"))
				if err != nil {
					return fail(err)
				}
				fmt.Fprintf(c.App.Writer, "%d written, %d converted, %d failed\n", st.Written, st.Converted, st.Failed)
				return nil
			},
		},
	}
}

// outPath is --out, or name with its extension replaced.
func outPath(c *cli.Context, name, ext string) string {
	if p := c.String("out"); p != "" {
		return p
	}
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + ext
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "mkdir")
	}
	f, err := os.Create(path)
	return f, errors.Wrap(err, "create")
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write")
}
