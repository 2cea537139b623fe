// Command ra2asset lists, extracts and converts Red Alert 2 game assets.
//
// Usage:
//
//	ra2asset --game "/games/Red Alert 2" ls
//	ra2asset --game "/games/Red Alert 2" png --sheet -o gi.png gi.shp
//	ra2asset --game "/games/Red Alert 2" dump -o out conquer.mix
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	s := &session{}
	app := cli.NewApp()
	app.Name = "ra2asset"
	app.Usage = "Red Alert 2 asset tool"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to ra2view.yaml",
		},
		&cli.StringFlag{
			Name:    "game",
			Aliases: []string{"g"},
			EnvVars: []string{"RA2VIEW_GAME_DIR"},
			Usage:   "game install directory",
		},
		&cli.StringFlag{
			Name:  "loose",
			Usage: "directory of loose files searched before the archives",
		},
		&cli.StringSliceFlag{
			Name:  "mix",
			Usage: "extra archive to mount on top, repeatable",
		},
		&cli.StringFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Usage:   "palette used for images",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "parallel workers for dump",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "debug logging",
		},
	}
	app.Before = s.open
	app.After = func(*cli.Context) error {
		s.close()
		return nil
	}
	app.Commands = commands(s)
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
