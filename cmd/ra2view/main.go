// Command ra2view shows Red Alert 2 sprites, tile sets, voxels, map
// previews and palettes in a window.
//
//	ra2view --game "/games/Red Alert 2" gi.shp htnk.vxl clear01.tem
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/1siamBot/ra2view/engine/assets"
	"github.com/1siamBot/ra2view/engine/config"
	"github.com/1siamBot/ra2view/engine/input"
	"github.com/1siamBot/ra2view/engine/palette"
	"github.com/1siamBot/ra2view/engine/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Palettes offered by the P key when the game holds them.
var knownPalettes = []string{
	"unittem.pal", "unitsno.pal", "uniturb.pal",
	"isotem.pal", "isosno.pal", "isourb.pal",
	"temperat.pal", "snow.pal", "urban.pal", "cameo.pal",
}

const playTicks = 4 // update ticks per animation frame

type viewer struct {
	loader *assets.Loader
	camera *render.Camera
	input  *input.State

	scenes   []*render.Scene
	scene    int
	palettes []string
	pal      int

	playing bool
	ticks   int
	images  map[image.Image]*ebiten.Image
	status  string
}

func newViewer(l *assets.Loader, cfg *config.Config, names []string) (*viewer, error) {
	v := &viewer{
		loader: l,
		camera: render.NewCamera(cfg.View.Width, cfg.View.Height),
		input:  input.NewState(),
		images: make(map[image.Image]*ebiten.Image),
	}
	v.palettes = append(v.palettes, cfg.Palette)
	for _, p := range knownPalettes {
		if p != cfg.Palette && l.Has(p) {
			v.palettes = append(v.palettes, p)
		}
	}
	pal := v.palette()
	for _, name := range names {
		a, err := l.Load(name)
		if err != nil {
			log.WithError(err).WithField("asset", name).Warn("ra2view: skipped")
			continue
		}
		s, err := render.NewScene(a, pal)
		if err != nil {
			log.WithError(err).WithField("asset", name).Warn("ra2view: skipped")
			continue
		}
		v.scenes = append(v.scenes, s)
	}
	if len(v.scenes) == 0 {
		return nil, errors.New("ra2view: nothing to show")
	}
	v.camera.SetZoom(cfg.View.Zoom)
	v.fit()
	return v, nil
}

func (v *viewer) palette() *palette.Palette {
	name := v.palettes[v.pal]
	p, err := v.loader.Palette(name)
	if err != nil {
		v.status = fmt.Sprintf("%s: %v", name, err)
		return palette.Grayscale()
	}
	return p
}

func (v *viewer) current() *render.Scene { return v.scenes[v.scene] }

func (v *viewer) fit() {
	img, err := v.current().Image()
	if err != nil {
		return
	}
	b := img.Bounds()
	v.camera.Fit(b.Dx(), b.Dy())
}

func (v *viewer) Update() error {
	in := v.input
	in.Update()
	s := v.current()

	if in.JustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if in.JustPressed(ebiten.KeyTab) {
		d := 1
		if in.Pressed(ebiten.KeyShift) {
			d = len(v.scenes) - 1
		}
		v.scene = (v.scene + d) % len(v.scenes)
		v.status = ""
		v.fit()
		s = v.current()
	}
	if in.JustPressed(ebiten.KeyP) {
		v.pal = (v.pal + 1) % len(v.palettes)
		pal := v.palette()
		for _, sc := range v.scenes {
			sc.SetPalette(pal)
		}
		v.images = make(map[image.Image]*ebiten.Image)
	}
	if in.Repeat(ebiten.KeyRight) || in.Repeat(ebiten.KeyPeriod) {
		s.Step(1)
	}
	if in.Repeat(ebiten.KeyLeft) || in.Repeat(ebiten.KeyComma) {
		s.Step(-1)
	}
	if in.JustPressed(ebiten.KeySpace) {
		v.playing = !v.playing
	}
	if v.playing && s.Animated() {
		v.ticks++
		if v.ticks%playTicks == 0 {
			s.Step(1)
		}
	}
	if in.Pressed(ebiten.KeyQ) {
		s.Rotate(-0.05)
	}
	if in.Pressed(ebiten.KeyE) {
		s.Rotate(0.05)
	}
	if in.JustPressed(ebiten.KeyF) {
		v.fit()
	}

	speed := v.camera.Speed / 60.0
	if in.Pressed(ebiten.KeyW, ebiten.KeyUp) {
		v.camera.Pan(0, -speed)
	}
	if in.Pressed(ebiten.KeyS, ebiten.KeyDown) {
		v.camera.Pan(0, speed)
	}
	if in.Pressed(ebiten.KeyA) {
		v.camera.Pan(-speed, 0)
	}
	if in.Pressed(ebiten.KeyD) {
		v.camera.Pan(speed, 0)
	}
	if in.JustPressed(ebiten.KeyEqual, ebiten.KeyKPAdd) {
		v.camera.ZoomAt(2, v.camera.ScreenW/2, v.camera.ScreenH/2)
	}
	if in.JustPressed(ebiten.KeyMinus, ebiten.KeyKPSubtract) {
		v.camera.ZoomAt(0.5, v.camera.ScreenW/2, v.camera.ScreenH/2)
	}
	if in.ScrollY != 0 {
		f := 1.1
		if in.ScrollY < 0 {
			f = 1 / f
		}
		v.camera.ZoomAt(f, in.MouseX, in.MouseY)
	}
	if in.Dragging {
		v.camera.Pan(float64(-in.MouseDX), float64(-in.MouseDY))
	}
	return nil
}

func (v *viewer) frame() (*ebiten.Image, error) {
	img, err := v.current().Image()
	if err != nil {
		return nil, err
	}
	if e, ok := v.images[img]; ok {
		return e, nil
	}
	e := ebiten.NewImageFromImage(img)
	v.images[img] = e
	return e, nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{32, 36, 44, 255})
	s := v.current()
	msg := v.status
	if img, err := v.frame(); err != nil {
		msg = err.Error()
	} else {
		scale, tx, ty := v.camera.Transform()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(tx, ty)
		if scale >= 1 {
			op.Filter = ebiten.FilterNearest
		} else {
			op.Filter = ebiten.FilterLinear
		}
		screen.DrawImage(img, op)
	}

	x, y := v.camera.ScreenToWorld(v.input.MouseX, v.input.MouseY)
	hud := fmt.Sprintf("%s [%d/%d]  frame %d/%d  palette %s  zoom %.2fx  (%.0f, %.0f)\n"+
		"[Tab] next [</>] frame [Space] play [P] palette [Q/E] rotate [F] fit [Esc] quit",
		s.Name(), v.scene+1, len(v.scenes), s.Current()+1, s.Frames(),
		v.palettes[v.pal], v.camera.Zoom, x, y)
	if msg != "" {
		hud += "\n" + msg
	}
	ebitenutil.DebugPrint(screen, hud)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.camera.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowAppHelpAndExit(c, 1)
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if c.IsSet("game") {
		cfg.GameDir = c.String("game")
	}
	if c.IsSet("loose") {
		cfg.LooseDir = c.String("loose")
	}
	if c.IsSet("palette") {
		cfg.Palette = c.String("palette")
	}
	if err := cfg.Log.Setup(); err != nil {
		return cli.NewExitError(err, 1)
	}

	l, err := assets.Open(cfg, c.StringSlice("mix")...)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer l.Resolver().Close()
	defer l.Close()

	v, err := newViewer(l, cfg, c.Args().Slice())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	ebiten.SetWindowSize(cfg.View.Width, cfg.View.Height)
	ebiten.SetWindowTitle("ra2view")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil && err != ebiten.Termination {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "ra2view"
	app.Usage = "view Red Alert 2 assets"
	app.ArgsUsage = "NAME..."
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to ra2view.yaml"},
		&cli.StringFlag{Name: "game", Aliases: []string{"g"}, EnvVars: []string{"RA2VIEW_GAME_DIR"}, Usage: "game install directory"},
		&cli.StringFlag{Name: "loose", Usage: "directory of loose files searched before the archives"},
		&cli.StringSliceFlag{Name: "mix", Usage: "extra archive to mount on top, repeatable"},
		&cli.StringFlag{Name: "palette", Aliases: []string{"p"}, Usage: "initial palette"},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
