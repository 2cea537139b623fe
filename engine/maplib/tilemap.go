// Package maplib reads Red Alert 2 map files (.map, .yrm, .mpr): an INI
// document whose [IsoMapPack5] and [PreviewPack] sections carry base64 LZO
// streams of terrain cells and a thumbnail.
package maplib

import (
	"encoding/json"
	"image"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/1siamBot/ra2view/engine/binio"
	"github.com/1siamBot/ra2view/engine/ini"
	"github.com/1siamBot/ra2view/engine/tmp"
	"github.com/pkg/errors"
)

// Cell is one iso terrain cell.
type Cell struct {
	X       int   `json:"x"`
	Y       int   `json:"y"`
	Tile    int32 `json:"tile"`    // tile set index, 0 for clear ground
	SubTile uint8 `json:"subtile"` // tile within the set
	Level   uint8 `json:"level"`   // elevation (0-14)
	Ice     uint8 `json:"ice,omitempty"`
}

// StartPos is a player start waypoint.
type StartPos struct {
	PlayerSlot int `json:"player_slot"`
	X          int `json:"x"`
	Y          int `json:"y"`
}

// TileMap is a decoded map.
type TileMap struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Theater string `json:"theater"`

	Size      image.Rectangle `json:"size"`       // [Map] Size
	LocalSize image.Rectangle `json:"local_size"` // playable area

	Cells          []Cell     `json:"cells"`
	StartPositions []StartPos `json:"start_positions"`
	MaxPlayers     int        `json:"max_players"`

	// Isometric cell size
	TileWidth  int `json:"tile_width"`
	TileHeight int `json:"tile_height"`

	INI   *ini.File `json:"-"`
	index map[image.Point]int
}

// Decode parses a map file.
func Decode(name string, data []byte) (*TileMap, error) {
	f, err := ini.Parse(name, data)
	if err != nil {
		return nil, err
	}
	if !f.Has("Map") {
		return nil, binio.NotFound(name, "[Map]")
	}
	tm := &TileMap{
		Name:       f.GetString("Basic", "Name", name),
		Author:     f.GetString("Basic", "Author", ""),
		Theater:    strings.ToUpper(f.GetString("Map", "Theater", "TEMPERATE")),
		TileWidth:  tmp.RA2.W,
		TileHeight: tmp.RA2.H,
		INI:        f,
	}
	if tm.Size, err = parseRect(name, f.GetString("Map", "Size", "")); err != nil {
		return nil, err
	}
	if v, ok := f.Get("Map", "LocalSize"); ok {
		if tm.LocalSize, err = parseRect(name, v); err != nil {
			return nil, err
		}
	}
	tm.readWaypoints()

	if packed := PackedSection(f, "IsoMapPack5"); packed != "" {
		cells, err := DecodeIsoMapPack(name, packed)
		if err != nil {
			return nil, err
		}
		tm.SetCells(cells)
	}
	return tm, nil
}

// parseRect reads "x,y,w,h".
func parseRect(name, v string) (image.Rectangle, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, binio.Formatf(name, 0, "rectangle %q", v)
	}
	var n [4]int
	for i, p := range parts {
		x, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, binio.Formatf(name, 0, "rectangle %q: %v", v, err)
		}
		n[i] = x
	}
	return image.Rect(n[0], n[1], n[0]+n[2], n[1]+n[3]), nil
}

// readWaypoints takes waypoints 0-7 as start positions. A waypoint value
// is y*1000+x.
func (tm *TileMap) readWaypoints() {
	for slot := 0; slot < 8; slot++ {
		v := tm.INI.GetInt("Waypoints", strconv.Itoa(slot), -1)
		if v < 0 {
			continue
		}
		tm.StartPositions = append(tm.StartPositions, StartPos{PlayerSlot: slot, X: v % 1000, Y: v / 1000})
	}
	tm.MaxPlayers = len(tm.StartPositions)
}

// PackedSection joins a numbered section's lines in key order.
func PackedSection(f *ini.File, section string) string {
	s := f.Section(section)
	if s == nil {
		return ""
	}
	keys := s.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return false
		}
		return a < b
	})
	var sb strings.Builder
	for _, k := range keys {
		v, _ := s.Get(k)
		sb.WriteString(strings.TrimSpace(v))
	}
	return sb.String()
}

// SetCells replaces the cell list and rebuilds the lookup index.
func (tm *TileMap) SetCells(cells []Cell) {
	tm.Cells = cells
	tm.index = make(map[image.Point]int, len(cells))
	for i, c := range cells {
		tm.index[image.Pt(c.X, c.Y)] = i
	}
}

// At returns the cell at iso coordinates (x, y)
func (tm *TileMap) At(x, y int) *Cell {
	i, ok := tm.index[image.Pt(x, y)]
	if !ok {
		return nil
	}
	return &tm.Cells[i]
}

// InBounds checks if iso coordinates hold a cell
func (tm *TileMap) InBounds(x, y int) bool {
	_, ok := tm.index[image.Pt(x, y)]
	return ok
}

// CellToScreen converts iso cell coordinates to the pixel position of the
// cell's top corner, raised by its level.
func (tm *TileMap) CellToScreen(x, y, level int) (sx, sy int) {
	sx = (x - y) * tm.TileWidth / 2
	sy = (x+y)*tm.TileHeight/2 - level*tm.TileHeight/2
	return
}

// ScreenToCell converts a ground-level pixel position to iso cell
// coordinates.
func (tm *TileMap) ScreenToCell(sx, sy float64) (x, y float64) {
	tw := float64(tm.TileWidth)
	th := float64(tm.TileHeight)
	x = sx/tw + sy/th
	y = sy/th - sx/tw
	return
}

// ScreenBounds is the pixel rectangle covering every cell.
func (tm *TileMap) ScreenBounds() image.Rectangle {
	var r image.Rectangle
	for i, c := range tm.Cells {
		sx, sy := tm.CellToScreen(c.X, c.Y, int(c.Level))
		cr := image.Rect(sx-tm.TileWidth/2, sy, sx+tm.TileWidth/2, sy+tm.TileHeight)
		if i == 0 {
			r = cr
		} else {
			r = r.Union(cr)
		}
	}
	return r
}

// SaveJSON saves the decoded map to a JSON file
func (tm *TileMap) SaveJSON(path string) error {
	data, err := json.MarshalIndent(tm, "", "  ")
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "save map json")
}

// LoadJSON loads a map saved by SaveJSON
func LoadJSON(path string) (*TileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tm TileMap
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	tm.SetCells(tm.Cells)
	return &tm, nil
}
