// Package assets maps file names to decoders and loads decoded assets
// through a mounted archive set.
package assets

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the closed set of asset formats.
type Kind int

const (
	KindUnknown Kind = iota
	KindPalette
	KindSprite
	KindTiles
	KindArchive
	KindVoxel
	KindMotion
	KindMap
	KindStrings
	KindAudioIndex
	KindAudioBag
	KindConfig
)

var kindNames = [...]string{
	KindUnknown:    "unknown",
	KindPalette:    "palette",
	KindSprite:     "sprite",
	KindTiles:      "tiles",
	KindArchive:    "archive",
	KindVoxel:      "voxel",
	KindMotion:     "motion",
	KindMap:        "map",
	KindStrings:    "strings",
	KindAudioIndex: "audio index",
	KindAudioBag:   "audio bag",
	KindConfig:     "config",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// extensions maps a lower-case extension to its kind.
var extensions = map[string]Kind{
	".pal": KindPalette,
	".shp": KindSprite,
	".sha": KindSprite,
	".tmp": KindTiles,
	".tem": KindTiles,
	".sno": KindTiles,
	".urb": KindTiles,
	".ubn": KindTiles,
	".des": KindTiles,
	".lun": KindTiles,
	".mix": KindArchive,
	".mmx": KindArchive,
	".yro": KindArchive,
	".vxl": KindVoxel,
	".hva": KindMotion,
	".map": KindMap,
	".yrm": KindMap,
	".mpr": KindMap,
	".csf": KindStrings,
	".idx": KindAudioIndex,
	".bag": KindAudioBag,
	".ini": KindConfig,
}

// KindOf classifies a file name by extension, case-insensitively.
func KindOf(name string) Kind {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Extensions lists the extensions of k, sorted.
func Extensions(k Kind) []string {
	var out []string
	for ext, kind := range extensions {
		if kind == k {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// swapExt replaces name's extension, keeping the case of the base name.
func swapExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
