package levels

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed *.json *.txt
var LevelsFS embed.FS

const constructExt = ".txt"

// constructCells maps the characters of an ASCII construct layout.
var constructCells = map[rune]func(doc *Document, x, y float64){
	'G': tileCell("ground", ""),
	'B': tileCell("brick", ""),
	'Q': tileCell("question", "coin"),
	'W': tileCell("water", ""),
	'P': tileCell("pipe", ""),
	'-': tileCell("platform", ""),
	'C': func(doc *Document, x, y float64) {
		doc.Coins = append(doc.Coins, CoinRecord{X: x, Y: y, Value: 1})
	},
	'E': enemyCell("goomba"),
	'K': enemyCell("koopa"),
	'M': powerupCell("mushroom"),
	'F': powerupCell("fire_flower"),
	'S': powerupCell("star"),
}

func tileCell(kind, item string) func(doc *Document, x, y float64) {
	return func(doc *Document, x, y float64) {
		doc.Tiles = append(doc.Tiles, TileRecord{X: x, Y: y, Type: kind, ContainsItem: item})
	}
}

func enemyCell(kind string) func(doc *Document, x, y float64) {
	return func(doc *Document, x, y float64) {
		doc.Enemies = append(doc.Enemies, EnemyRecord{X: x, Y: y, EnemyType: kind})
	}
}

func powerupCell(kind string) func(doc *Document, x, y float64) {
	return func(doc *Document, x, y float64) {
		doc.Powerups = append(doc.Powerups, PowerupRecord{X: x, Y: y, PowerupType: kind})
	}
}

// ParseConstruct reads an ASCII layout, one character per cell and one line
// per row. '.' and ' ' are empty cells.
func ParseConstruct(r io.Reader, gridSize int) (Document, error) {
	doc := Document{Tiles: []TileRecord{}, Enemies: []EnemyRecord{}, Coins: []CoinRecord{}}
	g := float64(gridSize)
	sc := bufio.NewScanner(r)
	for row := 0; sc.Scan(); row++ {
		for col, ch := range []rune(strings.TrimRight(sc.Text(), "\r")) {
			if ch == '.' || ch == ' ' {
				continue
			}
			build, ok := constructCells[ch]
			if !ok {
				return Document{}, fmt.Errorf("%w: construct row %d col %d: unknown cell %q", ErrCorruptLevel, row, col, ch)
			}
			build(&doc, float64(col)*g, float64(row)*g)
		}
	}
	if err := sc.Err(); err != nil {
		return Document{}, fmt.Errorf("levels: read construct: %w", err)
	}
	return doc, nil
}

// Templates lists the embedded level names.
func Templates() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Template loads an embedded level by file name, parsing .txt files as
// construct layouts.
func Template(name string, gridSize int) (Document, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return Document{}, fmt.Errorf("read level: %w", err)
	}
	return parse(name, data, gridSize)
}

// LoadFile reads a level from disk.
func LoadFile(name string, gridSize int) (Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return Document{}, fmt.Errorf("read level: %w", err)
	}
	return parse(name, data, gridSize)
}

// SaveFile writes doc to disk as JSON.
func SaveFile(name string, doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	return nil
}

func parse(name string, data []byte, gridSize int) (Document, error) {
	if strings.EqualFold(path.Ext(name), constructExt) {
		return ParseConstruct(bytes.NewReader(data), gridSize)
	}
	return Decode(data)
}
