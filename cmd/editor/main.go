package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/fanbuilder/editor"
	"github.com/milk9111/fanbuilder/levels"
	"github.com/milk9111/fanbuilder/prefabs"
	"github.com/milk9111/fanbuilder/store"
	"golang.design/x/clipboard"
)

func main() {
	levelPath := flag.String("level", "level.json", "level file to load and save, or the level name when -db is set")
	dbPath := flag.String("db", "", "sqlite level library; when set, levels are saved there instead of to files")
	configPath := flag.String("config", "", "physics yaml overriding the embedded defaults")
	watch := flag.Bool("watch", false, "reload physics when the prefab yaml files change")
	character := flag.String("character", "", "character to play as")
	template := flag.String("template", "", "embedded template to start from, e.g. construct.txt")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ed, err := editor.New(cfg)
	if err != nil {
		log.Fatalf("editor: %v", err)
	}
	if *character != "" {
		if err := ed.SetCharacter(*character); err != nil {
			log.Fatalf("character: %v", err)
		}
	}

	g := &Game{
		ed:        ed,
		palette:   editor.Palette(),
		levelPath: *levelPath,
		levelName: filepath.Base(*levelPath),
	}

	if *dbPath != "" {
		s, err := store.Open(context.Background(), *dbPath)
		if err != nil {
			log.Fatalf("store: %v", err)
		}
		defer s.Close()
		g.store = s
	}

	if err := g.loadInitial(*template, cfg.World.GridSize); err != nil {
		log.Fatalf("level: %v", err)
	}

	if *watch {
		w, err := prefabs.WatchConfig(*configPath)
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			defer w.Close()
			g.watcher = w
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard disabled: %v", err)
	} else {
		g.clipboard = true
	}

	b := ed.World().Bounds()
	ebiten.SetWindowSize(int(b.Width()), int(b.Height())+hudHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("fanbuilder")

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the embedded defaults, or path laid over them.
func loadConfig(path string) (prefabs.Config, error) {
	if path == "" {
		return prefabs.LoadConfig()
	}
	return prefabs.LoadConfigFile(path)
}

// loadInitial fills the editor from a template, the library, or the level
// file, in that order. A level that does not exist yet starts empty.
func (g *Game) loadInitial(template string, gridSize int) error {
	if template != "" {
		return g.ed.LoadTemplate(template)
	}
	if g.store != nil {
		doc, err := g.store.Load(context.Background(), g.levelName)
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("new level %s", g.levelName)
			return nil
		}
		if err != nil {
			return err
		}
		return g.ed.Import(doc)
	}
	doc, err := levels.LoadFile(g.levelPath, gridSize)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("new level %s", g.levelPath)
		return nil
	}
	if err != nil {
		return err
	}
	return g.ed.Import(doc)
}
