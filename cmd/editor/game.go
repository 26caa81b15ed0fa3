package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/editor"
	"github.com/milk9111/fanbuilder/levels"
	"github.com/milk9111/fanbuilder/prefabs"
	"github.com/milk9111/fanbuilder/store"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const (
	hudHeight   = 48
	dbTimeout   = 2 * time.Second
	statusTicks = 180
)

type Game struct {
	ed      *editor.Editor
	palette []editor.Brush
	brush   int

	levelPath string
	levelName string
	store     *store.Store
	watcher   *prefabs.Watcher
	clipboard bool

	template int
	lastCell *component.Cell

	status      string
	statusTimer int
}

func (g *Game) Update() error {
	g.pollWatcher()
	g.pollCommands()

	frame := editor.Frame{Keys: pollKeys(), Events: g.pollEvents()}
	if err := g.ed.Step(frame); err != nil {
		g.setStatus("%v", err)
	}
	if g.statusTimer > 0 {
		g.statusTimer--
	}
	return nil
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusTimer = statusTicks
	log.Print(g.status)
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case r, ok := <-g.watcher.Reloads:
		if !ok {
			g.watcher = nil
			return
		}
		if r.Err != nil {
			g.setStatus("reload %s: %v", r.File, r.Err)
			return
		}
		if g.ed.Mode() != editor.ModeEdit {
			g.setStatus("%s changed, reload skipped during playtest", r.File)
			return
		}
		if err := g.ed.SetConfig(r.Config); err != nil {
			g.setStatus("reload %s: %v", r.File, err)
			return
		}
		g.setStatus("reloaded %s", r.File)
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("watch: %v", err)
		}
	default:
	}
}

func (g *Game) nextCharacter() {
	names := g.ed.Config().CharacterNames()
	if len(names) == 0 {
		return
	}
	i := slices.Index(names, g.ed.Character().Name)
	name := names[(i+1)%len(names)]
	if err := g.ed.SetCharacter(name); err != nil {
		g.setStatus("character: %v", err)
		return
	}
	g.setStatus("playing as %s", name)
}

func (g *Game) nextTemplate() {
	names := levels.Templates()
	if len(names) == 0 {
		return
	}
	name := names[g.template%len(names)]
	g.template++
	if err := g.ed.LoadTemplate(name); err != nil {
		g.setStatus("template %s: %v", name, err)
		return
	}
	g.setStatus("loaded template %s", name)
}

func (g *Game) save() {
	doc := g.ed.Export()
	if g.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		entry, err := g.store.Save(ctx, g.levelName, doc)
		if err != nil {
			g.setStatus("save: %v", err)
			return
		}
		g.setStatus("saved %s (%s)", entry.Name, entry.ID)
		return
	}
	if err := levels.SaveFile(g.levelPath, doc); err != nil {
		g.setStatus("save: %v", err)
		return
	}
	g.setStatus("saved %s", g.levelPath)
}

func (g *Game) copyLevel() {
	if !g.clipboard {
		g.setStatus("clipboard unavailable")
		return
	}
	data, err := levels.Encode(g.ed.Export())
	if err != nil {
		g.setStatus("copy: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus("copied level to clipboard")
}

func (g *Game) pasteLevel() {
	if !g.clipboard {
		g.setStatus("clipboard unavailable")
		return
	}
	doc, err := levels.Decode(clipboard.Read(clipboard.FmtText))
	if err != nil {
		g.setStatus("paste: %v", err)
		return
	}
	if err := g.ed.Import(doc); err != nil {
		g.setStatus("paste: %v", err)
		return
	}
	g.setStatus("pasted level from clipboard")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(themeColor(g.ed.Theme()))

	hud := g.ed.HUD()
	blink := g.ed.World().Tick()%8 < 4
	for _, s := range g.ed.Sprites() {
		if s.Kind == component.KindPlayer && hud.Invincible && blink {
			continue
		}
		vector.DrawFilledRect(screen, float32(s.Rect.X), float32(s.Rect.Y), float32(s.Rect.Width), float32(s.Rect.Height), spriteColor(s), false)
	}

	if g.ed.Mode() == editor.ModeEdit {
		b := g.ed.World().Bounds()
		cell := b.CellAt(cursor())
		if b.Contains(cell) {
			r := b.CellRect(cell)
			vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, colornames.White, false)
		}
	}

	b := g.ed.World().Bounds()
	line := fmt.Sprintf("%s  score %d  coins %d  lives %d  P[%d/%d]  %s %s",
		hud.Mode, hud.Score, hud.Coins, hud.Lives, hud.PMeter, hud.PMeterMax, hud.Character, hud.Power)
	if hud.Mode == editor.ModeEdit {
		line += fmt.Sprintf("\nbrush %s (Q/E)  undo %d redo %d  Tab play  C character  T template  Ctrl+S save",
			g.palette[g.brush].Label, hud.UndoDepth, hud.RedoDepth)
	}
	if g.statusTimer > 0 {
		line += "\n" + g.status
	}
	ebitenutil.DebugPrintAt(screen, line, 4, int(b.Height())+4)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.ed.World().Bounds()
	return int(b.Width()), int(b.Height()) + hudHeight
}

func themeColor(theme string) color.Color {
	switch theme {
	case "underground":
		return colornames.Black
	case "castle":
		return colornames.Dimgray
	default:
		return colornames.Skyblue
	}
}

func spriteColor(s editor.Sprite) color.Color {
	switch s.Kind {
	case component.KindTile:
		switch component.TileType(s.Subtype) {
		case component.TileGround:
			return colornames.Saddlebrown
		case component.TileBrick:
			return colornames.Firebrick
		case component.TileQuestion:
			if s.Triggered {
				return colornames.Peru
			}
			return colornames.Gold
		case component.TilePipe:
			return colornames.Green
		case component.TilePlatform:
			return colornames.Tan
		case component.TileWater:
			return colornames.Royalblue
		}
	case component.KindEnemy:
		switch component.EnemyType(s.Subtype) {
		case component.EnemyKoopa:
			return colornames.Limegreen
		case component.EnemyPiranha:
			return colornames.Darkgreen
		default:
			return colornames.Sienna
		}
	case component.KindCoin:
		if s.Frame%2 == 1 {
			return colornames.Goldenrod
		}
		return colornames.Yellow
	case component.KindPowerup:
		switch component.PowerupType(s.Subtype) {
		case component.PowerupFireFlower:
			return colornames.Orangered
		case component.PowerupStar:
			return colornames.Khaki
		default:
			return colornames.Red
		}
	case component.KindPlayer:
		switch s.Power {
		case component.PowerBig:
			return colornames.Crimson
		case component.PowerFire:
			return colornames.White
		}
		return colornames.Indianred
	}
	return colornames.Magenta
}
