package editor

import (
	"io"
	"log"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/levels"
	"github.com/milk9111/fanbuilder/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	groundBrush = Brush{Kind: component.KindTile, Subtype: string(component.TileGround)}
	brickBrush  = Brush{Kind: component.KindTile, Subtype: string(component.TileBrick)}
	coinBrush   = Brush{Kind: component.KindCoin, Value: 1}
	goombaBrush = Brush{Kind: component.KindEnemy, Subtype: string(component.EnemyGoomba)}
)

func newTestEditor(t *testing.T, mutate func(cfg *prefabs.Config)) *Editor {
	t.Helper()
	cfg := prefabs.MustDefault()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	return e
}

// at returns a pixel inside cell (x, y) of the default 50px grid.
func at(x, y int) cp.Vector {
	return cp.Vector{X: float64(x*50 + 25), Y: float64(y*50 + 25)}
}

func step(t *testing.T, e *Editor, keys Keys, events ...Event) {
	t.Helper()
	require.NoError(t, e.Step(Frame{Keys: keys, Events: events}))
}

func groundRow(t *testing.T, e *Editor) {
	t.Helper()
	events := make([]Event, 0, 20)
	for x := 0; x < 20; x++ {
		events = append(events, PlaceAt{Pos: at(x, 13), Brush: groundBrush})
	}
	step(t, e, Keys{}, events...)
}

func TestNewStartsInEdit(t *testing.T) {
	e := newTestEditor(t, nil)

	hud := e.HUD()
	assert.Equal(t, ModeEdit, hud.Mode)
	assert.Equal(t, 3, hud.Lives)
	assert.Equal(t, "mario", hud.Character)
	assert.Equal(t, 6, hud.PMeterMax)
	assert.Zero(t, e.World().Len())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := prefabs.MustDefault()
	cfg.World.GridSize = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, prefabs.ErrInvalidConfig)
}

func TestPlaceThenUndoRestoresLevel(t *testing.T) {
	e := newTestEditor(t, nil)
	before := e.World().Snapshot()

	step(t, e, Keys{},
		PlaceAt{Pos: at(2, 13), Brush: groundBrush},
		PlaceAt{Pos: at(3, 13), Brush: brickBrush},
		PlaceAt{Pos: at(5, 10), Brush: coinBrush},
		RemoveAt{Pos: at(2, 13)},
	)
	require.Equal(t, 4, e.HUD().UndoDepth)

	for i := 0; i < 4; i++ {
		step(t, e, Keys{}, Undo{})
	}
	assert.Equal(t, before, e.World().Snapshot())
	assert.Equal(t, 4, e.HUD().RedoDepth)
}

func TestOverwriteUndoesToPriorOccupant(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, PlaceAt{Pos: at(4, 13), Brush: brickBrush})
	want := e.World().Snapshot()

	step(t, e, Keys{}, PlaceAt{Pos: at(4, 13), Brush: groundBrush})
	_, tile, ok := e.World().TileAt(component.Cell{X: 4, Y: 13})
	require.True(t, ok)
	assert.Equal(t, component.TileGround, tile.Type)

	step(t, e, Keys{}, Undo{})
	assert.Equal(t, want, e.World().Snapshot())

	step(t, e, Keys{}, Redo{})
	_, tile, ok = e.World().TileAt(component.Cell{X: 4, Y: 13})
	require.True(t, ok)
	assert.Equal(t, component.TileGround, tile.Type)
}

func TestPlaceSameBrushTwiceRecordsOnce(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{},
		PlaceAt{Pos: at(1, 1), Brush: groundBrush},
		PlaceAt{Pos: at(1, 1), Brush: groundBrush},
	)
	assert.Equal(t, 1, e.HUD().UndoDepth)
}

func TestNewEditClearsRedo(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, PlaceAt{Pos: at(1, 1), Brush: groundBrush}, Undo{})
	require.Equal(t, 1, e.HUD().RedoDepth)

	step(t, e, Keys{}, PlaceAt{Pos: at(2, 2), Brush: brickBrush})
	assert.Zero(t, e.HUD().RedoDepth)

	before := e.World().Snapshot()
	step(t, e, Keys{}, Redo{})
	assert.Equal(t, before, e.World().Snapshot())
}

func TestRejectedEdits(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  error
	}{
		{name: "out of bounds", event: PlaceAt{Pos: cp.Vector{X: 1500, Y: 25}, Brush: groundBrush}, want: ecs.ErrOutOfBounds},
		{name: "negative position", event: PlaceAt{Pos: cp.Vector{X: -10, Y: 25}, Brush: groundBrush}, want: ecs.ErrInvalidPlacement},
		{name: "spawn cell", event: PlaceAt{Pos: at(8, 12), Brush: groundBrush}, want: ecs.ErrProtectedCell},
		{name: "bad brush", event: PlaceAt{Pos: at(1, 1), Brush: Brush{Kind: component.KindTile, Subtype: "lava"}}, want: ecs.ErrInvalidDescriptor},
		{name: "remove empty", event: RemoveAt{Pos: at(1, 1)}, want: ecs.ErrEmptyCell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, nil)
			err := e.Step(Frame{Events: []Event{tt.event}})
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, e.World().Len())
			assert.Zero(t, e.HUD().UndoDepth)
		})
	}
}

func TestUndoOnEmptyHistoryIsNoop(t *testing.T) {
	e := newTestEditor(t, nil)
	assert.NoError(t, e.Step(Frame{Events: []Event{Undo{}, Redo{}}}))
}

func TestPlaytestLocksEdits(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, PlaceAt{Pos: at(1, 1), Brush: groundBrush}, SwitchMode{Target: ModePlaytest})
	require.Equal(t, ModePlaytest, e.Mode())

	for _, ev := range []Event{PlaceAt{Pos: at(2, 2), Brush: groundBrush}, RemoveAt{Pos: at(1, 1)}, Undo{}, Redo{}} {
		err := e.Step(Frame{Events: []Event{ev}})
		assert.ErrorIs(t, err, ErrModeLocked, "%T", ev)
	}
	assert.Equal(t, 1, e.World().Len())

	assert.ErrorIs(t, e.Import(levels.Document{}), ErrModeLocked)
	assert.ErrorIs(t, e.SetCharacter("luigi"), ErrModeLocked)
	assert.ErrorIs(t, e.SetConfig(prefabs.MustDefault()), ErrModeLocked)
	assert.ErrorIs(t, e.LoadTemplate("demo.json"), ErrModeLocked)
}

func TestSwitchTickSkipsUpdate(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{Right: true}, SwitchMode{Target: ModePlaytest})

	p := e.World().Player()
	assert.Equal(t, cp.Vector{X: 400, Y: 600}, p.Pos)

	step(t, e, Keys{Right: true})
	assert.Greater(t, p.Pos.X, 400.0)
	assert.Greater(t, p.Pos.Y, 600.0)
}

func TestEditModeRunsNoPhysics(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, PlaceAt{Pos: at(10, 5), Brush: goombaBrush})
	for i := 0; i < 30; i++ {
		step(t, e, Keys{Right: true, Jump: true})
	}
	assert.Equal(t, cp.Vector{X: 400, Y: 600}, e.World().Player().Pos)
	en := e.World().Enemies().Get(e.World().Enemies().Entities()[0])
	assert.Equal(t, cp.Vector{X: 500, Y: 250}, en.Pos)
	assert.Equal(t, 1, en.Anim.Frame)
}

func TestEscapeRestoresLevel(t *testing.T) {
	e := newTestEditor(t, nil)
	groundRow(t, e)
	step(t, e, Keys{}, PlaceAt{Pos: at(9, 12), Brush: coinBrush})
	before := e.World().Snapshot()
	exported := e.Export()

	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
	step(t, e, Keys{Right: true})
	require.Equal(t, 1, e.HUD().Coins)
	assert.Zero(t, e.World().Coins().Len())
	assert.Equal(t, exported, e.Export())

	step(t, e, Keys{Escape: true})
	assert.Equal(t, ModeEdit, e.Mode())
	assert.Equal(t, before, e.World().Snapshot())
	assert.Equal(t, cp.Vector{X: 400, Y: 600}, e.World().Player().Pos)
}

func TestDeathWithLivesLeftResetsLevel(t *testing.T) {
	e := newTestEditor(t, nil)
	groundRow(t, e)
	step(t, e, Keys{}, PlaceAt{Pos: at(9, 12), Brush: goombaBrush})
	before := e.World().Snapshot()

	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
	step(t, e, Keys{Right: true})

	assert.Equal(t, ModePlaytest, e.Mode())
	assert.Equal(t, 2, e.HUD().Lives)
	assert.Equal(t, before, e.World().Snapshot())
	p := e.World().Player()
	assert.False(t, p.Dead)
	assert.Equal(t, cp.Vector{X: 400, Y: 600}, p.Pos)

	var died bool
	for _, ev := range e.Events() {
		died = died || ev.Type == ecs.EventPlayerDied
	}
	assert.True(t, died)
}

func TestGameOverReturnsToEdit(t *testing.T) {
	e := newTestEditor(t, nil)
	groundRow(t, e)
	step(t, e, Keys{}, PlaceAt{Pos: at(9, 12), Brush: goombaBrush})
	before := e.World().Snapshot()

	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
	for _, lives := range []int{2, 1} {
		step(t, e, Keys{Right: true})
		require.Equal(t, ModePlaytest, e.Mode())
		require.Equal(t, lives, e.HUD().Lives)
	}
	step(t, e, Keys{Right: true})
	assert.Equal(t, ModeEdit, e.Mode())
	assert.Zero(t, e.HUD().Lives)
	assert.Equal(t, before, e.World().Snapshot())

	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
	assert.Equal(t, 3, e.HUD().Lives)
}

func TestLifeLossPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy prefabs.LifeLoss
		score  int
	}{
		{name: "reset", policy: prefabs.LifeLossReset, score: 0},
		{name: "preserve", policy: prefabs.LifeLossPreserve, score: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, func(cfg *prefabs.Config) { cfg.Policy.LifeLoss = tt.policy })
			groundRow(t, e)
			step(t, e, Keys{}, PlaceAt{Pos: at(9, 12), Brush: goombaBrush})
			e.World().Player().Score = 500
			e.World().Player().Coins = 4

			step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
			step(t, e, Keys{Right: true})

			require.Equal(t, 2, e.HUD().Lives)
			assert.Equal(t, tt.score, e.HUD().Score)
			assert.Equal(t, tt.score != 0, e.HUD().Coins == 4)
		})
	}
}

func TestReachingRightEdgeCompletesLevel(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})

	for i := 0; i < 600 && e.Mode() == ModePlaytest; i++ {
		step(t, e, Keys{Right: true, Run: true})
	}
	assert.Equal(t, ModeEdit, e.Mode())
	assert.Equal(t, cp.Vector{X: 400, Y: 600}, e.World().Player().Pos)
	assert.Equal(t, 3, e.HUD().Lives)
}

func TestImportIsAtomic(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, PlaceAt{Pos: at(1, 1), Brush: groundBrush})
	before := e.Export()

	bad := levels.Document{Tiles: []levels.TileRecord{
		{X: 0, Y: 650, Type: "ground"},
		{X: 50, Y: 650, Type: "lava"},
	}}
	err := e.Import(bad)
	require.ErrorIs(t, err, levels.ErrCorruptLevel)
	assert.Equal(t, before, e.Export())
	assert.Equal(t, 1, e.HUD().UndoDepth)

	good := levels.Document{
		Tiles:   []levels.TileRecord{{X: 0, Y: 650, Type: "question", ContainsItem: "star"}},
		Enemies: []levels.EnemyRecord{{X: 100, Y: 600, EnemyType: "koopa"}},
		Coins:   []levels.CoinRecord{},
		Theme:   "underground",
	}
	require.NoError(t, e.Import(good))
	assert.Equal(t, good, e.Export())
	assert.Equal(t, "underground", e.Theme())
	assert.Zero(t, e.HUD().UndoDepth)
}

func TestLoadTemplate(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{}, PlaceAt{Pos: at(1, 1), Brush: groundBrush})

	require.NoError(t, e.LoadTemplate("construct.txt"))
	assert.NotZero(t, e.World().Tiles().Len())
	assert.Zero(t, e.HUD().UndoDepth)

	assert.Error(t, e.LoadTemplate("missing.json"))
}

func TestSetCharacter(t *testing.T) {
	e := newTestEditor(t, nil)
	require.NoError(t, e.SetCharacter("luigi"))
	assert.Equal(t, "luigi", e.HUD().Character)
	assert.Equal(t, "luigi", e.World().Player().Character)
	assert.InDelta(t, 1.1, e.Character().JumpFactor, 1e-9)

	assert.ErrorIs(t, e.SetCharacter("wario"), prefabs.ErrInvalidConfig)
	assert.Equal(t, "luigi", e.HUD().Character)
}

func TestSetConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *prefabs.Config)
		ok     bool
	}{
		{name: "physics change", mutate: func(cfg *prefabs.Config) { cfg.Physics.Gravity = 0.5 }, ok: true},
		{name: "grid change", mutate: func(cfg *prefabs.Config) { cfg.World.Cols = 40 }},
		{name: "spawn change", mutate: func(cfg *prefabs.Config) { cfg.World.SpawnX = 100 }},
		{name: "invalid gravity", mutate: func(cfg *prefabs.Config) { cfg.Physics.Gravity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t, nil)
			cfg := prefabs.MustDefault()
			tt.mutate(&cfg)

			err := e.SetConfig(cfg)
			if !tt.ok {
				require.ErrorIs(t, err, prefabs.ErrInvalidConfig)
				assert.InDelta(t, 0.4, e.Config().Physics.Gravity, 1e-9)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 0.5, e.Config().Physics.Gravity, 1e-9)
		})
	}
}

func TestSetConfigAffectsSimulation(t *testing.T) {
	e := newTestEditor(t, nil)
	cfg := prefabs.MustDefault()
	cfg.Physics.Gravity = 1
	require.NoError(t, e.SetConfig(cfg))

	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
	step(t, e, Keys{})
	assert.InDelta(t, 601.0, e.World().Player().Pos.Y, 1e-9)
}

func TestSetConfigResizesHistory(t *testing.T) {
	e := newTestEditor(t, nil)
	groundRow(t, e)
	require.Equal(t, 20, e.HUD().UndoDepth)

	cfg := prefabs.MustDefault()
	cfg.World.HistoryCapacity = 5
	require.NoError(t, e.SetConfig(cfg))
	assert.Equal(t, 5, e.History().Capacity())
	assert.Equal(t, 5, e.HUD().UndoDepth)

	step(t, e, Keys{}, PlaceAt{Pos: at(1, 1), Brush: brickBrush})
	assert.Equal(t, 5, e.HUD().UndoDepth)
}

func TestHistorySurvivesPlaytestMutations(t *testing.T) {
	e := newTestEditor(t, func(cfg *prefabs.Config) { cfg.World.HistoryCapacity = 40 })
	initial := e.World().Snapshot()

	groundRow(t, e)
	step(t, e, Keys{},
		PlaceAt{Pos: at(9, 12), Brush: coinBrush},
		PlaceAt{Pos: at(8, 10), Brush: brickBrush},
		PlaceAt{Pos: at(3, 12), Brush: goombaBrush},
	)
	edits := e.HUD().UndoDepth
	require.Equal(t, 23, edits)
	edited := e.World().Snapshot()

	step(t, e, Keys{}, SwitchMode{Target: ModePlaytest})
	w := e.World()

	// coin
	step(t, e, Keys{Right: true})
	require.Equal(t, 1, e.HUD().Coins)
	step(t, e, Keys{})

	// brick
	w.Player().Power = component.PowerBig
	for i := 0; i < 30; i++ {
		step(t, e, Keys{Jump: true})
	}
	_, _, ok := w.TileAt(component.Cell{X: 8, Y: 10})
	require.False(t, ok, "brick still standing")

	// stomp
	require.Equal(t, 1, w.Enemies().Len())
	en := w.Enemies().Get(w.Enemies().Entities()[0])
	p := w.Player()
	p.Pos = cp.Vector{X: en.Pos.X, Y: en.Pos.Y - 30}
	p.Vel = cp.Vector{Y: 3}
	step(t, e, Keys{})
	require.Zero(t, w.Enemies().Len())
	require.Equal(t, ModePlaytest, e.Mode())

	step(t, e, Keys{Escape: true})
	require.Equal(t, ModeEdit, e.Mode())
	assert.Equal(t, edited, e.World().Snapshot())

	for i := 0; i < edits; i++ {
		step(t, e, Keys{}, Undo{})
	}
	assert.Equal(t, initial, e.World().Snapshot())
	assert.Zero(t, e.HUD().UndoDepth)
	assert.Equal(t, edits, e.HUD().RedoDepth)

	for i := 0; i < edits; i++ {
		step(t, e, Keys{}, Redo{})
	}
	assert.Equal(t, edited, e.World().Snapshot())
	assert.Zero(t, e.HUD().RedoDepth)
}

func TestSprites(t *testing.T) {
	e := newTestEditor(t, nil)
	step(t, e, Keys{},
		PlaceAt{Pos: at(3, 13), Brush: brickBrush},
		PlaceAt{Pos: at(1, 13), Brush: groundBrush},
		PlaceAt{Pos: at(5, 5), Brush: coinBrush},
	)

	sprites := e.Sprites()
	require.Len(t, sprites, 4)
	assert.Equal(t, string(component.TileGround), sprites[0].Subtype)
	assert.Equal(t, string(component.TileBrick), sprites[1].Subtype)
	assert.Equal(t, component.KindCoin, sprites[2].Kind)
	assert.Equal(t, component.KindPlayer, sprites[3].Kind)
	assert.Equal(t, "mario", sprites[3].Subtype)
	assert.Equal(t, 400.0, sprites[3].Rect.X)
}

func TestPalette(t *testing.T) {
	palette := Palette()
	labels := make(map[string]bool, len(palette))
	for _, b := range palette {
		labels[b.Label] = true
		d := b.descriptor(component.Cell{X: 1, Y: 1})
		assert.NoError(t, d.Validate(), b.Label)
	}
	for _, want := range []string{"ground", "question:star", "goomba", "piranha", "coin", "fire_flower"} {
		assert.True(t, labels[want], want)
	}
}
