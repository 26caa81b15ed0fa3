package system

import (
	"testing"

	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T, cfg prefabs.Config) *ecs.World {
	t.Helper()
	w, err := cfg.NewWorld("mario")
	require.NoError(t, err)
	return w
}

func character(t *testing.T, cfg prefabs.Config, name string) prefabs.CharacterSpec {
	t.Helper()
	ch, err := cfg.Character(name)
	require.NoError(t, err)
	return ch
}

func insert(t *testing.T, w *ecs.World, d component.Descriptor) ecs.Entity {
	t.Helper()
	e, err := w.Insert(d)
	require.NoError(t, err)
	return e
}

func tile(x, y int, kind component.TileType) component.Descriptor {
	return component.Descriptor{Kind: component.KindTile, Cell: component.Cell{X: x, Y: y}, Subtype: string(kind)}
}

func enemy(x, y int, kind component.EnemyType) component.Descriptor {
	return component.Descriptor{Kind: component.KindEnemy, Cell: component.Cell{X: x, Y: y}, Subtype: string(kind)}
}

func addGround(t *testing.T, w *ecs.World, row int) {
	t.Helper()
	for x := 0; x < w.Bounds().Cols; x++ {
		insert(t, w, tile(x, row, component.TileGround))
	}
}

func step(w *ecs.World, s *ecs.Scheduler, in component.Input) {
	w.SetInput(in)
	s.Update(w)
}

// settle ticks with no input until the player stands on something.
func settle(t *testing.T, w *ecs.World, s *ecs.Scheduler) {
	t.Helper()
	for i := 0; i < 200 && !w.Player().OnGround; i++ {
		step(w, s, component.Input{})
	}
	require.True(t, w.Player().OnGround)
	step(w, s, component.Input{})
}

func TestPlayerLandsOnGround(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	sim := NewSimulation(cfg, character(t, cfg, "mario"))

	for i := 0; i < 100 && !w.Player().OnGround; i++ {
		step(w, sim, component.Input{})
	}

	p := w.Player()
	require.True(t, p.OnGround)
	assert.Equal(t, 650.0, p.Rect().Bottom())
	assert.Equal(t, 0.0, p.Vel.Y)
}

func TestPlayerFallsToWorldFloor(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	sim := NewSimulation(cfg, character(t, cfg, "mario"))

	for i := 0; i < 100; i++ {
		step(w, sim, component.Input{})
	}

	p := w.Player()
	assert.True(t, p.OnGround)
	assert.Equal(t, 700.0, p.Rect().Bottom())
}

func TestEnemyReversesAtWall(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	insert(t, w, tile(7, 12, component.TileGround))
	e := insert(t, w, enemy(5, 12, component.EnemyGoomba))
	sys := NewEnemySystem(cfg)

	en := w.Enemies().Get(e)
	require.Equal(t, 2.0, en.Vel.X)
	require.True(t, en.FacingRight)

	for i := 0; i < 100 && w.Enemies().Get(e).Vel.X > 0; i++ {
		sys.Update(w)
	}

	en = w.Enemies().Get(e)
	assert.Equal(t, -2.0, en.Vel.X)
	assert.Equal(t, 350.0, en.Rect().Right())
	assert.False(t, en.FacingRight)
	assert.True(t, en.Grounded)
}

func TestEnemyReversesAtLevelEdge(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	e := insert(t, w, enemy(18, 12, component.EnemyGoomba))
	sys := NewEnemySystem(cfg)

	for i := 0; i < 100 && w.Enemies().Get(e).Vel.X > 0; i++ {
		sys.Update(w)
	}

	en := w.Enemies().Get(e)
	assert.Equal(t, -2.0, en.Vel.X)
	assert.Equal(t, w.Bounds().Width(), en.Rect().Right())
}

func TestPiranhaStaysPut(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	e := insert(t, w, enemy(3, 12, component.EnemyPiranha))
	sys := NewEnemySystem(cfg)

	for i := 0; i < 30; i++ {
		sys.Update(w)
	}

	en := w.Enemies().Get(e)
	assert.Equal(t, 150.0, en.Pos.X)
	assert.Equal(t, 600.0, en.Pos.Y)
	assert.False(t, en.Stompable)
}

func TestKoopaJumpsWhenGrounded(t *testing.T) {
	cfg := prefabs.MustDefault()
	cfg.Enemy.JumpChance = 1
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	e := insert(t, w, enemy(3, 12, component.EnemyKoopa))

	NewEnemySystem(cfg).Update(w)

	en := w.Enemies().Get(e)
	assert.Equal(t, -cfg.Enemy.JumpSpeed, en.Vel.Y)
	assert.False(t, en.Grounded)
}

func TestEnemyFallingOutIsRemoved(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	e := insert(t, w, enemy(3, 12, component.EnemyGoomba))
	sim := NewSimulation(cfg, character(t, cfg, "mario"))

	for i := 0; i < 100 && w.IsAlive(e); i++ {
		step(w, sim, component.Input{})
	}
	assert.False(t, w.IsAlive(e))
}

func TestStompOrDamage(t *testing.T) {
	tests := []struct {
		name      string
		kind      component.EnemyType
		power     component.Power
		playerY   float64
		velY      float64
		wantStomp bool
		wantPower component.Power
		wantLives int
		wantDead  bool
	}{
		{"falling above center stomps", component.EnemyGoomba, component.PowerSmall, 570, 3, true, component.PowerSmall, 3, false},
		{"level overlap damages small", component.EnemyGoomba, component.PowerSmall, 600, 0, false, component.PowerSmall, 2, true},
		{"level overlap shrinks big", component.EnemyKoopa, component.PowerBig, 600, 0, false, component.PowerSmall, 3, false},
		{"level overlap shrinks fire", component.EnemyGoomba, component.PowerFire, 600, 0, false, component.PowerSmall, 3, false},
		{"piranha cannot be stomped", component.EnemyPiranha, component.PowerBig, 570, 3, false, component.PowerSmall, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := prefabs.MustDefault()
			w := newTestWorld(t, cfg)
			addGround(t, w, 13)
			e := insert(t, w, enemy(2, 12, tt.kind))

			p := w.Player()
			p.Pos.X = 100
			p.Pos.Y = tt.playerY
			p.Vel.Y = tt.velY
			p.Power = tt.power

			NewPlayerSystem(cfg, character(t, cfg, "mario")).Update(w)

			events := w.Events().Drain()
			var stomps, hits int
			for _, evt := range events {
				switch evt.Type {
				case ecs.EventStomp:
					stomps++
				case ecs.EventDamage, ecs.EventPlayerDied:
					hits++
				}
			}
			if tt.wantStomp {
				assert.Equal(t, 1, stomps)
				assert.Equal(t, 0, hits)
				assert.Equal(t, -cfg.Physics.StompBounce, p.Vel.Y)
				assert.Equal(t, cfg.Score.Stomp, p.Score)
				assert.False(t, w.Enemies().Get(e).Alive)
				w.Flush()
				assert.False(t, w.IsAlive(e))
			} else {
				assert.Equal(t, 0, stomps)
				assert.Equal(t, 1, hits)
				assert.True(t, w.Enemies().Get(e).Alive)
			}
			assert.Equal(t, tt.wantPower, p.Power)
			assert.Equal(t, tt.wantLives, p.Lives)
			assert.Equal(t, tt.wantDead, p.Dead)
			if tt.power != component.PowerSmall && !tt.wantStomp {
				assert.True(t, p.Invincible)
			}
		})
	}
}

func TestInvinciblePlayerIgnoresEnemies(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	insert(t, w, enemy(2, 12, component.EnemyGoomba))

	p := w.Player()
	p.Pos.X = 100
	p.Invincible = true
	p.InvincibleTicks = 2

	sys := NewPlayerSystem(cfg, character(t, cfg, "mario"))
	sys.Update(w)
	assert.False(t, p.Dead)
	assert.True(t, p.Invincible)
	assert.Equal(t, 1, p.InvincibleTicks)

	w.Player().Pos.X = 400
	sys.Update(w)
	assert.False(t, p.Invincible)
	assert.Equal(t, 0, p.InvincibleTicks)
}

func TestCoinPickup(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	e := insert(t, w, component.Descriptor{Kind: component.KindCoin, Cell: component.Cell{X: 8, Y: 12}, Value: 2})
	sim := NewSimulation(cfg, character(t, cfg, "mario"))

	step(w, sim, component.Input{})

	p := w.Player()
	assert.Equal(t, 2, p.Coins)
	assert.Equal(t, 2*cfg.Score.Coin, p.Score)
	assert.False(t, w.IsAlive(e))
	assert.Equal(t, 0, w.Coins().Len())
}

func TestPowerupTransitions(t *testing.T) {
	tests := []struct {
		from     component.Power
		pickup   component.PowerupType
		want     component.Power
		wantStar bool
	}{
		{component.PowerSmall, component.PowerupMushroom, component.PowerBig, false},
		{component.PowerSmall, component.PowerupFireFlower, component.PowerFire, false},
		{component.PowerBig, component.PowerupMushroom, component.PowerBig, false},
		{component.PowerBig, component.PowerupFireFlower, component.PowerFire, false},
		{component.PowerFire, component.PowerupMushroom, component.PowerFire, false},
		{component.PowerSmall, component.PowerupStar, component.PowerSmall, true},
		{component.PowerFire, component.PowerupStar, component.PowerFire, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"+"+string(tt.pickup), func(t *testing.T) {
			cfg := prefabs.MustDefault()
			w := newTestWorld(t, cfg)
			addGround(t, w, 13)
			insert(t, w, component.Descriptor{Kind: component.KindPowerup, Cell: component.Cell{X: 8, Y: 12}, Subtype: string(tt.pickup)})
			p := w.Player()
			p.Power = tt.from

			NewPlayerSystem(cfg, character(t, cfg, "mario")).Update(w)

			assert.Equal(t, tt.want, p.Power)
			assert.Equal(t, cfg.Score.Powerup, p.Score)
			assert.Equal(t, tt.wantStar, p.Invincible)
			if tt.wantStar {
				assert.Equal(t, cfg.Timers.StarInvincible-1, p.InvincibleTicks)
			}
		})
	}
}

func TestPMeterBounds(t *testing.T) {
	cfg := prefabs.MustDefault()
	cfg.World.Cols = 200
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	sim := NewSimulation(cfg, character(t, cfg, "mario"))
	settle(t, w, sim)

	p := w.Player()
	for i := 0; i < 300; i++ {
		step(w, sim, component.Input{Right: true, Run: true})
		require.GreaterOrEqual(t, p.PMeter, 0)
		require.LessOrEqual(t, p.PMeter, cfg.Physics.PMeterMax)
	}
	assert.Equal(t, cfg.Physics.PMeterMax, p.PMeter)
	assert.Equal(t, cfg.Physics.RunSpeedMax, p.Vel.X)

	step(w, sim, component.Input{})
	assert.Equal(t, cfg.Physics.PMeterMax-1, p.PMeter)
	for i := 0; i < 20; i++ {
		step(w, sim, component.Input{})
	}
	assert.Equal(t, 0, p.PMeter)
}

func TestWalkingNeverFillsPMeter(t *testing.T) {
	cfg := prefabs.MustDefault()
	cfg.World.Cols = 200
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	sim := NewSimulation(cfg, character(t, cfg, "mario"))
	settle(t, w, sim)

	for i := 0; i < 120; i++ {
		step(w, sim, component.Input{Right: true})
	}
	assert.Equal(t, 0, w.Player().PMeter)
	assert.Equal(t, cfg.Physics.WalkSpeedMax, w.Player().Vel.X)
}

func TestJumpNeedsFreshPress(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	sim := NewSimulation(cfg, character(t, cfg, "mario"))
	settle(t, w, sim)

	p := w.Player()
	takeoffs := 0
	for i := 0; i < 200; i++ {
		was := p.OnGround
		step(w, sim, component.Input{Jump: true})
		if was && !p.OnGround {
			takeoffs++
		}
	}
	assert.Equal(t, 1, takeoffs)
	require.True(t, p.OnGround)

	step(w, sim, component.Input{})
	step(w, sim, component.Input{Jump: true})
	assert.False(t, p.OnGround)
	assert.Less(t, p.Vel.Y, 0.0)
}

func TestEarlyReleaseHalvesRise(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	sim := NewSimulation(cfg, character(t, cfg, "mario"))
	settle(t, w, sim)

	p := w.Player()
	step(w, sim, component.Input{Jump: true})
	rising := p.Vel.Y
	require.Less(t, rising, 0.0)

	step(w, sim, component.Input{})
	assert.InDelta(t, rising*0.5+cfg.Physics.Gravity, p.Vel.Y, 1e-9)
}

func TestCharacterJumpHeights(t *testing.T) {
	apex := func(name string) float64 {
		cfg := prefabs.MustDefault()
		w := newTestWorld(t, cfg)
		addGround(t, w, 13)
		sim := NewSimulation(cfg, character(t, cfg, name))
		settle(t, w, sim)
		top := w.Player().Pos.Y
		for i := 0; i < 120; i++ {
			step(w, sim, component.Input{Jump: true})
			top = min(top, w.Player().Pos.Y)
		}
		return top
	}

	mario := apex("mario")
	assert.Less(t, apex("luigi"), mario)
	assert.Greater(t, apex("toad"), mario)
}

func TestQuestionBlockSpawnsItemAbove(t *testing.T) {
	tests := []struct {
		item     component.Item
		wantKind component.Kind
	}{
		{component.ItemCoin, component.KindCoin},
		{component.ItemMushroom, component.KindPowerup},
		{component.ItemStar, component.KindPowerup},
	}

	for _, tt := range tests {
		t.Run(string(tt.item), func(t *testing.T) {
			cfg := prefabs.MustDefault()
			w := newTestWorld(t, cfg)
			addGround(t, w, 13)
			d := tile(8, 10, component.TileQuestion)
			d.Item = tt.item
			e := insert(t, w, d)
			sim := NewSimulation(cfg, character(t, cfg, "mario"))
			settle(t, w, sim)

			for i := 0; i < 30 && !w.Tiles().Get(e).Triggered; i++ {
				step(w, sim, component.Input{Jump: true})
			}
			require.True(t, w.Tiles().Get(e).Triggered)

			above := component.Cell{X: 8, Y: 9}
			var found bool
			for _, desc := range w.Snapshot() {
				if desc.Kind == tt.wantKind && desc.Cell == above {
					found = true
				}
			}
			assert.True(t, found, "no %s spawned at %s", tt.wantKind, above)

			desc, ok := w.Describe(e)
			require.True(t, ok)
			assert.Equal(t, component.ItemNone, desc.Item)
		})
	}
}

func TestQuestionBlockWithoutRoomKeepsItem(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, w *ecs.World) component.Cell
	}{
		{
			name: "brick above",
			setup: func(t *testing.T, w *ecs.World) component.Cell {
				addGround(t, w, 13)
				insert(t, w, tile(8, 9, component.TileBrick))
				return component.Cell{X: 8, Y: 10}
			},
		},
		{
			name: "top row",
			setup: func(t *testing.T, w *ecs.World) component.Cell {
				addGround(t, w, 2)
				w.Player().Pos.Y = 50
				return component.Cell{X: 8, Y: 0}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := prefabs.MustDefault()
			w := newTestWorld(t, cfg)
			cell := tt.setup(t, w)
			d := tile(cell.X, cell.Y, component.TileQuestion)
			d.Item = component.ItemMushroom
			e := insert(t, w, d)
			sim := NewSimulation(cfg, character(t, cfg, "mario"))
			settle(t, w, sim)
			w.Events().Drain()

			top := w.Player().Pos.Y
			for i := 0; i < 30; i++ {
				step(w, sim, component.Input{Jump: true})
				top = min(top, w.Player().Pos.Y)
				for _, ev := range w.Events().Drain() {
					assert.NotEqual(t, ecs.EventItemSpawned, ev.Type)
					assert.NotEqual(t, ecs.EventSpawnFailed, ev.Type)
				}
			}

			assert.InDelta(t, float64((cell.Y+1)*50), top, 1e-9, "head never reached the block")
			assert.False(t, w.Tiles().Get(e).Triggered)
			desc, ok := w.Describe(e)
			require.True(t, ok)
			assert.Equal(t, component.ItemMushroom, desc.Item)
			assert.Zero(t, w.Powerups().Len())
		})
	}
}

func TestBrickBreaksOnlyForPoweredPlayer(t *testing.T) {
	tests := []struct {
		power     component.Power
		wantBreak bool
	}{
		{component.PowerSmall, false},
		{component.PowerBig, true},
		{component.PowerFire, true},
	}

	for _, tt := range tests {
		t.Run(tt.power.String(), func(t *testing.T) {
			cfg := prefabs.MustDefault()
			w := newTestWorld(t, cfg)
			addGround(t, w, 13)
			e := insert(t, w, tile(8, 10, component.TileBrick))
			sim := NewSimulation(cfg, character(t, cfg, "mario"))
			settle(t, w, sim)
			w.Player().Power = tt.power

			for i := 0; i < 30; i++ {
				step(w, sim, component.Input{Jump: true})
			}

			assert.Equal(t, !tt.wantBreak, w.IsAlive(e))
			if tt.wantBreak {
				assert.Equal(t, cfg.Score.Brick, w.Player().Score)
			}
		})
	}
}

func TestOneWayPlatform(t *testing.T) {
	cfg := prefabs.MustDefault()

	t.Run("lands from above", func(t *testing.T) {
		w := newTestWorld(t, cfg)
		insert(t, w, tile(8, 10, component.TilePlatform))
		p := w.Player()
		p.Pos.Y = 400
		sim := NewSimulation(cfg, character(t, cfg, "mario"))

		for i := 0; i < 100 && !p.OnGround; i++ {
			step(w, sim, component.Input{})
		}
		assert.Equal(t, 500.0, p.Rect().Bottom())
	})

	t.Run("passes through from below", func(t *testing.T) {
		w := newTestWorld(t, cfg)
		addGround(t, w, 13)
		insert(t, w, tile(8, 11, component.TilePlatform))
		sim := NewSimulation(cfg, character(t, cfg, "mario"))
		settle(t, w, sim)

		p := w.Player()
		top := p.Pos.Y
		for i := 0; i < 30; i++ {
			step(w, sim, component.Input{Jump: true})
			top = min(top, p.Pos.Y)
		}
		assert.Less(t, top, 500.0)
	})
}

func TestPowerupSlidesAndBounces(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	addGround(t, w, 13)
	insert(t, w, tile(4, 12, component.TilePipe))
	e := insert(t, w, component.Descriptor{Kind: component.KindPowerup, Cell: component.Cell{X: 2, Y: 12}, Subtype: string(component.PowerupMushroom)})
	sys := NewPowerupSystem(cfg)

	for i := 0; i < 100 && w.Powerups().Get(e).Vel.X > 0; i++ {
		sys.Update(w)
	}

	pu := w.Powerups().Get(e)
	assert.Equal(t, -cfg.Powerup.Speed, pu.Vel.X)
	assert.Equal(t, 200.0, pu.Rect().Right())
	assert.True(t, pu.Grounded)
}

func TestAnimationSystemDoesNotMove(t *testing.T) {
	cfg := prefabs.MustDefault()
	w := newTestWorld(t, cfg)
	e := insert(t, w, enemy(3, 3, component.EnemyGoomba))
	c := insert(t, w, component.Descriptor{Kind: component.KindCoin, Cell: component.Cell{X: 4, Y: 3}, Value: 1})
	before := w.Snapshot()
	edit := NewEditSchedule()

	for i := 0; i < cfg.Timers.AnimTicks; i++ {
		edit.Update(w)
	}

	assert.Equal(t, before, w.Snapshot())
	assert.Equal(t, 1, w.Enemies().Get(e).Anim.Frame)
	assert.Equal(t, 1, w.Coins().Get(c).Anim.Frame)
	assert.Equal(t, 150.0, w.Enemies().Get(e).Pos.X)
}
