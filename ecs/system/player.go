package system

import (
	"math"

	"github.com/milk9111/fanbuilder/collision"
	"github.com/milk9111/fanbuilder/common"
	"github.com/milk9111/fanbuilder/ecs"
	"github.com/milk9111/fanbuilder/ecs/component"
	"github.com/milk9111/fanbuilder/prefabs"
)

// PlayerSystem drives the player from the tick's input snapshot.
type PlayerSystem struct {
	Physics   prefabs.PhysicsSpec
	Timers    prefabs.TimerSpec
	Score     prefabs.ScoreSpec
	Character prefabs.CharacterSpec
}

func NewPlayerSystem(cfg prefabs.Config, character prefabs.CharacterSpec) *PlayerSystem {
	return &PlayerSystem{
		Physics:   cfg.Physics,
		Timers:    cfg.Timers,
		Score:     cfg.Score,
		Character: character,
	}
}

func (s *PlayerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	p := w.Player()
	if p.Dead {
		return
	}
	in := w.Input()

	s.move(p, in)
	s.updatePMeter(p)
	s.jump(p, in)
	s.applyGravity(p, in)
	s.resolve(w, p)

	if !s.collideEnemies(w, p) {
		return
	}
	s.collectCoins(w, p)
	s.collectPowerups(w, p)

	if p.Invincible {
		p.InvincibleTicks--
		if p.InvincibleTicks <= 0 {
			p.Invincible = false
			p.InvincibleTicks = 0
		}
	}
}

func (s *PlayerSystem) maxSpeed(running bool) float64 {
	if running {
		return s.Physics.RunSpeedMax * s.Character.RunFactor
	}
	return s.Physics.WalkSpeedMax
}

func (s *PlayerSystem) move(p *component.Player, in component.Input) {
	dir := in.MoveX()
	if dir != 0 {
		p.FacingRight = dir > 0
	}
	p.Running = in.Run && dir != 0

	accel := s.Physics.RunAccel
	if !p.OnGround {
		accel = s.Physics.AirControl
	}
	if !in.Run {
		accel *= s.Physics.WalkAccelFactor
	}
	p.Vel.X += dir * accel

	if dir == 0 && p.OnGround {
		if math.Abs(p.Vel.X) < s.Physics.GroundFriction {
			p.Vel.X = 0
		} else {
			p.Vel.X -= common.Sign(p.Vel.X) * s.Physics.GroundFriction
		}
	}

	limit := s.maxSpeed(in.Run)
	p.Vel.X = common.Clamp(p.Vel.X, -limit, limit)
}

// updatePMeter fills one step per PMeterTicks consecutive ticks of grounded
// running above walk speed and drains one step per tick otherwise.
func (s *PlayerSystem) updatePMeter(p *component.Player) {
	if p.Running && p.OnGround && math.Abs(p.Vel.X) > s.Physics.WalkSpeedMax {
		p.RunTimer++
		if p.RunTimer >= s.Physics.PMeterTicks && p.PMeter < s.Physics.PMeterMax {
			p.RunTimer = 0
			p.PMeter++
		}
		return
	}
	p.RunTimer = 0
	if p.PMeter > 0 {
		p.PMeter--
	}
}

func (s *PlayerSystem) jumpPower(p *component.Player) float64 {
	power := s.Physics.JumpSpeed * s.Character.JumpFactor
	if p.PMeter >= s.Physics.PMeterMax {
		power *= s.Physics.PJumpFactor
	}
	return power
}

func (s *PlayerSystem) jump(p *component.Player, in component.Input) {
	if in.Jump {
		switch {
		case p.OnGround && p.JumpAvailable:
			p.Vel.Y = -s.jumpPower(p)
			p.OnGround = false
			p.JumpAvailable = false
			p.JumpHeld = true
			p.JumpTimer = 0
		case p.JumpHeld && !p.OnGround:
			p.JumpTimer++
			if p.JumpTimer < s.Physics.JumpHoldTicks {
				p.Vel.Y = math.Min(p.Vel.Y, -s.Physics.JumpSpeed*s.Character.JumpFactor*0.5)
			}
		}
	} else {
		// halve once, on release
		if p.JumpHeld && !p.OnGround && p.Vel.Y < 0 {
			p.Vel.Y *= 0.5
		}
		p.JumpHeld = false
		if p.OnGround {
			p.JumpAvailable = true
		}
	}
}

func (s *PlayerSystem) applyGravity(p *component.Player, in component.Input) {
	scale := s.Character.GravityScale
	if !p.OnGround && in.Jump {
		scale = s.Character.FloatGravityScale
	}
	p.Vel.Y = math.Min(p.Vel.Y+s.Physics.Gravity*scale, s.Physics.TerminalVelocity)
}

func (s *PlayerSystem) resolve(w *ecs.World, p *component.Player) {
	r := p.Rect()
	solids := collision.Gather(w, r, p.Vel)
	res := collision.Resolve(&r, &p.Vel, solids)
	p.OnGround = res.Grounded

	if res.Ceiling {
		// a bonk ends the hold window
		p.JumpTimer = s.Physics.JumpHoldTicks
		s.hitBlock(w, p, res.Y.Solid.Entity)
	}

	if !p.OnGround && p.Vel.Y >= 0 {
		if _, ok := collision.RestingOn(r, solids); ok {
			p.OnGround = true
			p.Vel.Y = 0
		}
	}

	b := w.Bounds()
	if r.X < 0 {
		r.X = 0
		p.Vel.X = 0
	} else if r.Right() > b.Width() {
		r.X = b.Width() - r.Width
		p.Vel.X = 0
	}
	if r.Bottom() > b.Height() {
		r.Y = b.Height() - r.Height
		p.Vel.Y = 0
		p.OnGround = true
	}
	p.SetRect(r)
}

// hitBlock reacts to the player's head striking tile e from below.
func (s *PlayerSystem) hitBlock(w *ecs.World, p *component.Player, e ecs.Entity) {
	t := w.Tiles().Get(e)
	if t == nil {
		return
	}
	above := component.Cell{X: t.Cell.X, Y: t.Cell.Y - 1}
	if itemRoom(w, above) {
		if item, ok := t.Trigger(); ok {
			w.Spawn(itemDescriptor(item, above))
			w.Events().Push(ecs.Event{Type: ecs.EventItemSpawned, Entity: e, Cell: above, Detail: string(item)})
			return
		}
	}
	if t.Type.Breakable() && p.Power != component.PowerSmall {
		w.MarkRemoved(e)
		p.Score += s.Score.Brick
		w.Events().Push(ecs.Event{Type: ecs.EventBlockBroken, Entity: e, Cell: t.Cell})
	}
}

// itemRoom reports whether a block's item can appear in c. A block with no
// room keeps its item until the cell is cleared.
func itemRoom(w *ecs.World, c component.Cell) bool {
	if !w.Bounds().Contains(c) {
		return false
	}
	_, t, ok := w.TileAt(c)
	return !ok || !t.Solid()
}

func itemDescriptor(item component.Item, cell component.Cell) component.Descriptor {
	if kind, ok := component.PowerupFromItem(item); ok {
		return component.Descriptor{Kind: component.KindPowerup, Cell: cell, Subtype: string(kind)}
	}
	return component.Descriptor{Kind: component.KindCoin, Cell: cell, Value: component.DefaultCoinValue}
}

// collideEnemies resolves each overlap as exactly one stomp or one hit. It
// reports false when the player died.
func (s *PlayerSystem) collideEnemies(w *ecs.World, p *component.Player) bool {
	r := p.Rect()
	falling := p.Vel.Y > 0
	for _, e := range w.Enemies().Entities() {
		en := w.Enemies().Get(e)
		if !en.Alive || !r.Intersects(en.Rect()) {
			continue
		}
		if falling && r.Bottom() < en.Rect().CenterY() && en.Stompable {
			w.MarkRemoved(e)
			p.Vel.Y = -s.Physics.StompBounce
			p.Score += s.Score.Stomp
			w.Events().Push(ecs.Event{Type: ecs.EventStomp, Entity: e, Detail: string(en.Type)})
			continue
		}
		s.damage(w, p, e)
		if p.Dead {
			return false
		}
	}
	return true
}

func (s *PlayerSystem) damage(w *ecs.World, p *component.Player, source ecs.Entity) {
	if p.Invincible {
		return
	}
	ctx := s.stateContext(p)
	ctx.Die = func() {
		p.Lives--
		p.Dead = true
		w.Events().Push(ecs.Event{Type: ecs.EventPlayerDied, Entity: source})
	}
	powerState(p.Power).OnDamage(ctx)
	if !p.Dead {
		w.Events().Push(ecs.Event{Type: ecs.EventDamage, Entity: source, Detail: p.Power.String()})
	}
}

func (s *PlayerSystem) stateContext(p *component.Player) *component.PowerStateContext {
	return &component.PowerStateContext{
		Player:      p,
		ChangeState: func(state component.PowerState) { p.Power = state.Name() },
		Invincible: func(ticks int) {
			p.Invincible = ticks > 0
			p.InvincibleTicks = ticks
		},
		DamageTicks: s.Timers.DamageInvincible,
	}
}

func (s *PlayerSystem) collectCoins(w *ecs.World, p *component.Player) {
	r := p.Rect()
	for _, e := range w.Coins().Entities() {
		c := w.Coins().Get(e)
		if !c.Alive || !r.Intersects(c.Rect()) {
			continue
		}
		w.MarkRemoved(e)
		p.Coins += c.Value
		p.Score += s.Score.Coin * c.Value
		w.Events().Push(ecs.Event{Type: ecs.EventCoinCollected, Entity: e})
	}
}

func (s *PlayerSystem) collectPowerups(w *ecs.World, p *component.Player) {
	r := p.Rect()
	for _, e := range w.Powerups().Entities() {
		pu := w.Powerups().Get(e)
		if !pu.Alive || !r.Intersects(pu.Rect()) {
			continue
		}
		w.MarkRemoved(e)
		if pu.Type == component.PowerupStar {
			p.Invincible = true
			p.InvincibleTicks = s.Timers.StarInvincible
		} else {
			powerState(p.Power).OnPowerup(s.stateContext(p), pu.Type)
		}
		p.Score += s.Score.Powerup
		w.Events().Push(ecs.Event{Type: ecs.EventPowerup, Entity: e, Detail: string(pu.Type)})
	}
}
