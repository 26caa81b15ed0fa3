package system

import "github.com/milk9111/fanbuilder/ecs/component"

// Power state singletons (avoid allocations on transitions).
var (
	powerStateSmall component.PowerState = &powerSmallState{}
	powerStateBig   component.PowerState = &powerBigState{}
	powerStateFire  component.PowerState = &powerFireState{}
)

func powerState(p component.Power) component.PowerState {
	switch p {
	case component.PowerBig:
		return powerStateBig
	case component.PowerFire:
		return powerStateFire
	default:
		return powerStateSmall
	}
}

type powerSmallState struct{}

type powerBigState struct{}

type powerFireState struct{}

func (powerSmallState) Name() component.Power { return component.PowerSmall }
func (powerSmallState) OnPowerup(ctx *component.PowerStateContext, kind component.PowerupType) {
	if ctx == nil || ctx.ChangeState == nil {
		return
	}
	switch kind {
	case component.PowerupMushroom:
		ctx.ChangeState(powerStateBig)
	case component.PowerupFireFlower:
		ctx.ChangeState(powerStateFire)
	}
}
func (powerSmallState) OnDamage(ctx *component.PowerStateContext) {
	if ctx == nil || ctx.Die == nil {
		return
	}
	ctx.Die()
}

func (powerBigState) Name() component.Power { return component.PowerBig }
func (powerBigState) OnPowerup(ctx *component.PowerStateContext, kind component.PowerupType) {
	if ctx == nil || ctx.ChangeState == nil {
		return
	}
	if kind == component.PowerupFireFlower {
		ctx.ChangeState(powerStateFire)
	}
}
func (powerBigState) OnDamage(ctx *component.PowerStateContext) {
	shrink(ctx)
}

func (powerFireState) Name() component.Power { return component.PowerFire }
func (powerFireState) OnPowerup(ctx *component.PowerStateContext, kind component.PowerupType) {}
func (powerFireState) OnDamage(ctx *component.PowerStateContext) {
	shrink(ctx)
}

func shrink(ctx *component.PowerStateContext) {
	if ctx == nil || ctx.ChangeState == nil {
		return
	}
	ctx.ChangeState(powerStateSmall)
	if ctx.Invincible != nil {
		ctx.Invincible(ctx.DamageTicks)
	}
}
