package main

import (
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/combatcore/common"
)

// Input holds the viewer's per-frame input state.
type Input struct {
	// Move is the requested travel direction on the ground plane.
	Move common.Vec3
	// Restart is true on the frame the arena should be rebuilt.
	Restart bool
	// Grant is the ability reward requested this frame, empty if none.
	Grant string
	// Perk is the stat perk requested this frame, empty if none.
	Perk string
	// ToggleDebug flips the chipmunk overlay.
	ToggleDebug bool
	// Paused freezes the simulation.
	Paused bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls the keyboard and the first gamepad.
func (i *Input) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		os.Exit(0)
	}

	var x, z float64
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		x -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		x += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		z += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		z -= 1
	}

	ids := ebiten.GamepadIDs()
	var gpRestart, gpPause bool
	if len(ids) > 0 {
		gid := ids[0]
		lx := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
		// Dead zone.
		if lx*lx+ly*ly > 0.09 {
			x, z = lx, -ly
		}
		gpRestart = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterLeft)
		gpPause = inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
	}
	i.Move = common.V(x, 0, z)

	i.Restart = inpututil.IsKeyJustPressed(ebiten.KeyR) || gpRestart
	i.ToggleDebug = inpututil.IsKeyJustPressed(ebiten.KeyF1)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || gpPause {
		i.Paused = !i.Paused
	}

	i.Grant = ""
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		i.Grant = "multishot"
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		i.Grant = "ricochet"
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		i.Grant = "explosive"
	}

	i.Perk = ""
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key4):
		i.Perk = "health"
	case inpututil.IsKeyJustPressed(ebiten.Key5):
		i.Perk = "attack"
	case inpututil.IsKeyJustPressed(ebiten.Key6):
		i.Perk = "speed"
	}
}
