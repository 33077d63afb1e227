package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/combatcore/arena"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// Game renders an arena and forwards keyboard input to its player.
type Game struct {
	frames int
	debug  bool

	input   *Input
	arena   *arena.Arena
	view    View
	palette Palette
	logger  *slog.Logger
	reloads chan string

	defeated int
	cleared  bool
	lost     bool
}

func NewGame(logger *slog.Logger, debug bool) (*Game, error) {
	g := &Game{
		debug:   debug,
		input:   NewInput(),
		logger:  logger,
		reloads: make(chan string, 16),
	}
	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) reset() error {
	a, err := arena.Load(g.logger)
	if err != nil {
		return err
	}
	g.arena = a
	g.defeated, g.cleared, g.lost = 0, false, false

	spec := a.Spec()
	scale := spec.Viewer.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	g.view = View{Scale: scale, CX: baseWidth / 2, CY: baseHeight / 2}
	g.palette = NewPalette(spec.Viewer)

	a.Subscribe(ecs.EventEnemyDefeated, func(ecs.Event) { g.defeated++ })
	a.Subscribe(ecs.EventWaveCleared, func(ecs.Event) { g.cleared = true })
	a.Subscribe(ecs.EventPlayerDefeated, func(ecs.Event) { g.lost = true })
	ebiten.SetTPS(a.TickRate())
	return nil
}

// Watch forwards prefab changes to whichever arena is current, so a
// restart keeps hot reload working.
func (g *Game) Watch(ctx context.Context, dirs ...string) error {
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case name, ok := <-w.Events:
				if !ok {
					return
				}
				select {
				case g.reloads <- name:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				g.logger.Warn("viewer: watch error", slog.Any("err", err))
			}
		}
	}()
	return nil
}

func (g *Game) Update() error {
	g.frames++
	g.input.Update()

	for pending := true; pending; {
		select {
		case name := <-g.reloads:
			g.arena.Reload(name)
		default:
			pending = false
		}
	}

	if g.input.Restart {
		if err := g.reset(); err != nil {
			return err
		}
	}
	if g.input.ToggleDebug {
		g.debug = !g.debug
	}
	if g.input.Paused {
		return nil
	}

	if p, ok := g.arena.Player(); ok {
		if g.input.Grant != "" {
			value := 1
			if wp, ok := p.Weapon(); ok {
				switch g.input.Grant {
				case "multishot":
					value = wp.PerShot + 2
				case "ricochet":
					value = wp.Bounces + 1
				}
			}
			g.arena.GrantAbility(p.Entity(), g.input.Grant, value)
		}
		if g.input.Perk != "" {
			g.arena.ApplyPerk(p.Entity(), g.input.Perk)
		}
	}
	g.arena.SetMoveInput(g.input.Move)
	g.arena.Tick(1 / float64(g.arena.TickRate()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	w := g.arena.World()
	pal := g.palette

	aggro := g.arena.Spec().Aggro.HalfExtent
	ecs.ForEach2(w, component.EnemyTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.EnemyTag, tr *component.Transform) {
		if !g.arena.Handle(e).Alive() {
			return
		}
		drawBox(screen, g.view, tr.Position, aggro.X, aggro.Z, pal.Aggro, false)
	})

	ecs.ForEach3(w, component.WallComponent.Kind(), component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(_ ecs.Entity, _ *component.Wall, tr *component.Transform, col *component.Collider) {
		drawBox(screen, g.view, tr.Position, col.HalfW, col.HalfD, pal.Wall, true)
	})

	ecs.ForEach3(w, component.CombatantComponent.Kind(), component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, c *component.Combatant, tr *component.Transform, col *component.Collider) {
		clr := pal.Enemy
		switch {
		case c.State == component.StateDead:
			clr = pal.Dead
		case c.Faction == component.FactionPlayer:
			clr = pal.Player
		}
		drawCircle(screen, g.view, tr.Position, col.Radius, clr)
		if c.State == component.StateDead {
			return
		}
		drawFacing(screen, g.view, tr.Position, tr.Yaw, col.Radius*1.5, pal.Facing)
		if hp, ok := ecs.Get(w, e, component.HealthComponent.Kind()); ok && hp.Max > 0 {
			drawHealthBar(screen, g.view, tr.Position, col.Radius, float64(hp.Current)/float64(hp.Max), pal)
		}
	})

	ecs.ForEach2(w, component.ProjectileComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, p *component.Projectile, tr *component.Transform) {
		if p.State != component.ProjectileFlying {
			return
		}
		drawCircle(screen, g.view, tr.Position, p.Size, pal.Projectile)
	})

	if g.debug {
		g.arena.Physics().DebugDraw(&chipmunkDrawer{screen: screen, view: g.view})
	}

	ebitenutil.DebugPrint(screen, g.hud())
}

func (g *Game) hud() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d    FPS: %.2f    TPS: %.2f\n", g.frames, ebiten.ActualFPS(), ebiten.ActualTPS())
	fmt.Fprintf(&b, "Time: %.1fs    Defeated: %d/%d    Bodies: %d\n", g.arena.Elapsed(), g.defeated, len(g.arena.Enemies()), g.arena.Physics().Bodies())
	if p, ok := g.arena.Player(); ok {
		hp, _ := p.Health()
		st, _ := p.Stats()
		fmt.Fprintf(&b, "HP: %d/%d    ATK: %d    DEF: %d    State: %s\n", hp.Current, hp.Max, st.Attack, st.Defense, p.State())
		if wp, ok := p.Weapon(); ok {
			fmt.Fprintf(&b, "Weapon: %s x%d    Abilities: %03b    Bounces: %d\n", wp.Kind, wp.PerShot, wp.Abilities, wp.Bounces)
		}
	}
	switch {
	case g.lost:
		b.WriteString("DEFEATED - press R to restart\n")
	case g.cleared:
		b.WriteString("WAVE CLEARED - press R to restart\n")
	case g.input.Paused:
		b.WriteString("PAUSED\n")
	}
	b.WriteString("WASD move  1-3 abilities  4-6 perks  F1 physics  Esc pause")
	return b.String()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
