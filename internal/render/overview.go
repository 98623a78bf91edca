// Package render draws debug overview frames of a world snapshot.
//
// The renderer is a pure collaborator: it reads immutable snapshots and
// never touches simulation state, so gameplay stays identical whether or
// not anything is drawn.
package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"stellarforge/internal/sim"

	"github.com/fogleman/gg"
)

// Overview renders top-down frames of a match.
type Overview struct {
	width, height int
	dc            *gg.Context
}

// NewOverview creates a renderer with a fixed frame size.
func NewOverview(width, height int) *Overview {
	return &Overview{
		width:  width,
		height: height,
		dc:     gg.NewContext(width, height),
	}
}

// RenderPNG draws the snapshot and writes a PNG file.
func (o *Overview) RenderPNG(snap *sim.WorldSnapshot, path string) error {
	o.Render(snap)
	return o.dc.SavePNG(path)
}

// Render draws the snapshot into the internal context.
func (o *Overview) Render(snap *sim.WorldSnapshot) {
	dc := o.dc

	o.drawBackground(dc)
	o.drawParticles(dc, snap.Particles)
	o.drawAsteroids(dc, snap.Asteroids)
	o.drawSuns(dc, snap.Suns)
	o.drawForges(dc, snap.Forges)
	o.drawBuildings(dc, snap.Buildings)
	o.drawMirrors(dc, snap.Mirrors)
	o.drawUnits(dc, snap.Units)
	o.drawProjectiles(dc, snap.Projectiles)
	o.drawIndicators(dc, snap.Indicators)
	o.drawHUD(dc, snap)
}

// Image returns the current frame.
func (o *Overview) Image() *gg.Context { return o.dc }

func (o *Overview) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{10, 10, 24, 255})
	dc.DrawRectangle(0, 0, float64(o.width), float64(o.height))
	dc.Fill()

	// Sparse starfield on a fixed pattern, no RNG needed.
	dc.SetColor(color.RGBA{120, 120, 150, 255})
	for i := 0; i < 40; i++ {
		x := float64((i * 73) % o.width)
		y := float64((i * 41) % o.height)
		dc.DrawCircle(x, y, 1)
		dc.Fill()
	}
}

func (o *Overview) drawParticles(dc *gg.Context, particles []sim.ParticleSnapshot) {
	for _, p := range particles {
		c := hueColor(p.Hue)
		c.A = uint8(p.Alpha * 140)
		dc.SetColor(c)
		dc.DrawCircle(p.X, p.Y, 1.5)
		dc.Fill()
	}
}

func (o *Overview) drawAsteroids(dc *gg.Context, asteroids []sim.AsteroidSnapshot) {
	for _, a := range asteroids {
		if len(a.Vertices) == 0 {
			continue
		}
		dc.MoveTo(a.Vertices[0].X, a.Vertices[0].Y)
		for _, v := range a.Vertices[1:] {
			dc.LineTo(v.X, v.Y)
		}
		dc.ClosePath()
		dc.SetColor(color.RGBA{60, 56, 52, 255})
		dc.FillPreserve()
		dc.SetColor(color.RGBA{90, 84, 78, 255})
		dc.SetLineWidth(2)
		dc.Stroke()
	}
}

func (o *Overview) drawSuns(dc *gg.Context, suns []sim.SunSnapshot) {
	for _, s := range suns {
		dc.SetColor(color.RGBA{255, 220, 120, 60})
		dc.DrawCircle(s.X, s.Y, s.Radius*2)
		dc.Fill()
		dc.SetColor(color.RGBA{255, 236, 170, 255})
		dc.DrawCircle(s.X, s.Y, s.Radius)
		dc.Fill()
	}
}

func (o *Overview) drawForges(dc *gg.Context, forges []sim.ForgeSnapshot) {
	for _, f := range forges {
		c := parseHexColor(f.Color)
		dc.SetColor(c)
		dc.DrawCircle(f.X, f.Y, f.Radius)
		dc.Fill()
		if f.Lit {
			dc.SetColor(color.RGBA{255, 255, 200, 90})
			dc.DrawCircle(f.X, f.Y, f.Radius+8)
			dc.Fill()
		}
		o.drawHealthBar(dc, f.X, f.Y-f.Radius-10, f.Radius*2, f.Health, f.MaxHP)
	}
}

func (o *Overview) drawBuildings(dc *gg.Context, buildings []sim.BuildingSnapshot) {
	for _, b := range buildings {
		c := parseHexColor(b.Color)
		if b.Progress < 1 {
			// Construction sites render as dim outlines filling up.
			c.A = uint8(80 + 175*b.Progress)
		}
		dc.SetColor(c)
		dc.DrawRectangle(b.X-b.Radius, b.Y-b.Radius, b.Radius*2, b.Radius*2)
		dc.Fill()

		if b.Kind == "turret" || b.Kind == "beacon" {
			dc.SetColor(color.White)
			dc.SetLineWidth(2)
			dc.DrawLine(b.X, b.Y, b.X+math.Cos(b.Facing)*b.Radius*1.4, b.Y+math.Sin(b.Facing)*b.Radius*1.4)
			dc.Stroke()
		}
		o.drawHealthBar(dc, b.X, b.Y-b.Radius-8, b.Radius*2, b.Health, b.MaxHP)
	}
}

func (o *Overview) drawMirrors(dc *gg.Context, mirrors []sim.MirrorSnapshot) {
	for _, m := range mirrors {
		c := parseHexColor(m.Color)
		dc.SetColor(c)
		dc.DrawCircle(m.X, m.Y, 10)
		dc.Fill()
		if m.Lit {
			dc.SetColor(color.RGBA{255, 255, 160, 120})
			dc.DrawCircle(m.X, m.Y, 15)
			dc.Fill()
		}
	}
}

func (o *Overview) drawUnits(dc *gg.Context, units []sim.UnitSnapshot) {
	for _, u := range units {
		c := parseHexColor(u.Color)
		if u.Cloaked {
			c.A = 70
		}
		dc.SetColor(c)
		dc.DrawCircle(u.X, u.Y, u.Radius)
		dc.Fill()

		if u.Shield > 0 {
			dc.SetColor(color.RGBA{140, 200, 255, 110})
			dc.DrawCircle(u.X, u.Y, u.Radius+5)
			dc.SetLineWidth(2)
			dc.Stroke()
		}

		dc.SetColor(color.White)
		dc.SetLineWidth(1.5)
		dc.DrawLine(u.X, u.Y, u.X+math.Cos(u.Facing)*u.Radius, u.Y+math.Sin(u.Facing)*u.Radius)
		dc.Stroke()

		o.drawHealthBar(dc, u.X, u.Y-u.Radius-6, u.Radius*2, u.Health, u.MaxHP)
	}
}

func (o *Overview) drawProjectiles(dc *gg.Context, projectiles []sim.ProjectileSnapshot) {
	for _, p := range projectiles {
		c := parseHexColor(p.Color)
		switch p.Kind {
		case "beam":
			dc.SetColor(c)
			dc.SetLineWidth(3)
			dc.DrawLine(p.X-p.VX*0.02, p.Y-p.VY*0.02, p.X, p.Y)
			dc.Stroke()
		case "zone":
			c.A = 60
			dc.SetColor(c)
			dc.DrawCircle(p.X, p.Y, 30)
			dc.Fill()
		case "orb":
			dc.SetColor(c)
			dc.DrawCircle(p.X, p.Y, 6)
			dc.Fill()
			dc.SetColor(color.RGBA{255, 255, 255, 90})
			dc.DrawCircle(p.X, p.Y, 9)
			dc.SetLineWidth(1)
			dc.Stroke()
		default:
			dc.SetColor(c)
			dc.DrawCircle(p.X, p.Y, 3)
			dc.Fill()
		}
	}
}

func (o *Overview) drawIndicators(dc *gg.Context, indicators []sim.IndicatorSnapshot) {
	for _, ind := range indicators {
		alpha := uint8(255 * float64(ind.Ticks) / 45.0)
		dc.SetColor(color.RGBA{255, 90, 90, alpha})
		dc.DrawStringAnchored(strconv.Itoa(int(ind.Amount)), ind.X, ind.Y-12, 0.5, 0.5)
	}
}

func (o *Overview) drawHUD(dc *gg.Context, snap *sim.WorldSnapshot) {
	dc.SetColor(color.White)
	dc.DrawString("tick "+strconv.FormatInt(snap.Tick, 10), 10, 20)
	dc.DrawString("fp "+strconv.FormatUint(uint64(snap.Fingerprint), 16), 10, 38)

	y := 58.0
	for _, p := range snap.Players {
		c := parseHexColor(p.Color)
		dc.SetColor(c)
		label := p.ID + "  " + strconv.Itoa(int(p.Energy))
		if p.Defeated {
			label += "  defeated"
		}
		dc.DrawString(label, 10, y)
		y += 18
	}
	if snap.Over {
		dc.SetColor(color.White)
		dc.DrawStringAnchored("match over", float64(o.width)/2, 30, 0.5, 0.5)
	}
}

func (o *Overview) drawHealthBar(dc *gg.Context, x, y, width, health, maxHealth float64) {
	if maxHealth <= 0 || health >= maxHealth {
		return
	}
	frac := health / maxHealth
	dc.SetColor(color.RGBA{40, 40, 40, 200})
	dc.DrawRectangle(x-width/2, y, width, 4)
	dc.Fill()
	dc.SetColor(color.RGBA{90, 220, 90, 230})
	dc.DrawRectangle(x-width/2, y, width*frac, 4)
	dc.Fill()
}

// hueColor maps a 0..1 hue to an RGB color on a simple wheel.
func hueColor(h float64) color.RGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	seg := h * 6
	x := uint8(255 * (1 - math.Abs(math.Mod(seg, 2)-1)))
	switch int(seg) {
	case 0:
		return color.RGBA{255, x, 0, 255}
	case 1:
		return color.RGBA{x, 255, 0, 255}
	case 2:
		return color.RGBA{0, 255, x, 255}
	case 3:
		return color.RGBA{0, x, 255, 255}
	case 4:
		return color.RGBA{x, 0, 255, 255}
	default:
		return color.RGBA{255, 0, x, 255}
	}
}

// parseHexColor parses #rgb or #rrggbb, falling back to gray.
func parseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	fallback := color.RGBA{160, 160, 160, 255}

	parse := func(str string) (uint8, bool) {
		v, err := strconv.ParseUint(str, 16, 8)
		if err != nil {
			return 0, false
		}
		return uint8(v), true
	}

	switch len(s) {
	case 3:
		r, ok1 := parse(strings.Repeat(string(s[0]), 2))
		g, ok2 := parse(strings.Repeat(string(s[1]), 2))
		b, ok3 := parse(strings.Repeat(string(s[2]), 2))
		if ok1 && ok2 && ok3 {
			return color.RGBA{r, g, b, 255}
		}
	case 6:
		r, ok1 := parse(s[0:2])
		g, ok2 := parse(s[2:4])
		b, ok3 := parse(s[4:6])
		if ok1 && ok2 && ok3 {
			return color.RGBA{r, g, b, 255}
		}
	}
	return fallback
}
