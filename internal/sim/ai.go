package sim

import (
	"math"

	"stellarforge/internal/sim/geom"
)

// AI target counts. The AI never exceeds the shared resource caps; these
// are its own softer goals.
const (
	aiMirrorGoal = 3
	aiBuildGoal  = 6
)

// aiHeroRotation is the fixed purchase order for hero production.
var aiHeroRotation = []ProductKind{ProductVanguard, ProductLancer, ProductWarden, ProductPhantom}

// advanceAI runs every AI-controlled player's behaviors. Each behavior
// category re-evaluates when the tick clock passes its scheduled
// timestamp, then pushes the timestamp a fixed interval forward. Staggered
// intervals keep per-tick AI cost flat and, since the schedule lives in
// simulation state, identical on every peer.
func (w *World) advanceAI() {
	for _, p := range w.Players {
		if !p.AIControlled || p.Defeated {
			continue
		}
		if w.Tick >= p.ai.mirrorAt {
			p.ai.mirrorAt = w.Tick + AIMirrorInterval
			w.aiManageMirrors(p)
		}
		if w.Tick >= p.ai.postureAt {
			p.ai.postureAt = w.Tick + aiPostureInterval(p.Strategy)
			w.aiPosture(p)
		}
		if w.Tick >= p.ai.heroAt {
			p.ai.heroAt = w.Tick + AIHeroInterval
			w.aiProduce(p)
		}
		if w.Tick >= p.ai.buildAt {
			p.ai.buildAt = w.Tick + aiBuildInterval(p.Strategy)
			w.aiBuild(p)
		}
	}
}

// aiPostureInterval returns the ticks between posture re-evaluations.
// Aggressive and wave strategies re-read the battlefield twice as often.
func aiPostureInterval(s Strategy) int64 {
	switch s {
	case StrategyAggressive, StrategyWaves:
		return AIPostureIntervalFast
	default:
		return AIPostureInterval
	}
}

// aiBuildInterval returns the ticks between construction attempts.
// Economic players expand faster than the rest.
func aiBuildInterval(s Strategy) int64 {
	if s == StrategyEconomic {
		return AIBuildIntervalEconomic
	}
	return AIBuildInterval
}

// aiManageMirrors keeps the mirror economy running: buy mirrors up to the
// goal, link idle mirrors to the forge, and walk unlit mirrors toward the
// nearest sun until they clear the shadow.
func (w *World) aiManageMirrors(p *Player) {
	if p.Forge == nil || p.Forge.Health <= 0 {
		return
	}
	if len(p.Mirrors) < aiMirrorGoal {
		p.Forge.Enqueue(ProductMirror)
	}
	for _, m := range p.Mirrors {
		if m.Health <= 0 {
			continue
		}
		if m.Link.IsZero() {
			m.Link = p.Forge.Ref
		}
		if !m.Lit && !m.HasTarget && len(w.Suns) > 0 {
			sun := w.nearestSun(m.Pos)
			dir := sun.Pos.Sub(m.Pos)
			if dir.LenSq() > geom.Epsilon {
				m.Target = clampPoint(w, m.Pos.X+dir.Normalize().X*120, m.Pos.Y+dir.Normalize().Y*120)
				m.HasTarget = true
			}
		}
	}
}

// aiPosture moves the army. A live threat near the forge or a mirror
// overrides everything; otherwise the strategy branch decides.
func (w *World) aiPosture(p *Player) {
	units := w.aiArmy(p)
	if len(units) == 0 {
		return
	}

	if threat := w.aiNearestThreat(p); threat != nil {
		w.aiRallyAll(units, threat.Pos, threat.Ref)
		return
	}

	switch p.Strategy {
	case StrategyAggressive:
		if forge := w.aiEnemyForge(p); forge != nil {
			w.aiRallyAll(units, forge.Pos, forge.Ref)
		}
	case StrategyWaves:
		if len(units) >= AIWaveSize {
			if forge := w.aiEnemyForge(p); forge != nil {
				w.aiRallyAll(units, forge.Pos, forge.Ref)
			}
		} else if p.Forge != nil {
			w.aiRallyAll(units, p.Forge.Pos.Add(geom.Vec2{X: InfluenceRadius * 0.6}), NoEntity)
		}
	default:
		// Economic and defensive: rotate the army between guard points.
		points := w.aiGuardPoints(p)
		if len(points) == 0 {
			return
		}
		p.ai.guardIdx = (p.ai.guardIdx + 1) % len(points)
		w.aiRallyAll(units, points[p.ai.guardIdx], NoEntity)
	}
}

// aiArmy collects the player's live units.
func (w *World) aiArmy(p *Player) []*Unit {
	army := make([]*Unit, 0, len(p.Units))
	for _, u := range p.Units {
		if u.Health > 0 {
			army = append(army, u)
		}
	}
	return army
}

// aiRallyAll orders the whole army to one point in a loose ring so the
// separation pass does not fight the rally every tick.
func (w *World) aiRallyAll(units []*Unit, center geom.Vec2, lock EntityRef) {
	for i, u := range units {
		angle := 2 * math.Pi * float64(i) / float64(len(units))
		offset := geom.FromAngle(angle).Scale(40)
		u.Rally = clampPoint(w, center.X+offset.X, center.Y+offset.Y)
		u.HasRally = true
		u.LockTarget = lock

		if u.Kind == UnitVanguard && u.AbilityCooldown == 0 && u.Pos.Dist(center) < 300 {
			u.StartDash(center)
		}
	}
}

// aiNearestThreat scans the guard perimeter (forge plus mirrors) for the
// closest visible enemy unit.
func (w *World) aiNearestThreat(p *Player) *Unit {
	var best *Unit
	bestDist := math.MaxFloat64
	for _, point := range w.aiGuardPoints(p) {
		u, d := w.nearestVisibleEnemyUnit(p.Index, point, AIGuardRadius)
		if u != nil && d < bestDist {
			best = u
			bestDist = d
		}
	}
	return best
}

// aiGuardPoints lists the positions worth defending, forge first.
func (w *World) aiGuardPoints(p *Player) []geom.Vec2 {
	points := make([]geom.Vec2, 0, 1+len(p.Mirrors))
	if p.Forge != nil && p.Forge.Health > 0 {
		points = append(points, p.Forge.Pos)
	}
	for _, m := range p.Mirrors {
		if m.Health > 0 {
			points = append(points, m.Pos)
		}
	}
	return points
}

// aiEnemyForge returns the nearest live enemy forge.
func (w *World) aiEnemyForge(p *Player) *Forge {
	var best *Forge
	bestDist := math.MaxFloat64
	from := geom.Vec2{X: w.Cfg.WorldWidth / 2, Y: w.Cfg.WorldHeight / 2}
	if p.Forge != nil {
		from = p.Forge.Pos
	}
	for _, enemy := range w.Players {
		if enemy.Team == p.Team || enemy.Defeated {
			continue
		}
		f := enemy.Forge
		if f == nil || f.Health <= 0 {
			continue
		}
		if d := f.Pos.Dist(from); d < bestDist {
			best = f
			bestDist = d
		}
	}
	return best
}

// aiProduce keeps the army supplied: swarms continuously, plus the next
// hero from the rotation the player does not field yet.
func (w *World) aiProduce(p *Player) {
	f := p.Forge
	if f == nil || f.Health <= 0 {
		return
	}
	if p.UnitCount(UnitSwarm) < w.Limits.MaxUnitsPerKind {
		f.Enqueue(ProductSwarm)
	}
	for _, kind := range aiHeroRotation {
		if p.UnitCount(heroUnitKind(kind)) == 0 {
			f.Enqueue(kind)
			break
		}
	}
}

// heroUnitKind maps a hero product to its unit kind.
func heroUnitKind(k ProductKind) UnitKind {
	switch k {
	case ProductVanguard:
		return UnitVanguard
	case ProductPhantom:
		return UnitPhantom
	case ProductWarden:
		return UnitWarden
	case ProductLancer:
		return UnitLancer
	default:
		return UnitSwarm
	}
}

// aiBuildRotation is the fixed construction order around the forge.
var aiBuildRotation = []BuildingKind{
	BuildingTurret, BuildingShieldEmitter, BuildingTurret,
	BuildingFactory, BuildingAbsorber, BuildingBeacon,
}

// aiBuild places the next structure from the rotation on a ring around
// an anchor point, at the first collision-free step.
func (w *World) aiBuild(p *Player) {
	if p.Forge == nil || p.Forge.Health <= 0 {
		return
	}
	if len(p.Buildings) >= aiBuildGoal {
		return
	}
	kind := aiBuildRotation[len(p.Buildings)%len(aiBuildRotation)]
	anchor := w.aiBuildAnchor(p)
	for step := 0; step < AIBuildRingSteps; step++ {
		angle := 2 * math.Pi * float64(step) / AIBuildRingSteps
		pos := anchor.Add(geom.FromAngle(angle).Scale(AIBuildRingRadius))
		pos = clampPoint(w, pos.X, pos.Y)
		if w.placeBuilding(p, kind, pos) != nil {
			return
		}
	}
}

// aiBuildAnchor picks where the next structure should cluster: the
// nearest productive mirror, or under threat the guard point closest to
// the attacker. Falls back to the forge.
func (w *World) aiBuildAnchor(p *Player) geom.Vec2 {
	if threat := w.aiNearestThreat(p); threat != nil {
		var best geom.Vec2
		bestDist := math.MaxFloat64
		for _, point := range w.aiGuardPoints(p) {
			if d := point.Dist(threat.Pos); d < bestDist {
				best = point
				bestDist = d
			}
		}
		if bestDist < math.MaxFloat64 {
			return best
		}
	}
	var best *Mirror
	bestDist := math.MaxFloat64
	for _, m := range p.Mirrors {
		if m.Health <= 0 || !m.Lit {
			continue
		}
		if d := m.Pos.Dist(p.Forge.Pos); d < bestDist {
			best = m
			bestDist = d
		}
	}
	if best != nil {
		return best.Pos
	}
	return p.Forge.Pos
}

// nearestSun returns the closest sun to pos. Callers check len(w.Suns).
func (w *World) nearestSun(pos geom.Vec2) *Sun {
	best := w.Suns[0]
	bestDist := best.Pos.Dist(pos)
	for _, s := range w.Suns[1:] {
		if d := s.Pos.Dist(pos); d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best
}
