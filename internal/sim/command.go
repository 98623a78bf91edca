package sim

import (
	"log"
	"sort"
)

// Command kinds accepted on the wire. Unknown kinds are logged and
// dropped; a malformed command must never panic the tick loop.
const (
	CmdMoveUnits       = "move_units"
	CmdMoveMirror      = "move_mirror"
	CmdLinkMirror      = "link_mirror"
	CmdQueueProduction = "queue_production"
	CmdPlaceBuilding   = "place_building"
	CmdSetStrategy     = "set_strategy"
	CmdUseAbility      = "use_ability"
	CmdAimBeacon       = "aim_beacon"
	CmdSpawnOrbs       = "spawn_orbs"
	CmdUpgradeFactory  = "upgrade_factory"
)

// MoveUnitsPayload orders the listed units to a rally point, optionally
// locking them onto a structure target.
type MoveUnitsPayload struct {
	Seqs []uint32 `json:"seqs"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`

	LockOwner int    `json:"lockOwner"`
	LockSeq   uint32 `json:"lockSeq"`
	HasLock   bool   `json:"hasLock"`
}

// MoveMirrorPayload sends one mirror toward a position.
type MoveMirrorPayload struct {
	Seq uint32  `json:"seq"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// LinkMirrorPayload points a mirror's energy delivery at a building under
// construction, or back at the forge when Clear is set.
type LinkMirrorPayload struct {
	Seq         uint32 `json:"seq"`
	BuildingSeq uint32 `json:"buildingSeq"`
	Clear       bool   `json:"clear"`
}

// QueueProductionPayload enqueues one product at the forge.
type QueueProductionPayload struct {
	Product string `json:"product"`
}

// PlaceBuildingPayload starts a construction site.
type PlaceBuildingPayload struct {
	Building string  `json:"building"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// SetStrategyPayload switches an AI player's strategy branch.
type SetStrategyPayload struct {
	Strategy string `json:"strategy"`
}

// UseAbilityPayload triggers a hero ability aimed at a point.
type UseAbilityPayload struct {
	Seq uint32  `json:"seq"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// AimBeaconPayload rotates a beacon's spotlight cone.
type AimBeaconPayload struct {
	Seq    uint32  `json:"seq"`
	Facing float64 `json:"facing"`
}

// SpawnOrbsPayload places a linked orb pair.
type SpawnOrbsPayload struct {
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
	BX float64 `json:"bx"`
	BY float64 `json:"by"`
}

// UpgradeFactoryPayload queues a damage upgrade at a factory.
type UpgradeFactoryPayload struct {
	Seq uint32 `json:"seq"`
}

// Command is the single wire unit of player intent. Exactly one payload
// pointer is set, selected by Kind. Tick is the simulation tick the
// command executes on; both peers apply identical command sets in
// identical order, which is what keeps the lockstep fingerprints equal.
type Command struct {
	Tick   int64  `json:"tick"`
	Player int    `json:"player"`
	Kind   string `json:"kind"`

	MoveUnits       *MoveUnitsPayload       `json:"moveUnits,omitempty"`
	MoveMirror      *MoveMirrorPayload      `json:"moveMirror,omitempty"`
	LinkMirror      *LinkMirrorPayload      `json:"linkMirror,omitempty"`
	QueueProduction *QueueProductionPayload `json:"queueProduction,omitempty"`
	PlaceBuilding   *PlaceBuildingPayload   `json:"placeBuilding,omitempty"`
	SetStrategy     *SetStrategyPayload     `json:"setStrategy,omitempty"`
	UseAbility      *UseAbilityPayload      `json:"useAbility,omitempty"`
	AimBeacon       *AimBeaconPayload       `json:"aimBeacon,omitempty"`
	SpawnOrbs       *SpawnOrbsPayload       `json:"spawnOrbs,omitempty"`
	UpgradeFactory  *UpgradeFactoryPayload  `json:"upgradeFactory,omitempty"`

	arrival uint64 // enqueue order, breaks ties within a tick
}

// EnqueueCommand buffers a command for execution. Over-cap and
// out-of-roster commands are dropped silently except for a log line;
// network input must never stall the simulation.
func (w *World) EnqueueCommand(cmd Command) {
	if cmd.Player < 0 || cmd.Player >= len(w.Players) {
		log.Printf("sim: dropping command %q for unknown player %d", cmd.Kind, cmd.Player)
		return
	}
	if len(w.pending) >= w.Limits.MaxPendingCmds {
		log.Printf("sim: command buffer full, dropping %q from player %d", cmd.Kind, cmd.Player)
		return
	}
	w.arrivalSeq++
	cmd.arrival = w.arrivalSeq
	w.pending = append(w.pending, cmd)
}

// drainCommands applies every buffered command scheduled for the current
// tick or earlier, in (tick, arrival) order. Late commands execute on the
// tick they drain, so a peer that receives tick-3 and tick-5 commands in
// either network order still applies tick 3 first.
func (w *World) drainCommands() {
	if len(w.pending) == 0 {
		return
	}
	sort.SliceStable(w.pending, func(i, j int) bool {
		if w.pending[i].Tick != w.pending[j].Tick {
			return w.pending[i].Tick < w.pending[j].Tick
		}
		return w.pending[i].arrival < w.pending[j].arrival
	})

	n := 0
	for _, cmd := range w.pending {
		if cmd.Tick > w.Tick {
			w.pending[n] = cmd
			n++
			continue
		}
		w.applyCommand(cmd)
	}
	w.pending = w.pending[:n]
}

// applyCommand dispatches one validated command. Commands referencing
// entities that died in the meantime are stale, not errors: they no-op.
func (w *World) applyCommand(cmd Command) {
	p := w.Players[cmd.Player]
	if p.Defeated {
		return
	}
	w.journalCommand(cmd)

	switch cmd.Kind {
	case CmdMoveUnits:
		w.applyMoveUnits(p, cmd.MoveUnits)
	case CmdMoveMirror:
		w.applyMoveMirror(p, cmd.MoveMirror)
	case CmdLinkMirror:
		w.applyLinkMirror(p, cmd.LinkMirror)
	case CmdQueueProduction:
		w.applyQueueProduction(p, cmd.QueueProduction)
	case CmdPlaceBuilding:
		w.applyPlaceBuilding(p, cmd.PlaceBuilding)
	case CmdSetStrategy:
		w.applySetStrategy(p, cmd.SetStrategy)
	case CmdUseAbility:
		w.applyUseAbility(p, cmd.UseAbility)
	case CmdAimBeacon:
		w.applyAimBeacon(p, cmd.AimBeacon)
	case CmdSpawnOrbs:
		w.applySpawnOrbs(p, cmd.SpawnOrbs)
	case CmdUpgradeFactory:
		w.applyUpgradeFactory(p, cmd.UpgradeFactory)
	default:
		log.Printf("sim: unknown command kind %q from player %d", cmd.Kind, cmd.Player)
	}
}

func (w *World) applyMoveUnits(p *Player, pl *MoveUnitsPayload) {
	if pl == nil {
		return
	}
	lock := NoEntity
	if pl.HasLock {
		lock = EntityRef{Owner: pl.LockOwner, Seq: pl.LockSeq}
		if w.lookupTargetPos(lock) == nil {
			lock = NoEntity
		}
	}
	for _, seq := range pl.Seqs {
		u := p.UnitBySeq(seq)
		if u == nil || u.Health <= 0 {
			continue
		}
		u.Rally = clampPoint(w, pl.X, pl.Y)
		u.HasRally = true
		u.LockTarget = lock
	}
}

func (w *World) applyMoveMirror(p *Player, pl *MoveMirrorPayload) {
	if pl == nil {
		return
	}
	m := p.MirrorBySeq(pl.Seq)
	if m == nil || m.Health <= 0 {
		return
	}
	m.Target = clampPoint(w, pl.X, pl.Y)
	m.HasTarget = true
}

func (w *World) applyLinkMirror(p *Player, pl *LinkMirrorPayload) {
	if pl == nil {
		return
	}
	m := p.MirrorBySeq(pl.Seq)
	if m == nil || m.Health <= 0 {
		return
	}
	if pl.Clear {
		m.Link = NoEntity
		return
	}
	b := p.BuildingBySeq(pl.BuildingSeq)
	if b == nil || b.Health <= 0 || b.Complete() {
		return
	}
	m.Link = b.Ref
}

func (w *World) applyQueueProduction(p *Player, pl *QueueProductionPayload) {
	if pl == nil || p.Forge == nil || p.Forge.Health <= 0 {
		return
	}
	kind, ok := ParseProduct(pl.Product)
	if !ok {
		log.Printf("sim: unknown product %q from player %d", pl.Product, p.Index)
		return
	}
	p.Forge.Enqueue(kind)
}

func (w *World) applyPlaceBuilding(p *Player, pl *PlaceBuildingPayload) {
	if pl == nil {
		return
	}
	kind, ok := ParseBuilding(pl.Building)
	if !ok {
		log.Printf("sim: unknown building %q from player %d", pl.Building, p.Index)
		return
	}
	w.placeBuilding(p, kind, clampPoint(w, pl.X, pl.Y))
}

func (w *World) applySetStrategy(p *Player, pl *SetStrategyPayload) {
	if pl == nil {
		return
	}
	s, ok := ParseStrategy(pl.Strategy)
	if !ok {
		log.Printf("sim: unknown strategy %q from player %d", pl.Strategy, p.Index)
		return
	}
	p.Strategy = s
}

func (w *World) applyUseAbility(p *Player, pl *UseAbilityPayload) {
	if pl == nil {
		return
	}
	u := p.UnitBySeq(pl.Seq)
	if u == nil || u.Health <= 0 {
		return
	}
	target := clampPoint(w, pl.X, pl.Y)
	switch u.Kind {
	case UnitVanguard:
		u.StartDash(target)
	case UnitWarden:
		if u.AbilityCooldown == 0 {
			w.spawnProjectile(p, &Projectile{
				Kind: ProjDecoy, Pos: target, Origin: target,
				LifeTicks: projDecoyLife, Color: p.Color,
			})
			u.AbilityCooldown = u.Stats().AbilityCooldown
		}
	}
}

func (w *World) applyAimBeacon(p *Player, pl *AimBeaconPayload) {
	if pl == nil {
		return
	}
	b := p.BuildingBySeq(pl.Seq)
	if b == nil || b.Kind != BuildingBeacon || b.Health <= 0 {
		return
	}
	b.Facing = pl.Facing
}

func (w *World) applySpawnOrbs(p *Player, pl *SpawnOrbsPayload) {
	if pl == nil {
		return
	}
	w.SpawnOrbPair(p, clampPoint(w, pl.AX, pl.AY), clampPoint(w, pl.BX, pl.BY))
}

func (w *World) applyUpgradeFactory(p *Player, pl *UpgradeFactoryPayload) {
	if pl == nil {
		return
	}
	b := p.BuildingBySeq(pl.Seq)
	if b == nil || b.Kind != BuildingFactory || !b.Complete() || b.Health <= 0 {
		return
	}
	b.UpgradeQueued = true
}
