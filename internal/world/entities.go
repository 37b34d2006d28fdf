// Stationary entities: victims, supply hubs, obstacles
package world

import "fmt"

// NoCarrier marks a victim as not being carried by any drone.
const NoCarrier = -1

// Victim is a stationary casualty with decaying health. A victim keeps its
// cell for the whole run; being carried is a logical relation to a drone id,
// not a position change. Once rescued, health is frozen.
type Victim struct {
	ID        int
	Pos       Coord
	Health    float64
	MaxHealth float64
	Rescued   bool
	Found     bool
	CarrierID int
}

// NewVictim creates a victim at full health.
func NewVictim(id int, pos Coord, maxHealth float64) *Victim {
	return &Victim{ID: id, Pos: pos, Health: maxHealth, MaxHealth: maxHealth, CarrierID: NoCarrier}
}

// Name returns the victim's registry id.
func (v *Victim) Name() string {
	return fmt.Sprintf("victim-%d", v.ID)
}

// Decay reduces health by rate, clamped at 0. Rescued victims are frozen.
// It returns true when this call drops health to 0, i.e. the victim is lost.
func (v *Victim) Decay(rate float64) bool {
	if v.Rescued || v.Health <= 0 {
		return false
	}
	v.Health -= rate
	if v.Health <= 0 {
		v.Health = 0
		return true
	}
	return false
}

// Lost reports whether the victim perished before rescue. Lost victims are
// excluded from sensing, pickup and delivery.
func (v *Victim) Lost() bool {
	return !v.Rescued && v.Health <= 0
}

// Carried reports whether a drone currently holds the victim.
func (v *Victim) Carried() bool {
	return v.CarrierID != NoCarrier
}

// Rescuable reports whether the victim may still be sensed and picked up.
func (v *Victim) Rescuable() bool {
	return !v.Rescued && !v.Lost()
}

// HealthFraction returns health scaled to [0,1] for display layers.
func (v *Victim) HealthFraction() float64 {
	if v.MaxHealth <= 0 {
		return 0
	}
	return v.Health / v.MaxHealth
}

// Hub is a passive supply station. It serves recharge and victim drop-off
// for drones located on its cell; it has no per-tick behavior of its own.
type Hub struct {
	ID  int
	Pos Coord
}

// Name returns the hub's registry id.
func (h *Hub) Name() string {
	return fmt.Sprintf("hub-%d", h.ID)
}

// Recharge returns the battery level after one tick of charging at the hub,
// capped at max.
func (h *Hub) Recharge(battery, rate, max int) int {
	battery += rate
	if battery > max {
		battery = max
	}
	return battery
}

// Deliver marks a victim as rescued and releases it from its carrier.
// Lost victims cannot be delivered; the carrier relation is still cleared.
func (h *Hub) Deliver(v *Victim) bool {
	v.CarrierID = NoCarrier
	if !v.Rescuable() {
		return false
	}
	v.Rescued = true
	v.Found = true
	return true
}

// Obstacle blocks drone entry into its cell.
type Obstacle struct {
	ID  int
	Pos Coord
}

// Name returns the obstacle's registry id.
func (o *Obstacle) Name() string {
	return fmt.Sprintf("obstacle-%d", o.ID)
}
