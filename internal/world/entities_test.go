package world

import "testing"

func TestVictim_Decay(t *testing.T) {
	v := NewVictim(0, Coord{1, 1}, 2)

	if v.Decay(0.5) {
		t.Error("first decay should not report lost")
	}
	if v.Health != 1.5 {
		t.Errorf("health = %g, want 1.5", v.Health)
	}

	v.Health = 0.3
	if !v.Decay(0.5) {
		t.Error("decay crossing zero should report lost")
	}
	if v.Health != 0 {
		t.Errorf("health must clamp at 0, got %g", v.Health)
	}
	if !v.Lost() || v.Rescuable() {
		t.Error("victim at zero health is lost and not rescuable")
	}

	// Lost is terminal: further decay calls never report again.
	if v.Decay(0.5) {
		t.Error("decay on a lost victim must not report lost twice")
	}
}

func TestVictim_RescuedFreezesHealth(t *testing.T) {
	v := NewVictim(1, Coord{0, 0}, 100)
	v.Rescued = true
	if v.Decay(10) {
		t.Error("rescued victim must not decay")
	}
	if v.Health != 100 {
		t.Errorf("health = %g, want 100", v.Health)
	}
	if v.Rescuable() {
		t.Error("rescued victim is not rescuable")
	}
}

func TestVictim_HealthFraction(t *testing.T) {
	v := NewVictim(2, Coord{0, 0}, 80)
	v.Health = 20
	if got := v.HealthFraction(); got != 0.25 {
		t.Errorf("HealthFraction = %g, want 0.25", got)
	}
}

func TestHub_Recharge(t *testing.T) {
	h := &Hub{ID: 0, Pos: Coord{1, 1}}
	if got := h.Recharge(10, 20, 100); got != 30 {
		t.Errorf("Recharge = %d, want 30", got)
	}
	if got := h.Recharge(95, 20, 100); got != 100 {
		t.Errorf("Recharge must cap at max, got %d", got)
	}
}

func TestHub_Deliver(t *testing.T) {
	h := &Hub{ID: 0, Pos: Coord{1, 1}}

	v := NewVictim(0, Coord{3, 3}, 100)
	v.CarrierID = 2
	if !h.Deliver(v) {
		t.Error("delivering a healthy victim should succeed")
	}
	if !v.Rescued || !v.Found || v.Carried() {
		t.Errorf("delivered victim state = %+v", v)
	}

	lost := NewVictim(1, Coord{4, 4}, 100)
	lost.Health = 0
	lost.CarrierID = 2
	if h.Deliver(lost) {
		t.Error("delivering a lost victim must fail")
	}
	if lost.Carried() {
		t.Error("carrier relation must be cleared even on failed delivery")
	}
}
