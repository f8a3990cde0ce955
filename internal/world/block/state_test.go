package block

import "testing"

func TestBlockStatePacksIDAndOrientation(t *testing.T) {
	s := NewBlockState(StoneBlockId, East)
	if s.ID() != StoneBlockId {
		t.Fatalf("ID() = %d, want %d", s.ID(), StoneBlockId)
	}
	if s.Orientation() != East {
		t.Fatalf("Orientation() = %v, want %v", s.Orientation(), East)
	}
}

func TestAirStatesCompareEqualAcrossProperties(t *testing.T) {
	a := NewBlockState(AirBlockId, North)
	b := NewBlockState(AirBlockId, Up)
	if !Equal(a, b) {
		t.Fatalf("expected two Air states with different orientation to compare equal")
	}
	if !a.IsAir() || !b.IsAir() {
		t.Fatalf("expected both states to report IsAir")
	}
}

func TestNonAirStatesRespectOrientation(t *testing.T) {
	a := NewBlockState(StoneBlockId, North)
	b := NewBlockState(StoneBlockId, South)
	if Equal(a, b) {
		t.Fatalf("expected differently-oriented stone states to compare unequal")
	}
}

func TestRoundTripThroughU16(t *testing.T) {
	s := NewBlockState(DoorBlockId, West)
	narrowed := s.ToU16()
	widened := FromU16(narrowed)
	if widened.ID() != DoorBlockId || widened.Orientation() != West {
		t.Fatalf("round trip through u16 mismatched: %+v", widened)
	}
}

func TestToggleAdvancesOrientation(t *testing.T) {
	s := NewBlockState(DoorBlockId, North)
	s = Toggle(s)
	if s.Orientation() != East {
		t.Fatalf("Toggle() orientation = %v, want East", s.Orientation())
	}
}

func TestIsSolidAndOpaque(t *testing.T) {
	if !IsSolid(StoneBlockId) || !IsOpaque(StoneBlockId) {
		t.Fatalf("expected stone to be solid and opaque")
	}
	if IsSolid(AirBlockId) || IsOpaque(AirBlockId) {
		t.Fatalf("expected air to be neither solid nor opaque")
	}
}
