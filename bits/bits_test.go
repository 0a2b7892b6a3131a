package bits

import "testing"

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		result := Combine(tt.high, tt.low)
		if result != tt.expected {
			t.Errorf("Combine(%X, %X) = %X; want %X", tt.high, tt.low, result, tt.expected)
		}
	}
}

func TestIsSet(t *testing.T) {
	if !IsSet(3, 0b00001000) {
		t.Error("expected bit 3 to be set")
	}
	if IsSet(3, 0b11110111) {
		t.Error("expected bit 3 to be clear")
	}
}

func TestSetAndReset(t *testing.T) {
	v := Set(5, 0x00)
	if v != 0b00100000 {
		t.Errorf("Set(5, 0) = %08b; want 00100000", v)
	}
	v = Reset(5, 0xFF)
	if v != 0b11011111 {
		t.Errorf("Reset(5, 0xFF) = %08b; want 11011111", v)
	}
}

func TestHighLow(t *testing.T) {
	if High(0xABCD) != 0xAB {
		t.Errorf("High(0xABCD) = %X; want AB", High(0xABCD))
	}
	if Low(0xABCD) != 0xCD {
		t.Errorf("Low(0xABCD) = %X; want CD", Low(0xABCD))
	}
}
