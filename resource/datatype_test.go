package resource

import (
	"errors"
	"testing"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
		err  bool
	}{
		{"int32", DTInt, false},
		{"FixedString", DTFixedString, false},
		{"old_int64", DTLong, false},
		{"mat4x4", DTMat4, false},
		{"22", DTFixedString, false},
		{"30", DTMax, false},
		{"31", 0, true},
		{"Int32", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDataType(tt.in)
			if tt.err {
				if !errors.Is(err, ErrFormat) {
					t.Fatalf("expected format error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestDataTypeNamesRoundTrip(t *testing.T) {
	for _, dt := range DataTypes() {
		d, err := dt.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back DataType
		if err := back.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if back != dt {
			t.Errorf("%s: got %s", dt, back)
		}
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		dt   DataType
		want int
	}{
		{DTNone, 0},
		{DTByte, 1},
		{DTBool, 1},
		{DTShort, 2},
		{DTDouble, 8},
		{DTIVec3, 12},
		{DTMat3x4, 48},
		{DTMat4, 64},
		{DTULongLong, 8},
		{DTString, 0},
		{DTScratchBuffer, 0},
	}
	for _, tt := range tests {
		if got := tt.dt.Width(); got != tt.want {
			t.Errorf("%s: width %d want %d", tt.dt, got, tt.want)
		}
	}
	if _, _, ok := (DTMax + 1).FixedSize(); ok {
		t.Errorf("out of range type has a fixed size")
	}
}
