package constprop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleValues() []Value {
	return []Value{
		Undef(),
		NAC(),
		MakeConstant(0),
		MakeConstant(1),
		MakeConstant(-7),
		MakeConstant(42),
	}
}

func TestMeetValueTable(t *testing.T) {
	tests := []struct {
		name string
		v1   Value
		v2   Value
		want Value
	}{
		{"undef-undef", Undef(), Undef(), Undef()},
		{"undef-const", Undef(), MakeConstant(3), MakeConstant(3)},
		{"const-undef", MakeConstant(3), Undef(), MakeConstant(3)},
		{"undef-nac", Undef(), NAC(), NAC()},
		{"nac-const", NAC(), MakeConstant(3), NAC()},
		{"equal-consts", MakeConstant(5), MakeConstant(5), MakeConstant(5)},
		{"distinct-consts", MakeConstant(5), MakeConstant(6), NAC()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetValue(tt.v1, tt.v2))
		})
	}
}

func TestMeetValueLaws(t *testing.T) {
	vals := sampleValues()
	for _, a := range vals {
		// Idempotent, identity, absorption.
		assert.Equal(t, a, MeetValue(a, a))
		assert.Equal(t, a, MeetValue(a, Undef()))
		assert.Equal(t, NAC(), MeetValue(a, NAC()))
		for _, b := range vals {
			// Commutative.
			assert.Equal(t, MeetValue(a, b), MeetValue(b, a))
			for _, c := range vals {
				// Associative.
				assert.Equal(t,
					MeetValue(a, MeetValue(b, c)),
					MeetValue(MeetValue(a, b), c))
			}
		}
	}
}

func TestValueAccessors(t *testing.T) {
	assert.True(t, Undef().IsUndef())
	assert.True(t, NAC().IsNAC())
	v := MakeConstant(41)
	assert.True(t, v.IsConstant())
	assert.Equal(t, int32(41), v.Constant())
	assert.Equal(t, "41", v.String())
	assert.Equal(t, "UNDEF", Undef().String())
	assert.Equal(t, "NAC", NAC().String())
	assert.Panics(t, func() { NAC().Constant() })
}
