package word

import "testing"

func TestOnesComplementIdentities(t *testing.T) {
	vals := []Word36{0, 1, 0o777777_777776, NegZero, 0o123456_765432, signBit}
	for _, x := range vals {
		if got := Negate(Negate(x)); got != x {
			t.Errorf("Negate(Negate(%#o)) = %#o, want %#o", x, got, x)
		}
		sum := Add36(x, Negate(x))
		if !sum.Value.IsZero() {
			t.Errorf("x + neg(x) = %#o for x=%#o, want +0 or -0", sum.Value, x)
		}
	}
	if Compare(PosZero, NegZero) != 0 {
		t.Errorf("compare(+0, -0) != 0")
	}
}

func TestFieldRoundTrip(t *testing.T) {
	selectors := []PartialWord{W, H1, H2, Q1, Q2, Q3, Q4, S1, S2, S3, S4, S5, S6, T1, T2, T3}
	base := Word36(0o123456_765432)
	for _, j := range selectors {
		spec := fieldSpecs[j]
		v := Word36(spec.mask) // max value in field's width
		got := base.SetField(j, v).GetField(j)
		if got != v {
			t.Errorf("selector %v: round trip got %#o want %#o", j, got, v)
		}
	}
}

func TestFieldSetPreservesOthers(t *testing.T) {
	base := Word36(0o111111_222222)
	modified := base.SetField(H1, 0)
	if modified.GetField(H2) != base.GetField(H2) {
		t.Errorf("SetField(H1) disturbed H2: got %#o want %#o", modified.GetField(H2), base.GetField(H2))
	}
}

func TestAdd36Overflow(t *testing.T) {
	maxPos := Word36(0o377777_777777)
	res := Add36(maxPos, 1)
	if !res.Overflow {
		t.Errorf("expected overflow adding 1 to max positive value")
	}
}

func TestDivByZero(t *testing.T) {
	res := Div72(DoubleWord36{High: 0, Low: 10}, 0)
	if !res.DivByZero {
		t.Errorf("expected DivByZero flag")
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	w := StringToWord36ASCII("ABCD")
	if got := Word36ToStringASCII(w); got != "ABCD" {
		t.Errorf("ASCII round trip got %q want ABCD", got)
	}
}

func TestFieldataRoundTrip(t *testing.T) {
	w := StringToWord36Fieldata("ABC123")
	if got := Word36ToStringFieldata(w); got != "ABC123" {
		t.Errorf("Fieldata round trip got %q want ABC123", got)
	}
}

func TestShiftCircular(t *testing.T) {
	a := Word36(1)
	got := LeftShiftCircular(a, 1)
	if got != 2 {
		t.Errorf("left shift circular by 1 got %#o want 2", got)
	}
	top := Word36(1) << 35
	got = LeftShiftCircular(top, 1)
	if got != 1 {
		t.Errorf("left shift circular wraparound got %#o want 1", got)
	}
}
