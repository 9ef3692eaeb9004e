package word

// PartialWord identifies a partial-word selector, used by the j-field of
// an instruction to pick a sub-field of a 36-bit word.
type PartialWord int

const (
	W PartialWord = iota
	H1
	H2
	Q1
	Q2
	Q3
	Q4
	S1
	S2
	S3
	S4
	S5
	S6
	T1
	T2
	T3
	XH1
	XH2
)

type fieldSpec struct {
	shift uint
	width uint
	mask  uint64
}

var fieldSpecs = map[PartialWord]fieldSpec{
	W:   {0, 36, 0o777777_777777},
	H1:  {18, 18, 0o777777},
	H2:  {0, 18, 0o777777},
	Q1:  {27, 9, 0o777},
	Q2:  {18, 9, 0o777},
	Q3:  {9, 9, 0o777},
	Q4:  {0, 9, 0o777},
	S1:  {30, 6, 0o77},
	S2:  {24, 6, 0o77},
	S3:  {18, 6, 0o77},
	S4:  {12, 6, 0o77},
	S5:  {6, 6, 0o77},
	S6:  {0, 6, 0o77},
	T1:  {24, 12, 0o7777},
	T2:  {12, 12, 0o7777},
	T3:  {0, 12, 0o7777},
	XH1: {18, 18, 0o777777},
	XH2: {0, 18, 0o777777},
}

// GetField extracts the partial-word selector j from w. XH1/XH2 are
// sign-extended 18->36; all others are zero-extended.
func (w Word36) GetField(j PartialWord) Word36 {
	spec, ok := fieldSpecs[j]
	if !ok {
		return 0
	}
	v := (uint64(w) >> spec.shift) & spec.mask
	if j == XH1 || j == XH2 {
		return signExtend18(Word36(v))
	}
	return Word36(v)
}

// SetField returns w with the partial-word selector j replaced by the low
// bits of v (in the field's own width), leaving unrelated fields untouched.
func (w Word36) SetField(j PartialWord, v Word36) Word36 {
	spec, ok := fieldSpecs[j]
	if !ok {
		return w
	}
	cleared := uint64(w) &^ (spec.mask << spec.shift)
	inserted := (uint64(v) & spec.mask) << spec.shift
	return Word36(cleared|inserted) & Mask
}

func signExtend18(v Word36) Word36 {
	if v&0o400000 != 0 {
		return v | 0o777777_000000
	}
	return v & 0o000000_777777
}
