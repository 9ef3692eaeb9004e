package config

import (
	"strings"
	"testing"
)

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	src := `
# full system configuration
SP SP0

MSP MSP0 65536   # 64K words
IOP IOP0
CM BYTE CM0 IOP0 0
DEVICE SCRATCHDISK D0 CM0 0
CONNECT CM0 0 D0
`
	directives, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"SP", "MSP", "IOP", "CM", "DEVICE", "CONNECT"}
	if len(directives) != len(want) {
		t.Fatalf("got %d directives, want %d", len(directives), len(want))
	}
	for i, v := range want {
		if directives[i].Verb != v {
			t.Fatalf("directive %d verb = %q, want %q", i, directives[i].Verb, v)
		}
	}
	if got := directives[1].Fields; len(got) != 2 || got[0] != "MSP0" || got[1] != "65536" {
		t.Fatalf("MSP fields = %v", got)
	}
}

func TestParseVerbIsCaseInsensitive(t *testing.T) {
	directives, err := Parse(strings.NewReader("sp SP0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if directives[0].Verb != "SP" {
		t.Fatalf("verb = %q, want SP", directives[0].Verb)
	}
}

func TestParseRecordsLineNumbers(t *testing.T) {
	src := "SP SP0\n\nIOP IOP0\n"
	directives, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if directives[0].Line != 1 || directives[1].Line != 3 {
		t.Fatalf("line numbers = %d, %d", directives[0].Line, directives[1].Line)
	}
}

func TestParseEmptyInputYieldsNoDirectives(t *testing.T) {
	directives, err := Parse(strings.NewReader("# only comments\n\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(directives) != 0 {
		t.Fatalf("expected 0 directives, got %d", len(directives))
	}
}
