package inventory

import (
	"strings"
	"testing"

	cfg "github.com/kduncan99/hcmp2200/internal/config"
)

func TestImportConfigurationBuildsFullTopology(t *testing.T) {
	inv := newTestInventory(t)
	src := `
SP SP0
MSP MSP0 65536
IOP IOP0
IP IP0
CM BYTE CM0 IOP0 0
DEVICE SCRATCHDISK D0 CM0 0
`
	directives, err := cfg.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := inv.ImportConfiguration(directives); err != nil {
		t.Fatalf("ImportConfiguration: %v", err)
	}
	if len(inv.byName) != 6 {
		t.Fatalf("expected 6 nodes, got %d", len(inv.byName))
	}
	cmNode := inv.byName["CM0"]
	if len(cmNode.descendants) != 1 {
		t.Fatalf("expected CM0 to have 1 descendant, got %d", len(cmNode.descendants))
	}
}

func TestImportConfigurationReportsLineOnFailure(t *testing.T) {
	inv := newTestInventory(t)
	src := "SP SP0\nSP SP1\n"
	directives, err := cfg.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = inv.ImportConfiguration(directives)
	if err == nil {
		t.Fatal("expected error from duplicate SP directive")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error = %v, want it to mention line 2", err)
	}
}

func TestImportConfigurationUnknownVerb(t *testing.T) {
	inv := newTestInventory(t)
	directives, err := cfg.Parse(strings.NewReader("BOGUS foo\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := inv.ImportConfiguration(directives); err == nil {
		t.Fatal("expected error for unrecognized verb")
	}
}
