package inventory

import (
	"testing"

	"github.com/kduncan99/hcmp2200/device"
	"github.com/kduncan99/hcmp2200/upi"
)

func newTestInventory(t *testing.T) *Inventory {
	t.Helper()
	return New(upi.NewFabric(), nil)
}

func TestCreateSystemProcessorSingleton(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.CreateSystemProcessor("SP0"); err != nil {
		t.Fatalf("first CreateSystemProcessor: %v", err)
	}
	if _, err := inv.CreateSystemProcessor("SP1"); err != ErrAlreadySystemProcessor {
		t.Fatalf("second CreateSystemProcessor = %v, want ErrAlreadySystemProcessor", err)
	}
}

func TestNodeNameConflictCaseInsensitive(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.CreateMainStorageProcessor("msp0", 1024); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := inv.CreateMainStorageProcessor("MSP0", 1024); err != ErrNodeNameConflict {
		t.Fatalf("conflicting name = %v, want ErrNodeNameConflict", err)
	}
}

// Testable property 4: UPI range allocation reuses freed indices and
// preserves ordering of remaining processors.
func TestUPIRangeAllocationReusesFreedIndex(t *testing.T) {
	inv := newTestInventory(t)
	names := []string{"IP0", "IP1", "IP2"}
	for _, n := range names {
		if _, err := inv.CreateInstructionProcessor(n); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}
	ip1 := inv.byName["IP1"]
	freedUPI := ip1.UPI
	if err := inv.DeleteNode("IP1"); err != nil {
		t.Fatalf("delete IP1: %v", err)
	}
	if _, err := inv.CreateInstructionProcessor("IP3"); err != nil {
		t.Fatalf("create IP3: %v", err)
	}
	if inv.byName["IP3"].UPI != freedUPI {
		t.Fatalf("IP3 upi = %d, want reused %d", inv.byName["IP3"].UPI, freedUPI)
	}
	if inv.byName["IP0"].UPI >= inv.byName["IP3"].UPI {
		t.Fatalf("ordering violated: IP0.upi=%d IP3.upi=%d", inv.byName["IP0"].UPI, inv.byName["IP3"].UPI)
	}
}

func TestMaxNodesPerClass(t *testing.T) {
	inv := newTestInventory(t)
	for i := 0; i < 2; i++ {
		if _, err := inv.CreateInputOutputProcessor(iopName(i)); err != nil {
			t.Fatalf("create iop %d: %v", i, err)
		}
	}
	if _, err := inv.CreateInputOutputProcessor("IOP_OVERFLOW"); err != ErrMaxNodes {
		t.Fatalf("expected ErrMaxNodes, got %v", err)
	}
}

func iopName(i int) string {
	return []string{"IOP0", "IOP1"}[i]
}

// Testable property 3: addressing topology round trip.
func TestConnectDisconnectTopologyRoundTrip(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.CreateInputOutputProcessor("IOP0"); err != nil {
		t.Fatalf("create iop: %v", err)
	}
	cm, err := inv.CreateChannelModule(ChannelModuleByte, "CM0", "IOP0", 0)
	if err != nil {
		t.Fatalf("create cm: %v", err)
	}
	if cm == nil {
		t.Fatal("nil channel module")
	}

	dev := device.NewScratchDiskDevice("D0")
	if err := inv.RegisterDevice("D0", "CM0", 0, dev); err != nil {
		t.Fatalf("register device: %v", err)
	}

	cmNode := inv.byName["CM0"]
	if len(cmNode.descendants) != 1 {
		t.Fatalf("expected 1 descendant device, got %d", len(cmNode.descendants))
	}

	if err := inv.Disconnect("CM0", "D0"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if len(cmNode.descendants) != 0 {
		t.Fatalf("expected 0 descendants after disconnect, got %d", len(cmNode.descendants))
	}

	if err := inv.Connect("CM0", 0, "D0"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if len(cmNode.descendants) != 1 {
		t.Fatalf("expected 1 descendant after reconnect, got %d", len(cmNode.descendants))
	}
	if err := inv.Connect("CM0", 0, "D0"); err != ErrDuplicateEdge {
		t.Fatalf("second connect = %v, want ErrDuplicateEdge", err)
	}
}

func TestChannelModuleSingleAncestor(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.CreateInputOutputProcessor("IOP0"); err != nil {
		t.Fatalf("create iop0: %v", err)
	}
	if _, err := inv.CreateInputOutputProcessor("IOP1"); err != nil {
		t.Fatalf("create iop1: %v", err)
	}
	if _, err := inv.CreateChannelModule(ChannelModuleByte, "CM0", "IOP0", 0); err != nil {
		t.Fatalf("create cm: %v", err)
	}
	if err := inv.Connect("IOP1", 1, "CM0"); err != ErrChannelModuleHasAncestor {
		t.Fatalf("second ancestor connect = %v, want ErrChannelModuleHasAncestor", err)
	}
}

func TestIllegalEdgeRejected(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.CreateInputOutputProcessor("IOP0"); err != nil {
		t.Fatalf("create iop: %v", err)
	}
	if _, err := inv.CreateMainStorageProcessor("MSP0", 1024); err != nil {
		t.Fatalf("create msp: %v", err)
	}
	if err := inv.Connect("IOP0", 0, "MSP0"); err != ErrCannotConnect {
		t.Fatalf("IOP->MSP connect = %v, want ErrCannotConnect", err)
	}
}

func TestClearConfigurationDeletesInDependencyOrder(t *testing.T) {
	inv := newTestInventory(t)
	if _, err := inv.CreateInputOutputProcessor("IOP0"); err != nil {
		t.Fatalf("create iop: %v", err)
	}
	if _, err := inv.CreateChannelModule(ChannelModuleByte, "CM0", "IOP0", 0); err != nil {
		t.Fatalf("create cm: %v", err)
	}
	dev := device.NewScratchDiskDevice("D0")
	if err := inv.RegisterDevice("D0", "CM0", 0, dev); err != nil {
		t.Fatalf("register device: %v", err)
	}

	if err := inv.ClearConfiguration(); err != nil {
		t.Fatalf("clearConfiguration: %v", err)
	}
	if len(inv.byName) != 0 {
		t.Fatalf("expected empty inventory, got %d nodes", len(inv.byName))
	}
}
