package detector

import (
	"testing"

	"github.com/openfluke/webgpu/wgpu"
)

func limitsWith(maxX, maxTot, maxDim uint32) wgpu.SupportedLimits {
	var l wgpu.SupportedLimits
	l.Limits.MaxComputeWorkgroupSizeX = maxX
	l.Limits.MaxComputeInvocationsPerWorkgroup = maxTot
	l.Limits.MaxComputeWorkgroupsPerDimension = maxDim
	return l
}

// TestChooseWorkgroup verifies the workgroup fallback ladder respects
// both the per-dimension and total invocation limits.
func TestChooseWorkgroup(t *testing.T) {
	cases := []struct {
		maxX, maxTot uint32
		wantX        uint32
	}{
		{1024, 1024, 256}, // plenty of headroom, take the preferred size
		{256, 256, 256},
		{128, 256, 128}, // dimension-limited
		{256, 64, 64},   // invocation-limited
		{16, 16, 16},
		{3, 3, 1}, // oddball device, fall through to 1
	}
	for _, c := range cases {
		x, y, z := chooseWorkgroup(limitsWith(c.maxX, c.maxTot, 65535))
		if x != c.wantX || y != 1 || z != 1 {
			t.Errorf("chooseWorkgroup(maxX=%d, maxTot=%d) = (%d,%d,%d), want (%d,1,1)",
				c.maxX, c.maxTot, x, y, z, c.wantX)
		}
	}
}

// TestChooseTile verifies tile hints stay within dispatch limits.
func TestChooseTile(t *testing.T) {
	l := limitsWith(256, 256, 65535)
	tx, ty := chooseTile(l, 256, 1)
	if tx != 2048 {
		t.Errorf("tile x should be 8 workgroups worth, got %d", tx)
	}
	if ty != 1 {
		t.Errorf("1D workgroup should keep tile y at 1, got %d", ty)
	}

	// Cramped per-dimension limit caps the tile.
	cramped := limitsWith(256, 256, 100)
	tx, _ = chooseTile(cramped, 256, 1)
	if tx != 100 {
		t.Errorf("tile x should be capped at the dispatch limit 100, got %d", tx)
	}
}

// TestBudgetBytesOverride verifies the env override for the soft budget.
func TestBudgetBytesOverride(t *testing.T) {
	t.Setenv("GPUTOUR_BUDGET_MB", "64")
	if got := budgetBytes(); got != 64*1024*1024 {
		t.Errorf("budget override: got %d", got)
	}

	t.Setenv("GPUTOUR_BUDGET_MB", "not-a-number")
	if got := budgetBytes(); got != 128*1024*1024 {
		t.Errorf("bad override should fall back to default, got %d", got)
	}
}
