package compute

import "testing"

// TestWorkgroups1D verifies the workgroup-count rounding.
func TestWorkgroups1D(t *testing.T) {
	cases := []struct {
		threads, size int
		want          uint32
	}{
		{1024, 256, 4},
		{1, 256, 1},
		{256, 256, 1},
		{257, 256, 2},
		{1 << 20, 256, 4096},
		{100, 64, 2},
	}
	for _, c := range cases {
		if got := Workgroups1D(c.threads, c.size); got != c.want {
			t.Errorf("Workgroups1D(%d, %d) = %d, want %d", c.threads, c.size, got, c.want)
		}
	}
}
