package cluster

import "testing"

func TestChooseK_StepwiseHeuristic(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{1, 3},
		{10, 3},
		{11, 5},
		{40, 5},
		{41, 7},
		{120, 7},
		{121, 8},
		{200, 10},
		{500, 12},
	}
	for _, c := range cases {
		// Act
		got := ChooseK(c.n)

		// Assert
		if got != c.want {
			t.Errorf("ChooseK(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestRun_SeparatesDistinctGroups(t *testing.T) {
	// Arrange
	points := [][]float64{
		{0, 0}, {0, 1}, {1, 0}, // cluster near origin
		{10, 10}, {10, 11}, {11, 10}, // cluster far away
	}

	// Act
	result, err := Run(points, 2, 42)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Labels[0] != result.Labels[1] || result.Labels[1] != result.Labels[2] {
		t.Errorf("expected first three points in the same cluster, got labels %v", result.Labels[:3])
	}
	if result.Labels[3] != result.Labels[4] || result.Labels[4] != result.Labels[5] {
		t.Errorf("expected last three points in the same cluster, got labels %v", result.Labels[3:])
	}
	if result.Labels[0] == result.Labels[3] {
		t.Error("expected the two groups to land in different clusters")
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	// Arrange
	points := [][]float64{
		{0, 0}, {0, 1}, {5, 5}, {5, 6}, {9, 9}, {9, 8},
	}

	// Act
	r1, err1 := Run(points, 3, 42)
	r2, err2 := Run(points, 3, 42)

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	for i := range r1.Labels {
		if r1.Labels[i] != r2.Labels[i] {
			t.Errorf("expected deterministic labels at index %d: %d != %d", i, r1.Labels[i], r2.Labels[i])
		}
	}
}

func TestRun_RejectsMismatchedDimensions(t *testing.T) {
	// Arrange
	points := [][]float64{{0, 0}, {1}}

	// Act
	_, err := Run(points, 2, 42)

	// Assert
	if err == nil {
		t.Error("expected error for inconsistent point dimension")
	}
}

func TestRun_RejectsEmptyInput(t *testing.T) {
	// Act
	_, err := Run(nil, 2, 42)

	// Assert
	if err == nil {
		t.Error("expected error for empty point set")
	}
}
