package hopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	plan := []int{1, 6, 11, 36, 40}

	tests := []struct {
		name string
		n    int
		want [][]int
	}{
		{"none", 0, nil},
		{"single", 1, [][]int{{1, 6, 11, 36, 40}}},
		{"one band each", 2, [][]int{{1, 6, 11}, {36, 40}}},
		{"round robin", 3, [][]int{{1, 36}, {6, 40}, {11}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(plan, tt.n))
		})
	}
}

func TestPartition_SingleBandTwoAdapters(t *testing.T) {
	got := Partition([]int{1, 6, 11}, 2)
	assert.Equal(t, [][]int{{1, 11}, {6}}, got)
}
