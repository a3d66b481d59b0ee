package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeClassConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SizeClassConfig
		wantErr bool
	}{
		{"standard", ConfigStandard, false},
		{"small", ConfigSmall, false},
		{"page", ConfigPage, false},
		{"single class", SizeClassConfig{Name: "one", MinBlock: 64, MaxBlock: 64}, false},
		{"min not power of two", SizeClassConfig{MinBlock: 24, MaxBlock: 512}, true},
		{"max not power of two", SizeClassConfig{MinBlock: 16, MaxBlock: 1000}, true},
		{"min below node size", SizeClassConfig{MinBlock: 8, MaxBlock: 512}, true},
		{"inverted", SizeClassConfig{MinBlock: 512, MaxBlock: 16}, true},
		{"zero", SizeClassConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSizeClassTable_Classes(t *testing.T) {
	table, err := newSizeClassTable(ConfigStandard)
	require.NoError(t, err)

	require.Equal(t, []uintptr{16, 32, 64, 128, 256, 512, 1024, 2048}, table.sizes)
	require.Equal(t, 8, table.NumClasses())
	require.Equal(t, "Standard", table.String())
}

func TestSizeClassTable_GetSizeClass(t *testing.T) {
	table, err := newSizeClassTable(ConfigStandard)
	require.NoError(t, err)

	tests := []struct {
		size uintptr
		want int
	}{
		{0, 0},
		{1, 0},
		{16, 0},
		{17, 1},
		{20, 1},
		{32, 1},
		{33, 2},
		{1000, 6},
		{2048, 7},
		{2049, 8},
		{1 << 20, 8},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, table.getSizeClass(tt.size), "size %d", tt.size)
	}
}
