package uci_test

import (
	"testing"

	"github.com/herohde/arena/pkg/uci"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		line     string
		expected uci.Option
	}{
		{
			"option name OwnBook type check default true",
			uci.CheckOption{Name: "OwnBook", Default: true},
		},
		{
			"option name Ponder type check default false",
			uci.CheckOption{Name: "Ponder", Default: false},
		},
		{
			"option name Hash type spin default 16 min 1 max 1024",
			uci.SpinOption{Name: "Hash", Default: 16, Min: lang.Some(1), Max: lang.Some(1024)},
		},
		{
			"option name Skill Level type spin default 20",
			uci.SpinOption{Name: "Skill Level", Default: 20},
		},
		{
			"option name MultiPV type spin default 1 min 1 max 500",
			uci.SpinOption{Name: "MultiPV", Default: 1, Min: lang.Some(1), Max: lang.Some(500)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			actual, ok := uci.ParseOption(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestParseOptionSkipped(t *testing.T) {
	tests := []string{
		"",
		"info depth 1",
		"option",
		"option name NoDefault type check",
		"option type check default true",
		"option name Style type combo default Normal var Solid var Normal var Risky",
		"option name NalimovPath type string default c:\\",
		"option name Clear Hash type button",
		"option name Bad type spin default notanint",
		"option name Bad type check default maybe",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			_, ok := uci.ParseOption(line)
			assert.False(t, ok)
		})
	}
}
