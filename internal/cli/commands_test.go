package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stonecluster/internal/model"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
	}{
		{"", command{kind: cmdNone}},
		{"   ", command{kind: cmdNone}},
		{"place 10 -20", command{kind: cmdPlace, placement: model.Placement{X: 10, Y: -20}}},
		{"P 1.5 2.25 edge", command{kind: cmdPlace, placement: model.Placement{X: 1.5, Y: 2.25, OnEdge: true}}},
		{"state", command{kind: cmdState}},
		{"rematch", command{kind: cmdRematch}},
		{"help", command{kind: cmdHelp}},
		{"?", command{kind: cmdHelp}},
		{"quit", command{kind: cmdQuit}},
		{"EXIT", command{kind: cmdQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line    string
		wantErr string
	}{
		{"jump", "unknown command"},
		{"place", "usage"},
		{"place 1", "usage"},
		{"place 1 2 edge extra", "usage"},
		{"place x 2", "invalid x"},
		{"place 1 y", "invalid y"},
		{"place 1 2 flat", "expected edge"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := parseCommand(tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://stones.example.com/", "wss://stones.example.com/ws"},
		{"http://proxy.local/relay", "ws://proxy.local/relay/ws"},
		{"ws://127.0.0.1:9000", "ws://127.0.0.1:9000/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			got, err := NewClient(tt.server).WebsocketURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewClient("ftp://example.com").WebsocketURL()
	assert.Error(t, err)
}
