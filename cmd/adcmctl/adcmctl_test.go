package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenValues(t *testing.T) {
	values := map[string]any{
		"workers": float64(8),
		"logging": map[string]any{
			"level":  "info",
			"output": map[string]any{"path": "/var/log/app.log"},
		},
		"advanced": nil,
	}

	var rows [][]string
	flattenValues(nil, values, &rows)

	assert.ElementsMatch(t, [][]string{
		{"workers", "8"},
		{"logging/level", `"info"`},
		{"logging/output/path", `"/var/log/app.log"`},
		{"advanced", "null"},
	}, rows)
}

func TestCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["config"])
	assert.True(t, names["mapping"])

	configNames := map[string]bool{}
	for _, cmd := range configCmd.Commands() {
		configNames[cmd.Name()] = true
	}
	for _, want := range []string{"show", "history", "set", "diff"} {
		assert.True(t, configNames[want], want)
	}
}
