package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/wally"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommentsCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "wally.db")
	common := []string{"--db-type", "sqlite", "--db-dsn", dsn, "--log-level", "error"}
	run := func(args ...string) (string, error) {
		return execute(t, append(args, common...)...)
	}

	_, err := run("migrate")
	require.NoError(t, err)

	out, err := run("comments", "add", "--name", " alice ", "--comment", "hello wall", "-o", "json")
	require.NoError(t, err)

	var added wally.Comment
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "alice", added.Name)
	assert.Equal(t, "hello wall", added.Text)

	out, err = run("comments", "list", "--all", "--cursor", "", "-o", "json")
	require.NoError(t, err)

	var listed wally.ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Items, 1)
	assert.Equal(t, added.ID, listed.Items[0].ID)

	out, err = run("comments", "remove", "-y", added.ID.String(), "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, added.ID.String())

	_, err = run("comments", "remove", "-y", added.ID.String(), "-o", "json")
	assert.Error(t, err)

	_, err = run("comments", "remove", "-y", "not-a-uuid", "-o", "json")
	assert.Error(t, err)

	_, err = run("comments", "add", "--name", "bob", "--comment", "hi", "-o", "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		" WARN ":   slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"info":     slog.LevelInfo,
		"nonsense": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
