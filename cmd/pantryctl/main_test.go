package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, tty bool, answers ...string) {
	t.Helper()
	origRead, origTTY := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTTY })

	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestResolvePasswordPrecedence(t *testing.T) {
	stubTerminal(t, false)

	pw, err := resolvePassword("from-flag", "from-env", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", pw)

	pw, err = resolvePassword("", "from-env", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "from-env", pw)

	_, err = resolvePassword("", "", &bytes.Buffer{})
	assert.Error(t, err, "no terminal and no password")
}

func TestResolvePasswordPrompt(t *testing.T) {
	t.Run("matching", func(t *testing.T) {
		stubTerminal(t, true, "secret123", "secret123")
		var out bytes.Buffer
		pw, err := resolvePassword("", "", &out)
		require.NoError(t, err)
		assert.Equal(t, "secret123", pw)
		assert.Contains(t, out.String(), "Password (again): ")
	})

	t.Run("mismatch", func(t *testing.T) {
		stubTerminal(t, true, "secret123", "secret124")
		_, err := resolvePassword("", "", &bytes.Buffer{})
		assert.EqualError(t, err, "passwords do not match")
	})

	t.Run("blank", func(t *testing.T) {
		stubTerminal(t, true, "", "")
		_, err := resolvePassword("", "", &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("3")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	for _, raw := range []string{"0", "-1", "abc"} {
		_, err := parseVersion(raw)
		assert.Error(t, err, raw)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"wait-for-db"},
		{"migrate", "up"},
		{"migrate", "status"},
		{"migrate", "down"},
		{"createsuperuser"},
		{"seed"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	cmd, _, err := root.Find([]string{"wait-for-db"})
	require.NoError(t, err)
	assert.Equal(t, "1s", cmd.Flags().Lookup("interval").DefValue)
	assert.Equal(t, "0s", cmd.Flags().Lookup("timeout").DefValue)
}

func TestMigrateDownRequiresVersion(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "down"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
