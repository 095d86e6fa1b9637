package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RegistraSubcomandos(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "seed-roles", "create-admin"}, names)
}

func TestCreateAdmin_SinEmailNiPassword_FallaAntesDeConectar(t *testing.T) {
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"create-admin", "--name", "Ana"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email y --password son obligatorios")
}

func TestCreateAdmin_FlagsPorDefecto(t *testing.T) {
	cmd := newCreateAdminCmd()
	name, err := cmd.Flags().GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "Administrador", name)

	email, err := cmd.Flags().GetString("email")
	require.NoError(t, err)
	assert.Empty(t, email)
}
