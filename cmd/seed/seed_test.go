package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alms/internal/model"
	"alms/internal/repository"
	"alms/internal/service"
	"alms/internal/testutil"
	"alms/pkg/passkey"
)

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	employee, err := parseFlags([]string{"-name", "Asha", "-passkey", "1234", "-email", "asha@corp.example", "-id", "E001", "-phone", "555-0101"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Asha", employee.Name)
	assert.Equal(t, "E001", employee.RegisteredID)
	assert.Empty(t, out.String())
}

func TestParseFlags_MissingRequired(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags([]string{"-name", "Asha"}, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "name, passkey and id are required")
}

func TestCreate_ExitCodes(t *testing.T) {
	db := testutil.NewDB(t)
	auth := service.NewAuthService(repository.NewEmployeeRepository(db))
	ctx := context.Background()

	employee := &model.Employee{Name: "Asha", Passkey: "1234", Email: "asha@corp.example", RegisteredID: "E001", ContactNumber: "1"}
	require.Equal(t, 0, create(ctx, auth, employee))
	assert.True(t, passkey.IsHashed(employee.Passkey))

	// registered_id 唯一
	dup := &model.Employee{Name: "Other", Passkey: "9", Email: "o@corp.example", RegisteredID: "E001", ContactNumber: "2"}
	assert.Equal(t, 1, create(ctx, auth, dup))
}
