package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alms/internal/model"
	"alms/pkg/errors"
	"alms/pkg/passkey"
)

func TestAuthenticate_Success(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Asha", "E001", "1234")

	e, err := f.auth.Authenticate(context.Background(), "E001", "1234")
	require.NoError(t, err)
	assert.Equal(t, model.Identity{Name: "Asha", Email: "E001@corp.example", RegisteredID: "E001"}, e.Identity())
}

func TestAuthenticate_WrongPasskeyAndUnknownShareError(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Asha", "E001", "1234")
	ctx := context.Background()

	_, err := f.auth.Authenticate(ctx, "E001", "0000")
	assert.ErrorIs(t, err, errors.AuthFailed)

	_, err = f.auth.Authenticate(ctx, "E404", "1234")
	assert.ErrorIs(t, err, errors.AuthFailed)
}

func TestAuthenticate_EmptySelection(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Authenticate(context.Background(), "  ", "1234")
	assert.ErrorIs(t, err, errors.EmployeeRequired)
}

func TestAuthenticate_LegacyPlaintextRow(t *testing.T) {
	f := newFixture(t)
	// 绕过 CreateEmployee，模拟历史明文数据
	require.NoError(t, f.db.Create(&model.Employee{
		Name: "Ravi", Passkey: "abcd", Email: "r@corp.example", RegisteredID: "E002", ContactNumber: "1",
	}).Error)

	_, err := f.auth.Authenticate(context.Background(), "E002", "abcd")
	require.NoError(t, err)

	var stored model.Employee
	require.NoError(t, f.db.Where("registered_id = ?", "E002").First(&stored).Error)
	assert.Equal(t, "abcd", stored.Passkey)
}

func TestCreateEmployee_HashesPasskey(t *testing.T) {
	f := newFixture(t)
	e := f.seed(t, "Asha", "E001", "1234")

	assert.True(t, passkey.IsHashed(e.Passkey))
	assert.NotEqual(t, "1234", e.Passkey)

	err := f.auth.CreateEmployee(context.Background(), &model.Employee{
		Name: "Dup", Passkey: "x", Email: "d@corp.example", RegisteredID: "E001", ContactNumber: "2",
	})
	assert.Error(t, err)
}

func TestListEmployees(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Asha", "E001", "1")
	f.seed(t, "Ravi", "E002", "2")
	f.seed(t, "Asha", "E003", "3")
	ctx := context.Background()

	options, err := f.auth.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "E003", options[2].RegisteredID)

	names, err := f.auth.ListEmployeeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha", "Ravi", "Asha"}, names)
}
