package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-server/models"
	"hostel-server/repository"
)

func clientRequest(rut, email string) models.ClientRequest {
	return models.ClientRequest{
		RUT:       rut,
		FirstName: "Ana",
		LastName:  "Rojas",
		Email:     email,
		Phone:     "+56912345678",
	}
}

func TestClientService_CreateNormalizes(t *testing.T) {
	svc := NewClientService(repository.NewMemoryStore().Clients())
	c, err := svc.Create(context.Background(), clientRequest(" 12345678-k ", " Ana@Example.CL "))
	require.NoError(t, err)
	assert.Equal(t, "12345678-K", c.RUT)
	assert.Equal(t, "ana@example.cl", c.Email)
	assert.False(t, c.RegisteredAt.IsZero())
}

func TestClientService_DuplicatesAreTyped(t *testing.T) {
	ctx := context.Background()
	svc := NewClientService(repository.NewMemoryStore().Clients())
	_, err := svc.Create(ctx, clientRequest("12345678-9", "ana@example.cl"))
	require.NoError(t, err)

	var dup *repository.DuplicateError
	_, err = svc.Create(ctx, clientRequest("11111111-1", "ANA@example.cl"))
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)

	_, err = svc.Create(ctx, clientRequest("12345678-9", "other@example.cl"))
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "rut", dup.Field)
}

func TestClientService_UpdateKeepsOwnEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewClientService(repository.NewMemoryStore().Clients())
	ana, err := svc.Create(ctx, clientRequest("12345678-9", "ana@example.cl"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, clientRequest("11111111-1", "eva@example.cl"))
	require.NoError(t, err)

	req := clientRequest("12345678-9", "ana@example.cl")
	req.Phone = "+56987654321"
	updated, err := svc.Update(ctx, ana.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "+56987654321", updated.Phone)

	_, err = svc.Update(ctx, ana.ID, clientRequest("12345678-9", "eva@example.cl"))
	var dup *repository.DuplicateError
	assert.True(t, errors.As(err, &dup))

	_, err = svc.Update(ctx, 999, req)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
