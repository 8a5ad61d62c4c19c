package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"hostel-server/models"
	"hostel-server/repository"
)

// ClientService manages the guest registry
type ClientService struct {
	clients repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clients repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	return s.clients.List(ctx)
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	return s.clients.FindByID(ctx, id)
}

// Create registers a client. A taken e-mail or RUT comes back as *repository.DuplicateError.
func (s *ClientService) Create(ctx context.Context, req models.ClientRequest) (*models.Client, error) {
	req.Normalize()
	if err := s.checkEmail(ctx, req.Email, 0); err != nil {
		return nil, err
	}

	client := &models.Client{}
	req.Apply(client)
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	log.Info().Uint("client_id", client.ID).Str("rut", client.RUT).Msg("👤 Client registered")
	return client, nil
}

// Update edits a client's fields.
func (s *ClientService) Update(ctx context.Context, id uint, req models.ClientRequest) (*models.Client, error) {
	req.Normalize()
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, req.Email, client.ID); err != nil {
		return nil, err
	}

	req.Apply(client)
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	log.Info().Uint("client_id", client.ID).Msg("👤 Client updated")
	return client, nil
}

// checkEmail rejects an e-mail already used by a client other than selfID.
func (s *ClientService) checkEmail(ctx context.Context, email string, selfID uint) error {
	existing, err := s.clients.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return &repository.DuplicateError{Field: "email"}
	}
	return nil
}
