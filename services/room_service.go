package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"hostel-server/models"
	"hostel-server/repository"
)

// RoomService manages the room registry
type RoomService struct {
	rooms     repository.RoomRepository
	publisher RoomPublisher
}

// NewRoomService creates a new room service. publisher may be nil.
func NewRoomService(rooms repository.RoomRepository, publisher RoomPublisher) *RoomService {
	return &RoomService{rooms: rooms, publisher: publisher}
}

func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	return s.rooms.List(ctx)
}

// ListAvailable returns the rooms offered by the reservation form.
func (s *RoomService) ListAvailable(ctx context.Context) ([]models.Room, error) {
	return s.rooms.ListByState(ctx, models.RoomAvailable)
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	return s.rooms.FindByID(ctx, id)
}

func (s *RoomService) Create(ctx context.Context, req models.RoomRequest) (*models.Room, error) {
	room := &models.Room{Number: req.Number, Price: req.Price, State: req.State}
	if room.State == "" {
		room.State = models.RoomAvailable
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	log.Info().Uint("room_id", room.ID).Str("number", room.Number).Msg("🏨 Room created")
	s.publish(*room)
	return room, nil
}

// Update edits a room. An empty state keeps the current one.
func (s *RoomService) Update(ctx context.Context, id uint, req models.RoomRequest) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Number = req.Number
	room.Price = req.Price
	if req.State != "" {
		room.State = req.State
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, err
	}
	log.Info().Uint("room_id", room.ID).Str("state", string(room.State)).Msg("🏨 Room updated")
	s.publish(*room)
	return room, nil
}

func (s *RoomService) publish(room models.Room) {
	if s.publisher != nil {
		s.publisher.PublishRoom(room)
	}
}
