package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service owns the client directory.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureGodown creates the warehouse pseudo-client if it is missing.
// Called once at startup.
func (s *Service) EnsureGodown(ctx context.Context) error {
	_, err := s.repo.GetByName(ctx, GodownName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.repo.Create(ctx, Client{Name: GodownName, District: "Internal", State: "Internal"})
	if errors.Is(err, ErrDuplicateName) {
		// Another instance won the race.
		return nil
	}
	return err
}

func (s *Service) List(ctx context.Context, search string) ([]Client, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	return s.repo.Get(ctx, id)
}

// GetByName looks the client up case-insensitively.
func (s *Service) GetByName(ctx context.Context, name string) (Client, error) {
	if strings.TrimSpace(name) == "" {
		return Client{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	if err := validate(client); err != nil {
		return Client{}, err
	}
	if isGodown(client.Name) {
		return Client{}, ErrReserved
	}
	return s.repo.Create(ctx, client)
}

func (s *Service) Update(ctx context.Context, id int64, client Client) error {
	if err := validate(client); err != nil {
		return err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if isGodown(current.Name) || isGodown(client.Name) {
		return ErrReserved
	}
	return s.repo.Update(ctx, id, client)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if isGodown(current.Name) {
		return ErrReserved
	}
	return s.repo.Delete(ctx, id)
}

func validate(client Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return nil
}

func isGodown(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), GodownName)
}
