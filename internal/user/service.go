package user

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create rejects a phone that is already taken, stores the user with its
// parent and sibling links, then reads it back with relations expanded.
// The phone check and the write are separate round trips; uniqueness under
// concurrent creates relies on the repository rejecting the write as well.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (UserView, error) {
	nu := normalize(input)

	if nu.Phone != nil {
		if _, err := s.repo.FindByPhone(ctx, *nu.Phone); err == nil {
			return UserView{}, ErrPhoneExists
		} else if !errors.Is(err, ErrNotFound) {
			return UserView{}, err
		}
	}

	created, err := s.repo.Create(ctx, nu)
	if err != nil {
		return UserView{}, err
	}

	rec, err := s.repo.FindByID(ctx, created.ID)
	if err != nil {
		return UserView{}, err
	}
	return ToView(rec), nil
}

func (s *Service) List(ctx context.Context) ([]UserView, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return ToViews(records), nil
}

func (s *Service) GetByID(ctx context.Context, id int) (UserView, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return ToView(rec), nil
}

// normalize maps the request body onto the write model. An embedded mother
// object is only honoured for its id and never overrides motherId. An empty
// phone is treated as absent; any other phone is kept exactly as sent.
// Repeated sibling ids collapse.
func normalize(input CreateUserInput) NewUser {
	nu := NewUser{
		Name:     input.Name,
		Age:      input.Age,
		Gender:   input.Gender,
		FatherID: input.FatherID,
		MotherID: input.MotherID,
	}

	if input.Phone != nil && *input.Phone != "" {
		p := *input.Phone
		nu.Phone = &p
	}

	if nu.MotherID == nil && input.Mother != nil && input.Mother.ID != nil {
		id := *input.Mother.ID
		nu.MotherID = &id
	}

	nu.SiblingIDs = make([]int, 0, len(input.SiblingsIDs))
	seen := make(map[int]struct{}, len(input.SiblingsIDs))
	for _, id := range input.SiblingsIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		nu.SiblingIDs = append(nu.SiblingIDs, id)
	}

	return nu
}
