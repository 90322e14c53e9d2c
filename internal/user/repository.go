package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrPhoneExists       = errors.New("phone number already exists")
	ErrReferenceNotFound = errors.New("referenced user not found")
)

type Repository interface {
	FindByPhone(ctx context.Context, phone string) (User, error)
	// Create stores a new user and its outgoing sibling links. Every id in
	// FatherID, MotherID and SiblingIDs must already exist, otherwise nothing
	// is written.
	Create(ctx context.Context, input NewUser) (User, error)
	FindByID(ctx context.Context, id int) (Record, error)
	List(ctx context.Context) ([]Record, error)
}

// NewUser is the normalized write model handed to a Repository.
type NewUser struct {
	Name       string
	Phone      *string
	Age        *int
	Gender     *string
	FatherID   *int
	MotherID   *int
	SiblingIDs []int
}

// InMemoryRepository keeps users in insertion order and sibling links as
// directed id pairs. It is used by tests and local runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	index  map[int]int
	links  []siblingLink
	nextID int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	r := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		index:  make(map[int]int, len(seed)),
		nextID: 1,
	}

	maxID := 0
	for _, u := range seed {
		r.index[u.ID] = len(r.users)
		r.users = append(r.users, u)
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

// linkSiblings stores the single direction userID -> siblingID.
func (r *InMemoryRepository) linkSiblings(userID, siblingID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range []int{userID, siblingID} {
		if _, ok := r.index[id]; !ok {
			return fmt.Errorf("%w: %d", ErrReferenceNotFound, id)
		}
	}
	r.addLink(userID, siblingID)
	return nil
}

func (r *InMemoryRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.findByPhone(phone); ok {
		return u, nil
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, input NewUser) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if input.Phone != nil {
		if _, ok := r.findByPhone(*input.Phone); ok {
			return User{}, ErrPhoneExists
		}
	}

	refs := []struct {
		field string
		id    *int
	}{
		{"fatherId", input.FatherID},
		{"motherId", input.MotherID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if _, ok := r.index[*ref.id]; !ok {
			return User{}, fmt.Errorf("%w: %s %d", ErrReferenceNotFound, ref.field, *ref.id)
		}
	}
	for _, id := range input.SiblingIDs {
		if _, ok := r.index[id]; !ok {
			return User{}, fmt.Errorf("%w: siblingsIds %d", ErrReferenceNotFound, id)
		}
	}

	u := User{
		ID:       r.nextID,
		Name:     input.Name,
		Phone:    input.Phone,
		Age:      input.Age,
		Gender:   input.Gender,
		FatherID: input.FatherID,
		MotherID: input.MotherID,
	}
	r.nextID++
	r.index[u.ID] = len(r.users)
	r.users = append(r.users, u)

	for _, id := range input.SiblingIDs {
		r.addLink(u.ID, id)
	}
	return u, nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id int) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return assemble(r.users, r.links)[i], nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return assemble(r.users, r.links), nil
}

func (r *InMemoryRepository) findByPhone(phone string) (User, bool) {
	for _, u := range r.users {
		if u.Phone != nil && *u.Phone == phone {
			return u, true
		}
	}
	return User{}, false
}

func (r *InMemoryRepository) addLink(userID, siblingID int) {
	for _, l := range r.links {
		if l.UserID == userID && l.SiblingID == siblingID {
			return
		}
	}
	r.links = append(r.links, siblingLink{UserID: userID, SiblingID: siblingID})
}
