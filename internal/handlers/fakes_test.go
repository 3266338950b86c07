package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/models"
	"github.com/callstream/backend/internal/repository"
)

// fakeVideoStore backs handler tests with an in-memory catalog.
type fakeVideoStore struct {
	videos  map[uuid.UUID]*models.Video
	content map[uuid.UUID][]byte
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{
		videos:  make(map[uuid.UUID]*models.Video),
		content: make(map[uuid.UUID][]byte),
	}
}

func (f *fakeVideoStore) Create(v *models.Video, content []byte) error {
	if v.Active {
		for _, existing := range f.videos {
			if existing.PlanMinutes == v.PlanMinutes {
				existing.Active = false
			}
		}
	}
	cp := *v
	f.videos[v.ID] = &cp
	f.content[v.ID] = content
	return nil
}

func (f *fakeVideoStore) GetByID(id uuid.UUID) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideoStore) GetContent(id uuid.UUID) ([]byte, string, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	return f.content[id], v.ContentType, nil
}

func (f *fakeVideoStore) List() ([]models.Video, error) {
	out := make([]models.Video, 0, len(f.videos))
	for _, v := range f.videos {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeVideoStore) GetActiveByDuration(minutes int) (*models.Video, error) {
	for _, v := range f.videos {
		if v.PlanMinutes == minutes && v.Active {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVideoStore) IncrementViews(id uuid.UUID) error {
	if v, ok := f.videos[id]; ok {
		v.Views++
	}
	return nil
}

func (f *fakeVideoStore) ToggleActive(id uuid.UUID) (bool, error) {
	v, ok := f.videos[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	v.Active = !v.Active
	return v.Active, nil
}

func (f *fakeVideoStore) UpdatePrice(id uuid.UUID, price float64) error {
	v, ok := f.videos[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Price = price
	return nil
}

func (f *fakeVideoStore) Delete(id uuid.UUID) (bool, error) {
	if _, ok := f.videos[id]; !ok {
		return false, nil
	}
	delete(f.videos, id)
	delete(f.content, id)
	return true, nil
}

// fakeCallStore is an in-memory call log.
type fakeCallStore struct {
	calls map[uuid.UUID]*models.CallSession
}

func newFakeCallStore() *fakeCallStore {
	return &fakeCallStore{calls: make(map[uuid.UUID]*models.CallSession)}
}

func (f *fakeCallStore) Create(c *models.CallSession) error {
	cp := *c
	f.calls[c.ID] = &cp
	return nil
}

func (f *fakeCallStore) GetByID(id uuid.UUID) (*models.CallSession, error) {
	c, ok := f.calls[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCallStore) Complete(id uuid.UUID, endedAt time.Time) (bool, error) {
	c, ok := f.calls[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if c.Completed {
		return false, nil
	}
	c.Completed = true
	c.EndTime = &endedAt
	return true, nil
}

func (f *fakeCallStore) ListCompleted() ([]models.CallSession, error) {
	out := make([]models.CallSession, 0)
	for _, c := range f.calls {
		if c.Completed {
			out = append(out, *c)
		}
	}
	return out, nil
}
