// Package service holds the developer persistence gateway.
//
// Creates go to the relational store first and are then appended to the JSON
// mirror. Reads, updates and deletes only touch the store, so the mirror keeps
// the original creation payloads forever.
package service

import (
	"context"
	"fmt"

	"devregistry/db"

	log "github.com/sirupsen/logrus"
)

type Appender interface {
	Append(entry any) error
}

type Recorder interface {
	IncrementDevelopersCreated()
	IncrementMirrorAppendFailures()
}

type DeveloperService struct {
	store    db.Store
	mirror   Appender
	newID    db.IDFactory
	recorder Recorder
	logger   log.FieldLogger
}

type Option func(*DeveloperService)

func WithIDFactory(factory db.IDFactory) Option {
	return func(s *DeveloperService) { s.newID = factory }
}

func WithRecorder(recorder Recorder) Option {
	return func(s *DeveloperService) { s.recorder = recorder }
}

func WithLogger(logger log.FieldLogger) Option {
	return func(s *DeveloperService) { s.logger = logger }
}

func NewDeveloperService(store db.Store, mirror Appender, opts ...Option) *DeveloperService {
	s := &DeveloperService{
		store:  store,
		mirror: mirror,
		newID:  db.NewDeveloperID,
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns a fresh id, inserts the developer and appends it to the mirror.
// A failed insert leaves the mirror untouched. A failed append is logged and
// counted but not returned: the store row already exists.
func (s *DeveloperService) Create(ctx context.Context, developer db.Developer) (db.Developer, error) {
	developer.Id = s.newID()

	if err := s.store.SaveDeveloper(ctx, developer); err != nil {
		return db.Developer{}, fmt.Errorf("save developer: %w", err)
	}
	if s.recorder != nil {
		s.recorder.IncrementDevelopersCreated()
	}

	logger := s.logger.WithField("developer_id", developer.Id)
	logger.Info("created developer")

	if err := s.mirror.Append(developer); err != nil {
		logger.WithError(err).Warn("mirror append failed, store and mirror diverged")
		if s.recorder != nil {
			s.recorder.IncrementMirrorAppendFailures()
		}
	}

	return developer, nil
}

func (s *DeveloperService) FindAll(ctx context.Context) ([]db.Developer, error) {
	developers, err := s.store.FindDevelopers(ctx)
	if err != nil {
		return nil, err
	}
	if developers == nil {
		developers = []db.Developer{}
	}
	return developers, nil
}

// FindOne returns db.ErrNotFound for unknown ids.
func (s *DeveloperService) FindOne(ctx context.Context, id string) (db.Developer, error) {
	developer, err := s.store.GetDeveloperById(ctx, id)
	if err != nil {
		return db.Developer{}, err
	}
	return *developer, nil
}

// Update merges patch onto the stored developer. The mirror is not updated.
func (s *DeveloperService) Update(ctx context.Context, id string, patch db.DeveloperPatch) (db.Developer, error) {
	existing, err := s.store.GetDeveloperById(ctx, id)
	if err != nil {
		return db.Developer{}, err
	}

	updated := patch.Apply(*existing)
	if patch.IsEmpty() {
		return updated, nil
	}

	if err := s.store.UpdateDeveloper(ctx, updated); err != nil {
		return db.Developer{}, err
	}

	s.logger.WithField("developer_id", id).Info("updated developer")
	return updated, nil
}

// Remove deletes the developer from the store and returns the removed row.
// The mirror keeps its copy.
func (s *DeveloperService) Remove(ctx context.Context, id string) (db.Developer, error) {
	existing, err := s.store.GetDeveloperById(ctx, id)
	if err != nil {
		return db.Developer{}, err
	}

	if err := s.store.DeleteDeveloper(ctx, id); err != nil {
		return db.Developer{}, err
	}

	s.logger.WithField("developer_id", id).Info("removed developer")
	return *existing, nil
}

func (s *DeveloperService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
