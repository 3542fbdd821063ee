package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"catmap/models"
)

var (
	ErrInvalidCat = errors.New("invalid cat")
	ErrNoLocation = errors.New("observation location is required")
)

// FileRemover deletes the files of a photo, problems are returned as warnings
type FileRemover interface {
	DeletePhotoFiles(originalURL, thumbURL string) []error
}

// ObservationInput is what the user can set on an observation. ID == 0 creates a new one.
// A nil Location is taken from the first photo with GPS data, or kept when updating.
type ObservationInput struct {
	ID       uint64
	Date     time.Time
	Note     string
	Location *models.Location
	CatID    *uint64
	PhotoIDs []uint64
}

type Service struct {
	store      *Store
	aggregator *Aggregator
	files      FileRemover
	now        func() time.Time
}

func NewService(store *Store, aggregator *Aggregator, files FileRemover) *Service {
	return &Service{
		store:      store,
		aggregator: aggregator,
		files:      files,
		now:        time.Now,
	}
}

func (s *Service) Store() *Store {
	return s.store
}

// SaveObservation creates or updates an observation together with its photo set.
// The date follows the latest attached photo, if there is any, and is kept on update when
// not given. Photo IDs that do not exist or belong to another observation are ignored; a photo
// taken by a concurrent save gives ErrPhotoTaken. The old and the new cat get their location
// recomputed in the same transaction.
func (s *Service) SaveObservation(ctx context.Context, in ObservationInput) (*models.Observation, error) {
	observation := &models.Observation{}
	if in.ID != 0 {
		unlockObservation := s.aggregator.LockObservation(in.ID)
		defer unlockObservation()
		existing, err := s.store.FindObservation(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		observation = existing
	}
	previousCatID := catIDOf(observation.CatID)
	if in.CatID != nil && *in.CatID == 0 {
		in.CatID = nil
	}
	var cat *models.Cat
	if in.CatID != nil {
		found, err := s.store.FindCat(ctx, *in.CatID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", ErrInvalidCat, err)
			}
			return nil, err
		}
		cat = found
	}
	photos, err := s.store.FindPhotos(ctx, in.PhotoIDs)
	if err != nil {
		return nil, err
	}

	switch {
	case !in.Date.IsZero():
		observation.Date = in.Date.UTC()
	case in.ID == 0:
		observation.Date = s.now().UTC()
	}
	observation.Note = in.Note
	observation.CatID = in.CatID
	observation.Cat = nil
	observation.Photos = attachable(photos, observation.ID)
	observation.SyncDateWithPhotos()
	if err = observation.Validate(); err != nil {
		return nil, err
	}
	location, ok := observationLocation(in, observation)
	if !ok {
		return nil, ErrNoLocation
	}
	observation.GpsLat = location.Lat
	observation.GpsLong = location.Lng
	photoIDs := make([]uint64, len(observation.Photos))
	for i := range observation.Photos {
		photoIDs[i] = observation.Photos[i].ID
	}

	unlock, previousCatID, err := s.lockCats(ctx, in.ID, previousCatID, catIDOf(in.CatID))
	if err != nil {
		return nil, err
	}
	defer unlock()
	err = s.store.Transaction(ctx, func(tx *Store) error {
		if err := tx.SaveObservation(ctx, observation); err != nil {
			return err
		}
		if err := tx.AttachPhotos(ctx, observation.ID, photoIDs); err != nil {
			return err
		}
		for _, catID := range uniqueIDs(previousCatID, catIDOf(in.CatID)) {
			if err := s.aggregator.Recompute(ctx, tx, catID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	observation.Cat = cat
	for i := range observation.Photos {
		observation.Photos[i].ObservationID = &observation.ID
	}
	return observation, nil
}

// lockCats locks the previous and the new cat of an observation. The caller holds the
// observation lock, still the link is read again under the cat locks as deleting a cat
// clears it without the observation lock.
func (s *Service) lockCats(ctx context.Context, observationID, previousCatID, newCatID uint64) (unlock func(), catID uint64, err error) {
	for {
		unlock = s.aggregator.Lock(previousCatID, newCatID)
		if observationID == 0 {
			return unlock, previousCatID, nil
		}
		current, err := s.store.ObservationCatID(ctx, observationID)
		if err != nil {
			unlock()
			return nil, 0, err
		}
		if current == previousCatID {
			return unlock, current, nil
		}
		unlock()
		previousCatID = current
	}
}

func observationLocation(in ObservationInput, observation *models.Observation) (models.Location, bool) {
	if in.Location != nil {
		return *in.Location, true
	}
	for i := range observation.Photos {
		if location, ok := observation.Photos[i].GetLocation(); ok {
			return location, true
		}
	}
	if observation.ID != 0 {
		return observation.GetLocation(), true
	}
	return models.Location{}, false
}

// attachable keeps orphaned photos and those already attached to the observation
func attachable(photos []models.Photo, observationID uint64) []models.Photo {
	result := []models.Photo{}
	for _, p := range photos {
		if p.IsOrphaned() || (observationID != 0 && *p.ObservationID == observationID) {
			result = append(result, p)
		}
	}
	return result
}

// DeleteObservation removes the observation and its photos. Records go first, then the
// files; file problems never fail the call and come back as warnings.
func (s *Service) DeleteObservation(ctx context.Context, id uint64) (warnings []error, err error) {
	unlockObservation := s.aggregator.LockObservation(id)
	defer unlockObservation()
	catID, err := s.store.ObservationCatID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, _, err := s.lockCats(ctx, id, catID, 0)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var deleted *models.Observation
	err = s.store.Transaction(ctx, func(tx *Store) error {
		observation, err := tx.DeleteObservation(ctx, id)
		if err != nil {
			return err
		}
		deleted = observation
		return s.recomputeCat(ctx, tx, observation.CatID)
	})
	if err != nil {
		return nil, err
	}
	for i := range deleted.Photos {
		warnings = append(warnings, s.deleteFiles(&deleted.Photos[i])...)
	}
	return warnings, nil
}

func (s *Service) recomputeCat(ctx context.Context, tx *Store, catID *uint64) error {
	if catID == nil {
		return nil
	}
	return s.aggregator.Recompute(ctx, tx, *catID)
}

// DeletePhoto removes a single photo record and then its files
func (s *Service) DeletePhoto(ctx context.Context, id uint64) (warnings []error, err error) {
	photo, err := s.store.FindPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.store.DeletePhoto(ctx, id); err != nil {
		return nil, err
	}
	return s.deleteFiles(photo), nil
}

func (s *Service) deleteFiles(photo *models.Photo) []error {
	warnings := s.files.DeletePhotoFiles(photo.OriginalURL, photo.ThumbURL)
	for _, w := range warnings {
		log.Printf("Photo %d cleanup: %v", photo.ID, w)
	}
	return warnings
}

// CreateCat uses the given point as the initial location, until the cat gets observations
func (s *Service) CreateCat(ctx context.Context, name, note string, location models.Location) (*models.Cat, error) {
	cat := &models.Cat{
		Name:    strings.TrimSpace(name),
		Note:    note,
		GpsLat:  location.Lat,
		GpsLong: location.Lng,
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCat, err)
	}
	if err := s.store.SaveCat(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// UpdateCat changes the name and the note only, the location stays derived
func (s *Service) UpdateCat(ctx context.Context, id uint64, name, note string) (*models.Cat, error) {
	unlock := s.aggregator.Lock(id)
	defer unlock()
	cat, err := s.store.FindCat(ctx, id)
	if err != nil {
		return nil, err
	}
	cat.Name = strings.TrimSpace(name)
	cat.Note = note
	if err = cat.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCat, err)
	}
	if err = s.store.SaveCat(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCat keeps the observations, they just lose the link
func (s *Service) DeleteCat(ctx context.Context, id uint64) error {
	unlock := s.aggregator.Lock(id)
	defer unlock()
	return s.store.DeleteCat(ctx, id)
}

// CatDetail returns the cat with its latest photos, newest observations first
func (s *Service) CatDetail(ctx context.Context, id uint64) (*models.Cat, []models.Photo, error) {
	cat, err := s.store.FindCatWithPhotos(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return cat, cat.LatestPhotos(models.LatestPhotosNum), nil
}
