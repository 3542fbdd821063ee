package catalog

import (
	"context"
	"errors"
	"fmt"

	"catmap/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	PageSize       = 25
	NearestCatsNum = 10
)

var (
	ErrNotFound   = errors.New("not found")
	ErrPhotoTaken = errors.New("photo belongs to another observation")
)

// Store is the gorm backed persistence of photos, observations and cats.
// A Store returned by Transaction runs every call inside that transaction.
type Store struct {
	db *gorm.DB
}

type ObservationPage struct {
	Observations []models.Observation
	Page         int
	TotalPages   int
}

type CatPage struct {
	Cats       []models.Cat
	Page       int
	TotalPages int
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error, what string, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

// pageOffset counts pages from 1, anything lower is the first page
func pageOffset(page int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * PageSize
}

func totalPages(count int64) int {
	return int((count + PageSize - 1) / PageSize)
}

// Photos

// CreatePhotos inserts all photos with a single statement and sets their IDs
func (s *Store) CreatePhotos(ctx context.Context, photos []*models.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(photos).Error
}

func (s *Store) FindPhoto(ctx context.Context, id uint64) (*models.Photo, error) {
	photo := models.Photo{}
	if err := s.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		return nil, notFound(err, "photo", id)
	}
	return &photo, nil
}

// FindPhotos returns the existing photos among ids, unknown ids are left out
func (s *Store) FindPhotos(ctx context.Context, ids []uint64) ([]models.Photo, error) {
	photos := []models.Photo{}
	if len(ids) == 0 {
		return photos, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&photos).Error
	return photos, err
}

func (s *Store) DeletePhoto(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Delete(&models.Photo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("photo %d: %w", id, ErrNotFound)
	}
	return nil
}

// AttachPhotos makes photoIDs the exact photo set of the observation. Photos that were
// attached before and are not in photoIDs become orphaned again. Photos owned by another
// observation are never moved, ErrPhotoTaken is returned instead.
func (s *Store) AttachPhotos(ctx context.Context, observationID uint64, photoIDs []uint64) error {
	detach := s.db.WithContext(ctx).Model(&models.Photo{}).Where("observation_id = ?", observationID)
	if len(photoIDs) > 0 {
		detach = detach.Where("id NOT IN ?", photoIDs)
	}
	if err := detach.Update("observation_id", nil).Error; err != nil {
		return err
	}
	if len(photoIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.Photo{}).
		Where("id IN ?", photoIDs).
		Where("observation_id IS NULL OR observation_id = ?", observationID).
		Update("observation_id", observationID).Error
	if err != nil {
		return err
	}
	// RowsAffected skips unchanged rows on MySQL, so count what the observation owns now
	var attached int64
	err = s.db.WithContext(ctx).Model(&models.Photo{}).
		Where("observation_id = ?", observationID).
		Count(&attached).Error
	if err != nil {
		return err
	}
	if attached != int64(len(photoIDs)) {
		return fmt.Errorf("observation %d: %w", observationID, ErrPhotoTaken)
	}
	return nil
}

// Observations

func (s *Store) FindObservation(ctx context.Context, id uint64) (*models.Observation, error) {
	observation := models.Observation{}
	err := s.db.WithContext(ctx).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("taken_at, id") }).
		Preload("Cat").
		First(&observation, id).Error
	if err != nil {
		return nil, notFound(err, "observation", id)
	}
	return &observation, nil
}

// ObservationCatID is the current cat link of the observation, 0 when there is none
func (s *Store) ObservationCatID(ctx context.Context, id uint64) (uint64, error) {
	observation := models.Observation{}
	err := s.db.WithContext(ctx).Select("id", "cat_id").First(&observation, id).Error
	if err != nil {
		return 0, notFound(err, "observation", id)
	}
	return catIDOf(observation.CatID), nil
}

// ListObservations returns one page, newest observations first
func (s *Store) ListObservations(ctx context.Context, page int) (result ObservationPage, err error) {
	var count int64
	if err = s.db.WithContext(ctx).Model(&models.Observation{}).Count(&count).Error; err != nil {
		return
	}
	page, offset := pageOffset(page)
	result.Page = page
	result.TotalPages = totalPages(count)
	result.Observations = []models.Observation{}
	err = s.db.WithContext(ctx).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("taken_at, id") }).
		Preload("Cat").
		Order("date DESC, id DESC").
		Limit(PageSize).
		Offset(offset).
		Find(&result.Observations).Error
	return
}

// SaveObservation inserts (ID == 0) or updates the observation row only, associations are
// handled by AttachPhotos
func (s *Store) SaveObservation(ctx context.Context, observation *models.Observation) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(observation).Error
}

// DeleteObservation removes the observation with all of its photo records and returns what
// was deleted, so the caller can clean up the files
func (s *Store) DeleteObservation(ctx context.Context, id uint64) (*models.Observation, error) {
	observation, err := s.FindObservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.db.WithContext(ctx).Where("observation_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
		return nil, err
	}
	if err = s.db.WithContext(ctx).Delete(&models.Observation{}, id).Error; err != nil {
		return nil, err
	}
	return observation, nil
}

// Cats

func (s *Store) FindCat(ctx context.Context, id uint64) (*models.Cat, error) {
	cat := models.Cat{}
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, notFound(err, "cat", id)
	}
	return &cat, nil
}

// FindCatWithPhotos also loads the observations (newest first) and their photos
func (s *Store) FindCatWithPhotos(ctx context.Context, id uint64) (*models.Cat, error) {
	cat := models.Cat{}
	err := s.db.WithContext(ctx).
		Preload("Observations", func(db *gorm.DB) *gorm.DB { return db.Order("date DESC, id DESC") }).
		Preload("Observations.Photos", func(db *gorm.DB) *gorm.DB { return db.Order("taken_at DESC, id DESC") }).
		First(&cat, id).Error
	if err != nil {
		return nil, notFound(err, "cat", id)
	}
	return &cat, nil
}

// ListCats returns one page ordered by name, then note
func (s *Store) ListCats(ctx context.Context, page int) (result CatPage, err error) {
	var count int64
	if err = s.db.WithContext(ctx).Model(&models.Cat{}).Count(&count).Error; err != nil {
		return
	}
	page, offset := pageOffset(page)
	result.Page = page
	result.TotalPages = totalPages(count)
	result.Cats = []models.Cat{}
	err = s.db.WithContext(ctx).
		Order("name, note, id").
		Limit(PageSize).
		Offset(offset).
		Find(&result.Cats).Error
	return
}

// NearestCats orders by the taxicab distance in degrees
func (s *Store) NearestCats(ctx context.Context, location models.Location) ([]models.Cat, error) {
	cats := []models.Cat{}
	err := s.db.WithContext(ctx).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ABS(gps_lat - ?) + ABS(gps_long - ?), id",
			Vars:               []any{location.Lat, location.Lng},
			WithoutParentheses: true,
		}}).
		Limit(NearestCatsNum).
		Find(&cats).Error
	return cats, err
}

// SaveCat inserts (ID == 0) or updates the cat row only
func (s *Store) SaveCat(ctx context.Context, cat *models.Cat) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(cat).Error
}

// DeleteCat unlinks all observations of the cat and removes it.
// NOTE: SQLite does not enforce the foreign key without the pragma
func (s *Store) DeleteCat(ctx context.Context, id uint64) error {
	return s.Transaction(ctx, func(tx *Store) error {
		err := tx.db.Model(&models.Observation{}).Where("cat_id = ?", id).Update("cat_id", nil).Error
		if err != nil {
			return err
		}
		result := tx.db.Delete(&models.Cat{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("cat %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Map

// Marker is a point on the main map
type Marker struct {
	ID  uint64  `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MapMarkers struct {
	Cats         []Marker
	Observations []Marker // only those not linked to a cat
}

// MapMarkers returns every cat and the observations without a cat
func (s *Store) MapMarkers(ctx context.Context) (result MapMarkers, err error) {
	result.Cats = []Marker{}
	result.Observations = []Marker{}
	err = s.db.WithContext(ctx).Model(&models.Cat{}).
		Select("id, gps_lat AS lat, gps_long AS lng").
		Order("id").
		Scan(&result.Cats).Error
	if err != nil {
		return
	}
	err = s.db.WithContext(ctx).Model(&models.Observation{}).
		Select("id, gps_lat AS lat, gps_long AS lng").
		Where("cat_id IS NULL").
		Order("id").
		Scan(&result.Observations).Error
	return
}

// LocationSource

func (s *Store) CatObservationLocations(ctx context.Context, catID uint64) ([]models.Location, error) {
	rows, err := s.db.WithContext(ctx).Model(&models.Observation{}).
		Select("gps_lat, gps_long").
		Where("cat_id = ?", catID).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []models.Location{}
	for rows.Next() {
		location := models.Location{}
		if err = rows.Scan(&location.Lat, &location.Lng); err != nil {
			return nil, err
		}
		result = append(result, location)
	}
	return result, rows.Err()
}

func (s *Store) SetCatLocation(ctx context.Context, catID uint64, location models.Location) error {
	return s.db.WithContext(ctx).Model(&models.Cat{}).
		Where("id = ?", catID).
		Updates(map[string]any{"gps_lat": location.Lat, "gps_long": location.Lng}).Error
}
