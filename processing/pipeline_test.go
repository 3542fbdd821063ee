package processing

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"catmap/models"
	"catmap/storage"
)

type fakeStore struct {
	calls  int
	saved  []*models.Photo
	nextID uint64
	err    error
}

func (s *fakeStore) CreatePhotos(ctx context.Context, photos []*models.Photo) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	for _, p := range photos {
		s.nextID++
		p.ID = s.nextID
	}
	s.saved = append(s.saved, photos...)
	return nil
}

func newTestPipeline(t *testing.T, store PhotoStore) (*Pipeline, string) {
	root := t.TempDir()
	layout := storage.NewLayout(storage.LayoutConfig{PublicBaseURL: "/uploads/"}, storage.NewDiskStorage(root))
	p := NewPipeline(Config{Metadata: MetadataOptions{Location: time.UTC}}, layout, store)
	p.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }
	return p, root
}

func fileAt(t *testing.T, root, url string) []byte {
	t.Helper()
	rel, ok := strings.CutPrefix(url, "/uploads/")
	if !ok {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestPipeline_Ingest(t *testing.T) {
	store := &fakeStore{}
	p, root := newTestPipeline(t, store)
	withGPS := withExif(testJPEG(t, 300, 400), buildTIFF("2022:07:08 09:10:11", rationals(60, 1, 10, 1, 0, 1), rationals(24, 1, 56, 1, 0, 1)))
	uploads := []Upload{
		{Name: "first cat.jpg", ContentType: "image/jpeg", Data: withGPS},
		{Name: "second.png", ContentType: "image/png", Data: testJPEG(t, 10, 10)},
		{Name: `C:\photos\third.jpg`, ContentType: "image/JPEG; charset=binary", Data: testJPEG(t, 640, 480)},
	}
	photos, err := p.Ingest(context.Background(), uploads)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 2 || store.calls != 1 || len(store.saved) != 2 {
		t.Fatalf("Ingest() = %d photos, %d store calls", len(photos), store.calls)
	}
	if photos[0].ID != 1 || photos[1].ID != 2 {
		t.Errorf("photos not saved in upload order: %d, %d", photos[0].ID, photos[1].ID)
	}

	first := photos[0]
	if !first.TakenAt.Equal(time.Date(2022, 7, 8, 9, 10, 11, 0, time.UTC)) {
		t.Errorf("TakenAt = %v", first.TakenAt)
	}
	if !sameFloat(first.GpsLat, ptr(60+10.0/60)) || !sameFloat(first.GpsLong, ptr(24+56.0/60)) {
		t.Errorf("GPS = %v, %v", deref(first.GpsLat), deref(first.GpsLong))
	}
	if first.Width != 300 || first.Height != 400 {
		t.Errorf("size = %dx%d", first.Width, first.Height)
	}
	if filepath.Base(first.OriginalURL) != "first_cat.jpg" || filepath.Base(first.ThumbURL) != "t-first_cat.jpg" {
		t.Errorf("urls = %s, %s", first.OriginalURL, first.ThumbURL)
	}
	if filepath.Dir(first.OriginalURL) != filepath.Dir(first.ThumbURL) {
		t.Errorf("original and thumbnail should share a directory: %s, %s", first.OriginalURL, first.ThumbURL)
	}
	if got := decodeSize(t, fileAt(t, root, first.ThumbURL)); got != image.Pt(200, 266) {
		t.Errorf("thumbnail size = %v", got)
	}
	if len(fileAt(t, root, first.OriginalURL)) != len(withGPS) {
		t.Errorf("original was not stored as uploaded")
	}

	third := photos[1]
	if !third.TakenAt.Equal(p.now()) || third.GpsLat != nil || third.GpsLong != nil {
		t.Errorf("third = %+v", third)
	}
	if filepath.Base(third.OriginalURL) != "third.jpg" {
		t.Errorf("third url = %s", third.OriginalURL)
	}
	if filepath.Dir(first.OriginalURL) == filepath.Dir(third.OriginalURL) {
		t.Errorf("every photo needs its own directory")
	}
}

func TestPipeline_Ingest_CorruptFile(t *testing.T) {
	store := &fakeStore{}
	p, root := newTestPipeline(t, store)
	photos, err := p.Ingest(context.Background(), []Upload{
		{Name: "broken.jpg", ContentType: "image/jpeg", Data: []byte("not really a jpeg")},
		{Name: "ok.jpg", ContentType: "image/jpeg", Data: testJPEG(t, 50, 40)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 1 || filepath.Base(photos[0].OriginalURL) != "ok.jpg" {
		t.Fatalf("Ingest() = %+v", photos)
	}
	// the broken original stays on disk
	matches, err := filepath.Glob(filepath.Join(root, "*", "broken.jpg"))
	if err != nil || len(matches) != 1 {
		t.Errorf("broken original: %v, %v", matches, err)
	}
	thumbs, _ := filepath.Glob(filepath.Join(root, "*", "t-broken.jpg"))
	if len(thumbs) != 0 {
		t.Errorf("no thumbnail expected for a broken file: %v", thumbs)
	}
}

func TestPipeline_Ingest_Nothing(t *testing.T) {
	store := &fakeStore{}
	p, _ := newTestPipeline(t, store)
	for _, uploads := range [][]Upload{nil, {{Name: "a.gif", ContentType: "image/gif"}}} {
		photos, err := p.Ingest(context.Background(), uploads)
		if err != nil || len(photos) != 0 {
			t.Errorf("Ingest() = %v, %v", photos, err)
		}
	}
	if store.calls != 0 {
		t.Errorf("store called %d times for nothing", store.calls)
	}
}

func TestPipeline_Ingest_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("db is down")}
	p, root := newTestPipeline(t, store)
	photos, err := p.Ingest(context.Background(), []Upload{{Name: "a.jpg", ContentType: "image/jpeg", Data: testJPEG(t, 20, 20)}})
	if !errors.Is(err, ErrStoreCommit) || photos != nil {
		t.Fatalf("Ingest() = %v, %v", photos, err)
	}
	matches, _ := filepath.Glob(filepath.Join(root, "*", "*a.jpg"))
	if len(matches) != 2 {
		t.Errorf("files should stay after a failed commit, found %v", matches)
	}
}

func Test_isAccepted(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"image/jpeg", true},
		{"IMAGE/JPEG", true},
		{"image/jpeg; name=x", true},
		{"image/jpg", false},
		{"image/png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAccepted(tt.in); got != tt.want {
			t.Errorf("isAccepted(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
