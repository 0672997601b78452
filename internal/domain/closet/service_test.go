package closet

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
)

type fakeRepo struct {
	items map[string]catalog.Item
	err   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]catalog.Item)}
}

func (f *fakeRepo) Insert(_ context.Context, _ int64, item catalog.Item) error {
	if f.err != nil {
		return f.err
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepo) Update(_ context.Context, _ int64, item catalog.Item) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.items[item.ID]; !ok {
		return false, nil
	}
	f.items[item.ID] = item
	return true, nil
}

func (f *fakeRepo) Delete(_ context.Context, _ int64, itemID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.items[itemID]; !ok {
		return false, nil
	}
	delete(f.items, itemID)
	return true, nil
}

func (f *fakeRepo) Get(_ context.Context, _ int64, itemID string) (catalog.Item, bool, error) {
	if f.err != nil {
		return catalog.Item{}, false, f.err
	}
	item, ok := f.items[itemID]
	return item, ok, nil
}

func (f *fakeRepo) List(_ context.Context, _ int64) ([]catalog.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]catalog.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

type recordingIndexer struct {
	indexed []string
	removed []string
}

func (r *recordingIndexer) IndexItem(_ context.Context, _ int64, item catalog.Item) error {
	r.indexed = append(r.indexed, item.ID)
	return nil
}

func (r *recordingIndexer) RemoveItem(_ context.Context, _ int64, itemID string) error {
	r.removed = append(r.removed, itemID)
	return nil
}

type memoryImages struct {
	objects map[string][]byte
}

func (m *memoryImages) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() ItemInput {
	return ItemInput{
		Name:       "  Linen Shirt ",
		Kind:       " Top ",
		BaseColor:  "WHITE",
		Material:   "Linen",
		Warmth:     0,
		Formality:  0.6,
		StyleTags:  []string{"Minimal", " minimal ", ""},
		SeasonTags: []string{"Summer"},
	}
}

func TestCreateNormalizesAndIndexes(t *testing.T) {
	repo := newFakeRepo()
	indexer := &recordingIndexer{}
	svc := NewService(repo, indexer, nil, testLogger())

	item, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, "Linen Shirt", item.Name)
	require.Equal(t, catalog.KindTop, item.Kind)
	require.Equal(t, "white", item.BaseColor)
	require.Equal(t, "linen", item.Material)
	require.Equal(t, []string{"minimal"}, item.StyleTags)
	require.Equal(t, []string{"summer"}, item.SeasonTags)
	require.Equal(t, []string{item.ID}, indexer.indexed)
}

func TestCreateRejectsInvalidItem(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, testLogger())
	in := validInput()
	in.Kind = "hat-rack"

	_, err := svc.Create(context.Background(), 1, in)
	require.True(t, apperrors.IsCode(err, "invalid_context"))
}

func TestUpdatePreservesImageKey(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, testLogger())

	created, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	withImage := created
	withImage.ImageKey = "users/1/items/x.jpg"
	repo.items[created.ID] = withImage

	in := validInput()
	in.Name = "Renamed Shirt"
	updated, err := svc.Update(context.Background(), 1, created.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Renamed Shirt", updated.Name)
	require.Equal(t, "users/1/items/x.jpg", updated.ImageKey)
}

func TestUpdateMissingItem(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, testLogger())
	_, err := svc.Update(context.Background(), 1, "ghost", validInput())
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestDeleteRemovesFromIndex(t *testing.T) {
	repo := newFakeRepo()
	indexer := &recordingIndexer{}
	svc := NewService(repo, indexer, nil, testLogger())

	item, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, item.ID))
	require.Equal(t, []string{item.ID}, indexer.removed)

	err = svc.Delete(context.Background(), 1, item.ID)
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestSnapshotKeysByID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil, testLogger())

	first, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	in := validInput()
	in.Kind = "footwear"
	second, err := svc.Create(context.Background(), 1, in)
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	require.Equal(t, first, snap[first.ID])
	require.Equal(t, second, snap[second.ID])
}

func TestAttachImageRequiresStorage(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil, testLogger())
	_, err := svc.AttachImage(context.Background(), 1, "any", []byte("img"), "image/png")
	require.True(t, apperrors.IsCode(err, "storage_disabled"))
}

func TestAttachImageStoresAndLinks(t *testing.T) {
	repo := newFakeRepo()
	images := &memoryImages{}
	svc := NewService(repo, nil, images, testLogger())

	item, err := svc.Create(context.Background(), 7, validInput())
	require.NoError(t, err)

	updated, err := svc.AttachImage(context.Background(), 7, item.ID, []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "users/7/items/"+item.ID+".jpg", updated.ImageKey)
	require.Equal(t, []byte("jpeg-bytes"), images.objects[updated.ImageKey])
	require.Equal(t, updated.ImageKey, repo.items[item.ID].ImageKey)

	_, err = svc.AttachImage(context.Background(), 7, item.ID, nil, "image/jpeg")
	require.True(t, apperrors.IsCode(err, "invalid_request"))
}
