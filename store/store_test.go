package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/gogpu/vmap"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "lib", "vmap.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	m := vmap.NewMapper(640, 480)
	m.AddQuad(100, 100, 4)
	m.AddBezier(300, 200, 6).SetName("dome")

	saved, err := s.Save(ctx, "stage left", m)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Surfaces != 2 || saved.Name != "stage left" {
		t.Fatalf("Save() = %+v", saved)
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	restored := vmap.NewMapper(640, 480)
	res, err := got.Restore(restored)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if res.Loaded != 2 || res.Skipped != 0 {
		t.Errorf("Restore() = %+v", res)
	}
	dome, ok := restored.Surface(1)
	if !ok || dome.Name() != "dome" || dome.Resolution() != 6 {
		t.Errorf("restored surface 1 = %v", dome)
	}
}

func TestLatestAndList(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	if _, err := s.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest() on empty library = %v, want ErrNotFound", err)
	}

	m := vmap.NewMapper(640, 480)
	first, err := s.Save(ctx, "first", m)
	if err != nil {
		t.Fatal(err)
	}
	m.AddQuad(100, 100, 2)
	second, err := s.Save(ctx, "second", m)
	if err != nil {
		t.Fatal(err)
	}

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("Latest() = %s, want %s", latest.Name, second.Name)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, l := range list {
		if l.Document != nil {
			t.Errorf("List() entry %s carries a document", l.Name)
		}
		names = append(names, l.Name)
	}
	if diff := cmp.Diff([]string{"second", "first"}, names); diff != "" {
		t.Errorf("List() order (-want +got):\n%s", diff)
	}
	if !list[1].Created.Equal(first.Created) {
		t.Errorf("created = %v, want %v", list[1].Created, first.Created)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	l, err := s.Save(ctx, "gone", vmap.NewMapper(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, l.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() unknown id = %v, want ErrNotFound", err)
	}
}
