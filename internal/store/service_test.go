package store

import (
	"testing"

	"github.com/google/uuid"

	"eventpress/internal/models"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestServiceStoreUpsert(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)

	slug := "test-svc-upsert"
	t.Cleanup(func() { cleanServices(t, db, slug) })

	created, err := s.Upsert(&models.Service{
		Slug:        slug,
		Title:       "Düğün Organizasyonu",
		OrderNo:     intPtr(3),
		IsPublished: true,
		Keywords:    []string{"düğün", "organizasyon"},
	})
	if err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if len(created.Keywords) != 2 {
		t.Errorf("keywords: got %v", created.Keywords)
	}

	// Same slug updates in place instead of inserting a second row.
	updated, err := s.Upsert(&models.Service{
		Slug:        slug,
		Title:       "Düğün ve Nişan",
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("upsert must keep the row: got %s, want %s", updated.ID, created.ID)
	}
	if updated.Title != "Düğün ve Nişan" {
		t.Errorf("title: got %q", updated.Title)
	}
	if updated.Keywords != nil {
		t.Errorf("nil keywords must overwrite to NULL, got %v", updated.Keywords)
	}
}

func TestServiceStoreUpdateBySlug(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)

	slug := "test-svc-patch"
	t.Cleanup(func() { cleanServices(t, db, slug) })

	desc := "Eski açıklama"
	_, err := s.Upsert(&models.Service{
		Slug:        slug,
		Title:       "Kına Gecesi",
		Description: &desc,
		OrderNo:     intPtr(7),
		IsPublished: true,
		Keywords:    []string{"kına"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Partial update: title changes, description is cleared, everything
	// else stays.
	got, err := s.UpdateBySlug(slug, &models.ServiceUpdate{
		Title:            strPtr("Kına Gecesi Plus"),
		ClearDescription: true,
	})
	if err != nil {
		t.Fatalf("UpdateBySlug: %v", err)
	}
	if got == nil {
		t.Fatal("expected row, got nil")
	}
	if got.Title != "Kına Gecesi Plus" {
		t.Errorf("title: got %q", got.Title)
	}
	if got.Description != nil {
		t.Errorf("description should be cleared, got %q", *got.Description)
	}
	if got.OrderNo == nil || *got.OrderNo != 7 {
		t.Error("untouched order_no must survive a partial update")
	}
	if len(got.Keywords) != 1 {
		t.Errorf("untouched keywords must survive, got %v", got.Keywords)
	}

	// Archiving through a patch unpublishes unless the same patch sets
	// the publish flag explicitly.
	got, err = s.UpdateBySlug(slug, &models.ServiceUpdate{IsArchived: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpdateBySlug (archive): %v", err)
	}
	if !got.IsArchived || got.IsPublished {
		t.Errorf("archive patch: archived=%v published=%v", got.IsArchived, got.IsPublished)
	}

	// Unarchiving does not republish.
	got, err = s.UpdateBySlug(slug, &models.ServiceUpdate{IsArchived: boolPtr(false)})
	if err != nil {
		t.Fatalf("UpdateBySlug (unarchive): %v", err)
	}
	if got.IsArchived || got.IsPublished {
		t.Errorf("unarchive patch: archived=%v published=%v", got.IsArchived, got.IsPublished)
	}

	// Unknown slug.
	missing, err := s.UpdateBySlug("test-svc-patch-missing", &models.ServiceUpdate{Title: strPtr("X")})
	if err != nil {
		t.Fatalf("UpdateBySlug (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown slug")
	}
}

func TestServiceStoreListPublished(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)

	pub := "test-svc-pub"
	draft := "test-svc-draft"
	arch := "test-svc-arch"
	t.Cleanup(func() { cleanServices(t, db, pub, draft, arch) })

	shown, err := s.Upsert(&models.Service{Slug: pub, Title: "Yayında", IsPublished: true})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := s.Upsert(&models.Service{Slug: draft, Title: "Taslak"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	archived, err := s.Upsert(&models.Service{Slug: arch, Title: "Arşiv", IsPublished: true})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.SetArchived(archived.ID, true); err != nil {
		t.Fatalf("SetArchived: %v", err)
	}

	items, err := s.ListPublished()
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	var sawShown bool
	for _, svc := range items {
		if svc.Slug == draft {
			t.Error("unpublished service leaked into public list")
		}
		if svc.Slug == arch {
			t.Error("archived service leaked into public list")
		}
		if svc.ID == shown.ID {
			sawShown = true
		}
	}
	if !sawShown {
		t.Error("published service missing from public list")
	}
}

func TestServiceStoreMove(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)

	slugs := []string{"test-svc-move-a", "test-svc-move-b", "test-svc-move-c"}
	t.Cleanup(func() { cleanServices(t, db, slugs...) })

	// Negative ranks keep these rows at the head of the list even when
	// the database already holds other services.
	orders := []int{-30, -20, -10}
	var ids []uuid.UUID
	for i, sl := range slugs {
		svc, err := s.Upsert(&models.Service{
			Slug:        sl,
			Title:       "Sıralı " + sl,
			OrderNo:     intPtr(orders[i]),
			IsPublished: true,
		})
		if err != nil {
			t.Fatalf("Upsert %s: %v", sl, err)
		}
		ids = append(ids, svc.ID)
	}

	orderOf := func(id uuid.UUID) int {
		t.Helper()
		svc, err := s.FindByID(id)
		if err != nil || svc == nil {
			t.Fatalf("FindByID %s: %v", id, err)
		}
		if svc.OrderNo == nil {
			t.Fatalf("service %s has no order_no", id)
		}
		return *svc.OrderNo
	}

	// Moving B up swaps its rank with A.
	if err := s.Move(ids[1], MoveUp); err != nil {
		t.Fatalf("Move up: %v", err)
	}
	if orderOf(ids[1]) != -30 || orderOf(ids[0]) != -20 {
		t.Errorf("after move up: a=%d b=%d", orderOf(ids[0]), orderOf(ids[1]))
	}

	// Moving the new top row further up does nothing.
	if err := s.Move(ids[1], MoveUp); err != nil {
		t.Fatalf("Move up at boundary: %v", err)
	}
	if orderOf(ids[1]) != -30 {
		t.Errorf("boundary move changed order: got %d", orderOf(ids[1]))
	}

	// Unknown ids are silently ignored.
	if err := s.Move(uuid.New(), MoveDown); err != nil {
		t.Fatalf("Move unknown id: %v", err)
	}
}

func TestServiceStoreMoveSkipsArchived(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)

	slugs := []string{"test-svc-skip-a", "test-svc-skip-b", "test-svc-skip-c"}
	t.Cleanup(func() { cleanServices(t, db, slugs...) })

	// Negative ranks pin these rows to the head of the list; the middle
	// one gets archived and must drop out of the ordering entirely.
	orders := []int{-60, -50, -40}
	var ids []uuid.UUID
	for i, sl := range slugs {
		svc, err := s.Upsert(&models.Service{
			Slug:        sl,
			Title:       "Sıralı " + sl,
			OrderNo:     intPtr(orders[i]),
			IsPublished: true,
		})
		if err != nil {
			t.Fatalf("Upsert %s: %v", sl, err)
		}
		ids = append(ids, svc.ID)
	}

	if err := s.SetArchived(ids[1], true); err != nil {
		t.Fatalf("SetArchived: %v", err)
	}

	orderOf := func(id uuid.UUID) int {
		t.Helper()
		svc, err := s.FindByID(id)
		if err != nil || svc == nil {
			t.Fatalf("FindByID %s: %v", id, err)
		}
		if svc.OrderNo == nil {
			t.Fatalf("service %s has no order_no", id)
		}
		return *svc.OrderNo
	}

	// C's upward neighbor is A now, not the archived B in between.
	if err := s.Move(ids[2], MoveUp); err != nil {
		t.Fatalf("Move up: %v", err)
	}
	if orderOf(ids[2]) != -60 || orderOf(ids[0]) != -40 {
		t.Errorf("after move up: a=%d c=%d", orderOf(ids[0]), orderOf(ids[2]))
	}
	if orderOf(ids[1]) != -50 {
		t.Errorf("archived row's rank must not change: got %d", orderOf(ids[1]))
	}

	// An archived id is not a movable target either.
	if err := s.Move(ids[1], MoveUp); err != nil {
		t.Fatalf("Move archived id: %v", err)
	}
	if orderOf(ids[0]) != -40 || orderOf(ids[1]) != -50 || orderOf(ids[2]) != -60 {
		t.Errorf("moving an archived id must be a no-op: a=%d b=%d c=%d",
			orderOf(ids[0]), orderOf(ids[1]), orderOf(ids[2]))
	}
}

func TestServiceStoreSetImageURL(t *testing.T) {
	db := testDB(t)
	s := NewServiceStore(db)

	slug := "test-svc-image"
	t.Cleanup(func() { cleanServices(t, db, slug) })

	svc, err := s.Upsert(&models.Service{Slug: slug, Title: "Resimli"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	url := "https://cdn.example.com/services/x/1.webp"
	if err := s.SetImageURL(svc.ID, url); err != nil {
		t.Fatalf("SetImageURL: %v", err)
	}

	got, err := s.FindByID(svc.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.ImageURL == nil || *got.ImageURL != url {
		t.Errorf("image url not persisted: %v", got.ImageURL)
	}
}
