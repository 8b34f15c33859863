package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matineeapp/matinee-server/internal/store"
)

func TestUpsertAndGetProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	progress := &PlaybackProgress{
		FilmID:       "night_of_the_living_dead",
		Title:        "Night of the Living Dead",
		Year:         1968,
		PositionSec:  1543,
		DurationSec:  5742,
		Finished:     false,
		StartedAt:    now.Add(-30 * time.Minute),
		LastPlayedAt: now.Add(-time.Minute),
		UpdatedAt:    now,
	}

	if err := s.UpsertProgress(ctx, progress); err != nil {
		t.Fatalf("UpsertProgress: %v", err)
	}

	got, err := s.GetProgress(ctx, "night_of_the_living_dead")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}

	if got.FilmID != progress.FilmID {
		t.Errorf("FilmID: got %q, want %q", got.FilmID, progress.FilmID)
	}
	if got.Title != progress.Title {
		t.Errorf("Title: got %q, want %q", got.Title, progress.Title)
	}
	if got.Year != progress.Year {
		t.Errorf("Year: got %d, want %d", got.Year, progress.Year)
	}
	if got.PositionSec != progress.PositionSec {
		t.Errorf("PositionSec: got %d, want %d", got.PositionSec, progress.PositionSec)
	}
	if got.DurationSec != progress.DurationSec {
		t.Errorf("DurationSec: got %d, want %d", got.DurationSec, progress.DurationSec)
	}
	if got.Finished {
		t.Error("Finished: got true, want false")
	}
	if got.FinishedAt != nil {
		t.Errorf("FinishedAt: got %v, want nil", got.FinishedAt)
	}

	// Timestamps should round-trip.
	if got.StartedAt.Unix() != progress.StartedAt.Unix() {
		t.Errorf("StartedAt: got %v, want %v", got.StartedAt, progress.StartedAt)
	}
	if got.LastPlayedAt.Unix() != progress.LastPlayedAt.Unix() {
		t.Errorf("LastPlayedAt: got %v, want %v", got.LastPlayedAt, progress.LastPlayedAt)
	}
	if got.UpdatedAt.Unix() != progress.UpdatedAt.Unix() {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, progress.UpdatedAt)
	}
}

func TestGetProgress_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetProgress(ctx, "never_watched")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *store.Error, got %T: %v", err, err)
	}
	if storeErr.Code != store.ErrNotFound.Code {
		t.Errorf("expected code %d, got %d", store.ErrNotFound.Code, storeErr.Code)
	}
}

func TestUpsertProgress_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	progress := &PlaybackProgress{
		FilmID:       "nosferatu_murnau",
		PositionSec:  120,
		DurationSec:  5640,
		StartedAt:    now,
		LastPlayedAt: now,
		UpdatedAt:    now,
	}
	if err := s.UpsertProgress(ctx, progress); err != nil {
		t.Fatalf("UpsertProgress: %v", err)
	}

	// Finish the film.
	finishedAt := now.Add(90 * time.Minute)
	progress.PositionSec = 5640
	progress.Finished = true
	progress.FinishedAt = &finishedAt
	progress.LastPlayedAt = finishedAt
	progress.UpdatedAt = finishedAt
	if err := s.UpsertProgress(ctx, progress); err != nil {
		t.Fatalf("UpsertProgress (replace): %v", err)
	}

	got, err := s.GetProgress(ctx, "nosferatu_murnau")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if !got.Finished {
		t.Error("Finished: got false, want true")
	}
	if got.FinishedAt == nil {
		t.Fatal("FinishedAt: got nil, want value")
	}
	if got.FinishedAt.Unix() != finishedAt.Unix() {
		t.Errorf("FinishedAt: got %v, want %v", got.FinishedAt, finishedAt)
	}
	if got.PositionSec != 5640 {
		t.Errorf("PositionSec: got %d, want 5640", got.PositionSec)
	}
}

func TestListContinueWatching(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 20, 0, 0, 0, time.UTC)

	seed := []*PlaybackProgress{
		{FilmID: "oldest", PositionSec: 300, DurationSec: 5000,
			StartedAt: base, LastPlayedAt: base, UpdatedAt: base},
		{FilmID: "newest", PositionSec: 100, DurationSec: 5000,
			StartedAt: base, LastPlayedAt: base.Add(2 * time.Hour), UpdatedAt: base},
		{FilmID: "middle", PositionSec: 2000, DurationSec: 5000,
			StartedAt: base, LastPlayedAt: base.Add(time.Hour), UpdatedAt: base},
		// Finished films are excluded.
		{FilmID: "done", PositionSec: 5000, DurationSec: 5000, Finished: true,
			StartedAt: base, LastPlayedAt: base.Add(3 * time.Hour), UpdatedAt: base},
		// Films never actually started are excluded.
		{FilmID: "untouched", PositionSec: 0, DurationSec: 5000,
			StartedAt: base, LastPlayedAt: base.Add(4 * time.Hour), UpdatedAt: base},
	}
	for _, p := range seed {
		if err := s.UpsertProgress(ctx, p); err != nil {
			t.Fatalf("UpsertProgress(%s): %v", p.FilmID, err)
		}
	}

	states, err := s.ListContinueWatching(ctx, 10)
	if err != nil {
		t.Fatalf("ListContinueWatching: %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	if len(states) != len(want) {
		t.Fatalf("got %d states, want %d", len(states), len(want))
	}
	for i, id := range want {
		if states[i].FilmID != id {
			t.Errorf("states[%d]: got %q, want %q", i, states[i].FilmID, id)
		}
	}

	// Limit applies after ordering.
	states, err = s.ListContinueWatching(ctx, 1)
	if err != nil {
		t.Fatalf("ListContinueWatching(limit=1): %v", err)
	}
	if len(states) != 1 || states[0].FilmID != "newest" {
		t.Errorf("limit 1: got %v", states)
	}
}

func TestDeleteProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	progress := &PlaybackProgress{
		FilmID:       "reefer_madness_1936",
		PositionSec:  60,
		StartedAt:    now,
		LastPlayedAt: now,
		UpdatedAt:    now,
	}
	if err := s.UpsertProgress(ctx, progress); err != nil {
		t.Fatalf("UpsertProgress: %v", err)
	}

	if err := s.DeleteProgress(ctx, "reefer_madness_1936"); err != nil {
		t.Fatalf("DeleteProgress: %v", err)
	}

	if _, err := s.GetProgress(ctx, "reefer_madness_1936"); err == nil {
		t.Fatal("expected not-found after delete")
	}

	// Deleting again is a no-op.
	if err := s.DeleteProgress(ctx, "reefer_madness_1936"); err != nil {
		t.Fatalf("DeleteProgress (repeat): %v", err)
	}
}
