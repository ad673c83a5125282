package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/storage"
	"github.com/google/uuid"
)

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, key, _ string, r io.Reader) (*storage.PutResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[key] = b
	return &storage.PutResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}

func TestArchiveRoundTrip(t *testing.T) {
	fake := newFakeStandingsStore()
	fake.matches[group1] = []models.Match{played(group1, teamA, teamB, 2, 0, models.MatchStatusFinished)}
	standingsSvc := NewStandingsService(fake, StandingsConfig{}, discardLogger())
	objects := &memoryStore{objects: map[string][]byte{}}

	svc := NewArchiveService(objects, standingsSvc, fake, discardLogger()).(*archiveService)
	svc.now = func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }

	snapshot, err := svc.ArchiveStage(context.Background(), groupStage)
	if err != nil {
		t.Fatalf("ArchiveStage: %v", err)
	}
	wantKey := "standings/" + tournamentID.String() + "/" + groupStage.String() + ".json"
	if _, ok := objects.objects[wantKey]; !ok {
		t.Fatalf("nothing stored under %s", wantKey)
	}
	if !strings.HasSuffix(snapshot.URL, wantKey) {
		t.Errorf("URL = %q", snapshot.URL)
	}

	got, err := svc.GetArchive(context.Background(), groupStage)
	if err != nil {
		t.Fatalf("GetArchive: %v", err)
	}
	if len(got.Table.Rows) != 2 || got.Table.Rows[0].TeamID != teamA || !got.ArchivedAt.Equal(snapshot.ArchivedAt) {
		t.Errorf("archived snapshot mismatch: %+v", got)
	}

	if err := svc.DeleteArchive(context.Background(), groupStage); err != nil {
		t.Fatalf("DeleteArchive: %v", err)
	}
	if _, err := svc.GetArchive(context.Background(), groupStage); !errors.Is(err, ErrArchiveNotFound) {
		t.Errorf("after delete: got %v, want ErrArchiveNotFound", err)
	}
}

func TestArchiveDisabled(t *testing.T) {
	fake := newFakeStandingsStore()
	svc := NewArchiveService(nil, NewStandingsService(fake, StandingsConfig{}, discardLogger()), fake, discardLogger())

	if _, err := svc.ArchiveStage(context.Background(), groupStage); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("got %v, want ErrArchiveDisabled", err)
	}
	if _, err := svc.ArchiveStage(context.Background(), uuid.New()); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("got %v, want ErrArchiveDisabled", err)
	}
}
