package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/fixture-engine/models"
)

// TournamentSnapshot is the archived state of a completed tournament.
type TournamentSnapshot struct {
	Tournament models.Tournament `json:"tournament"`
	Stages     []models.Stage    `json:"stages"`
	Matches    []*models.Match   `json:"matches"`
	Standings  []models.Standing `json:"standings"`
	ArchivedAt time.Time         `json:"archived_at"`
}

// SnapshotArchiver stores tournament snapshots as JSON objects.
type SnapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader}
}

func SnapshotKey(tournamentID int64, at time.Time) string {
	return fmt.Sprintf("tournaments/%d/snapshot-%s.json", tournamentID, at.UTC().Format("20060102T150405Z"))
}

func (a *SnapshotArchiver) Archive(ctx context.Context, snapshot TournamentSnapshot) (*UploadResult, error) {
	if snapshot.ArchivedAt.IsZero() {
		snapshot.ArchivedAt = time.Now()
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot of tournament %d: %w", snapshot.Tournament.ID, err)
	}
	return a.uploader.Upload(ctx, SnapshotKey(snapshot.Tournament.ID, snapshot.ArchivedAt), "application/json", bytes.NewReader(body))
}
