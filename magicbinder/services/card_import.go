package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/abrams/magicbinder/magicbinder/config"
	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ImportService loads bulk catalog dumps (Scryfall default-cards JSON) into
// the cards and card_faces tables. The dump is streamed, never held in
// memory whole, and batches are written by a worker pool.
type ImportService struct {
	cards  repositories.CardRepository
	spaces *SpacesService
}

// NewImportService takes an optional spaces service; when present, faces
// without an image URL in the dump get one pointing at the image bucket.
func NewImportService(cards repositories.CardRepository, spaces *SpacesService) *ImportService {
	return &ImportService{cards: cards, spaces: spaces}
}

type bulkFace struct {
	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost"`
	CMC        float64  `json:"cmc"`
	TypeLine   string   `json:"type_line"`
	OracleText string   `json:"oracle_text"`
	Colors     []string `json:"colors"`
	Power      string   `json:"power"`
	Toughness  string   `json:"toughness"`
	ImageUris  struct {
		Normal string `json:"normal"`
	} `json:"image_uris"`
}

type bulkCard struct {
	bulkFace

	ID              string     `json:"id"`
	OracleID        string     `json:"oracle_id"`
	Set             string     `json:"set"`
	CollectorNumber string     `json:"collector_number"`
	Rarity          string     `json:"rarity"`
	Layout          string     `json:"layout"`
	CardFaces       []bulkFace `json:"card_faces"`
}

// ImportFile streams a JSON array of printings from path and upserts them.
// Returns the number of cards written; entries with malformed ids are
// skipped with a warning, not fatal.
func (s *ImportService) ImportFile(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog dump: %w", err)
	}
	defer file.Close()

	start := time.Now()
	dec := json.NewDecoder(file)
	if _, err := dec.Token(); err != nil {
		return 0, fmt.Errorf("catalog dump is not a JSON array: %w", err)
	}

	batches := make(chan []bulkCard, config.ImportWorkers)
	var imported atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < config.ImportWorkers; i++ {
		g.Go(func() error {
			for batch := range batches {
				cards, faces := s.buildModels(batch)
				if len(cards) == 0 {
					continue
				}
				if err := s.cards.UpsertBatch(gctx, cards, faces); err != nil {
					return err
				}
				imported.Add(int64(len(cards)))
			}
			return nil
		})
	}

	var produceErr error
	batch := make([]bulkCard, 0, config.ImportBatchSize)
	send := func(b []bulkCard) bool {
		select {
		case batches <- b:
			return true
		case <-gctx.Done():
			produceErr = gctx.Err()
			return false
		}
	}

	for dec.More() {
		var raw bulkCard
		if err := dec.Decode(&raw); err != nil {
			produceErr = fmt.Errorf("decode catalog entry: %w", err)
			break
		}
		batch = append(batch, raw)
		if len(batch) == config.ImportBatchSize {
			if !send(batch) {
				break
			}
			batch = make([]bulkCard, 0, config.ImportBatchSize)
		}
	}
	if produceErr == nil && len(batch) > 0 {
		send(batch)
	}
	close(batches)

	if err := g.Wait(); err != nil {
		return int(imported.Load()), err
	}
	if produceErr != nil {
		return int(imported.Load()), produceErr
	}

	slog.Info("Catalog import finished",
		slog.String("type", "import"),
		slog.String("path", path),
		slog.Int64("cards", imported.Load()),
		slog.Duration("took", time.Since(start)))
	return int(imported.Load()), nil
}

func (s *ImportService) buildModels(batch []bulkCard) ([]*models.Card, []*models.CardFace) {
	now := time.Now()
	cards := make([]*models.Card, 0, len(batch))
	var faces []*models.CardFace

	for _, raw := range batch {
		id, err := uuid.Parse(raw.ID)
		if err != nil {
			slog.Warn("Skipping catalog entry with bad id",
				slog.String("type", "import"),
				slog.String("id", raw.ID),
				slog.String("name", raw.Name))
			continue
		}
		oracleID, err := uuid.Parse(raw.OracleID)
		if err != nil {
			// Reversible and token printings can miss oracle ids.
			oracleID = uuid.Nil
		}

		cards = append(cards, &models.Card{
			ID:              id,
			OracleID:        oracleID,
			Name:            raw.Name,
			SetCode:         raw.Set,
			CollectorNumber: raw.CollectorNumber,
			Rarity:          raw.Rarity,
			Layout:          raw.Layout,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		faces = append(faces, s.buildFaces(id, raw)...)
	}
	return cards, faces
}

func (s *ImportService) buildFaces(cardID uuid.UUID, raw bulkCard) []*models.CardFace {
	sources := raw.CardFaces
	if len(sources) == 0 {
		sources = []bulkFace{raw.bulkFace}
	}

	faces := make([]*models.CardFace, len(sources))
	for i, src := range sources {
		cmc := src.CMC
		if cmc == 0 {
			// Multi-face dumps carry cmc at the card level only.
			cmc = raw.CMC
		}
		imageURL := src.ImageUris.Normal
		if imageURL == "" && s.spaces != nil {
			imageURL = s.spaces.CardImageURL(cardID, i)
		}
		faces[i] = &models.CardFace{
			CardID:     cardID,
			FaceIndex:  i,
			Name:       src.Name,
			ManaCost:   src.ManaCost,
			CMC:        cmc,
			TypeLine:   src.TypeLine,
			OracleText: src.OracleText,
			Colors:     src.Colors,
			Power:      src.Power,
			Toughness:  src.Toughness,
			ImageURL:   imageURL,
		}
	}
	return faces
}
