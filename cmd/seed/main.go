// Command seed loads photo metadata from a Pexels CSV export into the
// database. Rows whose pexels_id already exists are skipped, so reruns
// are safe.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/lumapix/photos-api/config"
	"github.com/lumapix/photos-api/internal/observability"
	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"github.com/lumapix/photos-api/repositories/postgres"
	"go.uber.org/zap"
)

const (
	seedUserID    = "seed-user-00000000-0000-0000-0000-000000000000"
	seedUserEmail = "seed@lumapix.dev"
)

func main() {
	csvPath := flag.String("csv", "photos.csv", "path to the Pexels CSV export")
	userID := flag.String("user-id", "", "existing user id to assign as owner (defaults to the seed user)")
	flag.Parse()

	if err := run(*csvPath, *userID); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath, userID string) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Every run gets its own correlation id in the logs
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	ctx := context.Background()

	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer factory.Close()

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	repos := factory.NewRepositories()

	ownerID, err := resolveOwner(ctx, repos.Users, userID, logger)
	if err != nil {
		return err
	}

	photos, err := readPhotos(csvPath)
	if err != nil {
		return err
	}
	logger.Info("loaded csv", zap.String("path", csvPath), zap.Int("rows", len(photos)))

	inserted, skipped, failed := 0, 0, 0
	for _, photo := range photos {
		photo.UserID = ownerID

		_, err := repos.Photos.GetByPexelsID(ctx, photo.PexelsID)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("lookup failed", zap.Int64("pexels_id", photo.PexelsID), zap.Error(err))
			failed++
			continue
		}

		if err := repos.Photos.Create(ctx, photo); err != nil {
			logger.Warn("insert failed", zap.Int64("pexels_id", photo.PexelsID), zap.Error(err))
			failed++
			continue
		}
		inserted++
	}

	logger.Info("seeding complete",
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	return nil
}

// resolveOwner returns the user id all seeded photos are assigned to.
// An explicit id must already exist; otherwise the well-known seed user
// is created on first use.
func resolveOwner(ctx context.Context, users repositories.UserRepository, userID string, logger *zap.Logger) (string, error) {
	if userID != "" {
		if _, err := users.GetByID(ctx, userID); err != nil {
			return "", fmt.Errorf("user %s not found: %w", userID, err)
		}
		return userID, nil
	}

	user, err := users.GetOrCreate(ctx, seedUserID, seedUserEmail)
	if err != nil {
		return "", fmt.Errorf("failed to ensure seed user: %w", err)
	}
	logger.Info("using seed user", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user.ID, nil
}

// readPhotos parses the Pexels CSV export. Headers use the export's dotted
// names (src.original, src.large2x, ...); the id column is the Pexels id.
func readPhotos(path string) ([]*models.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var photos []*models.Photo
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record at line %d: %w", line+1, err)
		}
		line++

		photo, err := photoFromRecord(columns, record)
		if err != nil {
			return nil, fmt.Errorf("invalid csv record at line %d: %w", line, err)
		}
		photos = append(photos, photo)
	}

	return photos, nil
}

func photoFromRecord(columns map[string]int, record []string) (*models.Photo, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	// Empty numeric cells become zero, matching the export's loose typing
	num := func(name string) (int64, error) {
		v := field(name)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		return n, nil
	}

	pexelsID, err := num("id")
	if err != nil {
		return nil, err
	}
	width, err := num("width")
	if err != nil {
		return nil, err
	}
	height, err := num("height")
	if err != nil {
		return nil, err
	}
	photographerID, err := num("photographer_id")
	if err != nil {
		return nil, err
	}

	photo := &models.Photo{
		PexelsID:        pexelsID,
		Width:           int(width),
		Height:          int(height),
		URL:             field("url"),
		Photographer:    field("photographer"),
		PhotographerURL: field("photographer_url"),
		PhotographerID:  photographerID,
		AvgColor:        field("avg_color"),
		SrcOriginal:     field("src.original"),
		SrcLarge2x:      field("src.large2x"),
		SrcLarge:        field("src.large"),
		SrcMedium:       field("src.medium"),
		SrcSmall:        field("src.small"),
		SrcPortrait:     field("src.portrait"),
		SrcLandscape:    field("src.landscape"),
		SrcTiny:         field("src.tiny"),
	}

	if alt := field("alt"); alt != "" {
		photo.Alt = &alt
	}

	return photo, nil
}
