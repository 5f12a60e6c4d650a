// Command bootstrap seeds a fresh database with the first admin account and
// the baseline section catalog so the portal is usable right after migration.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/gov-collab/portal-api/pkg/config"
	"github.com/gov-collab/portal-api/pkg/database"
)

type sectionSeed struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	OrderIndex int    `json:"order_index"`
}

type countrySeed struct {
	NameEN string `json:"name_en"`
	Code   string `json:"code"`
}

type seedFile struct {
	Sections  []sectionSeed `json:"sections"`
	Countries []countrySeed `json:"countries"`
}

func main() {
	var (
		adminUser string
		adminPass string
		adminName string
		seedPath  string
		timeout   time.Duration
	)

	flag.StringVar(&adminUser, "admin-user", "admin", "Username of the bootstrap admin account")
	flag.StringVar(&adminPass, "admin-pass", "", "Password of the bootstrap admin account (required)")
	flag.StringVar(&adminName, "admin-name", "Administrator", "Display name of the bootstrap admin account")
	flag.StringVar(&seedPath, "seed", filepath.Join("scripts", "bootstrap", "seed.json"), "Path to JSON seed file")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if adminPass == "" {
		log.Fatal("-admin-pass is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	seeds, err := loadSeeds(seedPath)
	if err != nil {
		log.Fatalf("failed to load seed file: %v", err)
	}

	if err := seedAdmin(ctx, db, adminUser, adminPass, adminName); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	created, err := seedCatalog(ctx, db, seeds)
	if err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	fmt.Printf("Bootstrap complete: admin %q ready, %d catalog rows created\n", adminUser, created)
}

func loadSeeds(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &seedFile{}, nil
		}
		return nil, err
	}
	var seeds seedFile
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, err
	}
	return &seeds, nil
}

func seedAdmin(ctx context.Context, db *sqlx.DB, username, password, fullName string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, full_name, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, 'admin', TRUE, NOW(), NOW())
ON CONFLICT (username) DO NOTHING`, username, string(hash), fullName)
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}
	return nil
}

func seedCatalog(ctx context.Context, db *sqlx.DB, seeds *seedFile) (int, error) {
	created := 0
	for _, s := range seeds.Sections {
		res, err := db.ExecContext(ctx, `
INSERT INTO sections (key, label, order_index, is_active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, NOW(), NOW())
ON CONFLICT (key) DO NOTHING`, s.Key, s.Label, s.OrderIndex)
		if err != nil {
			return created, fmt.Errorf("failed to insert section %q: %w", s.Key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	for _, c := range seeds.Countries {
		res, err := db.ExecContext(ctx, `
INSERT INTO countries (name_en, code, is_active, created_at, updated_at)
VALUES ($1, $2, TRUE, NOW(), NOW())
ON CONFLICT (code) DO NOTHING`, c.NameEN, c.Code)
		if err != nil {
			return created, fmt.Errorf("failed to insert country %q: %w", c.Code, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	return created, nil
}
