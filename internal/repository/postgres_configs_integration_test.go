// +build integration

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strconv"
	"testing"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/config"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/database"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// 获取测试数据库连接
func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "ifn_kits_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
		MaxConns: 5,
		MaxIdle:  2,
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	return db
}

func cleanupConfig(t *testing.T, db *sql.DB, configID string) {
	db.Exec(`DELETE FROM configs WHERE config_id = $1`, configID)
}

func TestConfigLifecycle_Integration(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	repo := NewPostgresConfigsRepository(db)
	ctx := context.Background()

	configID, err := repo.CreateConfig(ctx, &domain.ConfigDocument{
		ConfigType: domain.ConfigTypeLoot,
		ConfigName: "it-weekly-loot",
		Content:    json.RawMessage(`{"kits":[]}`),
	})
	if err != nil {
		t.Fatalf("CreateConfig failed: %v", err)
	}
	defer cleanupConfig(t, db, configID)

	// 创建即 v1，未发布
	cfg, err := repo.GetConfig(ctx, configID)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if cfg.CurrentVersion != 1 || cfg.PublishedVersion != nil {
		t.Fatalf("unexpected initial state: current=%d published=%v", cfg.CurrentVersion, cfg.PublishedVersion)
	}

	// 编辑两次，版本连续递增
	for i, content := range []string{`{"kits":["a"]}`, `{"kits":["a","b"]}`} {
		v, err := repo.SnapshotConfig(ctx, configID, json.RawMessage(content), 50)
		if err != nil {
			t.Fatalf("SnapshotConfig failed: %v", err)
		}
		if v != i+2 {
			t.Fatalf("expected version %d, got %d", i+2, v)
		}
	}

	// 发布 v2，回滚到 v1
	if err := repo.PublishVersion(ctx, configID, 2); err != nil {
		t.Fatalf("PublishVersion failed: %v", err)
	}
	if err := repo.PublishVersion(ctx, configID, 1); err != nil {
		t.Fatalf("rollback PublishVersion failed: %v", err)
	}

	cfg, err = repo.GetConfig(ctx, configID)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if cfg.PublishedVersion == nil || *cfg.PublishedVersion != 1 {
		t.Fatalf("expected published v1, got %v", cfg.PublishedVersion)
	}
	if cfg.CurrentVersion != 3 {
		t.Fatalf("rollback must not mint versions, current=%d", cfg.CurrentVersion)
	}

	// 不存在的版本
	if err := repo.PublishVersion(ctx, configID, 99); err != domain.ErrVersionNotFound {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}
