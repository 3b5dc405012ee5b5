package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/config"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/migrate"
)

// 一次性跑完所有待执行的 migration 然后退出（部署流水线里调用）
func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := migrate.Up(ctx, cfg.Database.GetDSN()); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}
