package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/infrastructure/apiserver"
	"github.com/academyhq/academy-client/internal/infrastructure/config"
	"github.com/academyhq/academy-client/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the in-memory reference backend for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Init(logger.Options{Level: "info", Pretty: true})
		cfg := config.Load(log)

		srv := apiserver.New(apiserver.Config{
			JWTSecret: cfg.Serve.JWTSecret,
			Logger:    log,
		})
		if err := seedDemo(srv); err != nil {
			return err
		}

		addr := ":" + cfg.Serve.Port
		fmt.Printf("Reference backend listening on %s\n", addr)
		fmt.Println("Demo accounts: admin@academy.test / player@academy.test / agent@academy.test (password: demo1234)")
		return srv.Start(addr)
	},
}

func seedDemo(srv *apiserver.Server) error {
	accounts := []domain.Identity{
		{ID: "u-1", Email: "admin@academy.test", FirstName: "Ana", LastName: "Duarte",
			Role: domain.RoleAdmin, Status: domain.StatusApproved},
		{ID: "u-2", Email: "player@academy.test", FirstName: "Marco", LastName: "Silva",
			Role: domain.RolePlayer, Status: domain.StatusApproved, ProfileCompleted: false},
		{ID: "u-3", Email: "agent@academy.test", FirstName: "Lia", LastName: "Costa",
			Role: domain.RoleAgent, Status: domain.StatusApproved},
		{ID: "u-4", Email: "pending@academy.test", FirstName: "Rui", LastName: "Mota",
			Role: domain.RolePlayer, Status: domain.StatusPending},
	}
	for _, acc := range accounts {
		if err := srv.SeedAccount(acc, "demo1234"); err != nil {
			return err
		}
	}

	srv.SeedResource(domain.ResourcePlayers,
		domain.Entity{"id": "players-seed-1", "name": "Marco Silva", "position": "midfielder", "team": "U17 A"},
		domain.Entity{"id": "players-seed-2", "name": "Tiago Ramos", "position": "goalkeeper", "team": "U17 A"},
		domain.Entity{"id": "players-seed-3", "name": "Andre Lopes", "position": "striker", "team": "U15 B"},
	)
	srv.SeedResource(domain.ResourceTeams,
		domain.Entity{"id": "teams-seed-1", "name": "U17 A", "division": "regional"},
		domain.Entity{"id": "teams-seed-2", "name": "U15 B", "division": "district"},
	)
	srv.SeedResource(domain.ResourceMatches,
		domain.Entity{"id": "matches-seed-1", "home": "U17 A", "away": "Rivals FC", "date": "2026-09-12"},
	)
	return nil
}
