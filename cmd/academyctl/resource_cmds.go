package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/academyhq/academy-client/internal/core/domain"
)

var (
	getPage   int
	getLimit  int
	getSearch string

	mutationData string
)

var getCmd = &cobra.Command{
	Use:   "get <resource>",
	Short: "List a resource collection (players, teams, matches, stats, users)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, resource, err := resourceApp(cmd, args[0])
		if err != nil {
			return err
		}

		page, err := app.cache.Query(cmd.Context(), resource, domain.ListQuery{
			Page:   getPage,
			Limit:  getLimit,
			Search: getSearch,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(page.Items); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d of %d total\n", len(page.Items), page.Total)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create an entity from a JSON payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, resource, err := resourceApp(cmd, args[0])
		if err != nil {
			return err
		}
		entity, err := parseEntity(mutationData)
		if err != nil {
			return err
		}

		confirmed, err := app.cache.Mutate(cmd.Context(), resource, domain.OpCreate, entity)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s %s\n", resource, confirmed.ID())
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Update an entity from a JSON payload",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, resource, err := resourceApp(cmd, args[0])
		if err != nil {
			return err
		}
		entity, err := parseEntity(mutationData)
		if err != nil {
			return err
		}
		entity["id"] = args[1]

		confirmed, err := app.cache.Mutate(cmd.Context(), resource, domain.OpUpdate, entity)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s %s\n", resource, confirmed.ID())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, resource, err := resourceApp(cmd, args[0])
		if err != nil {
			return err
		}

		if _, err := app.cache.Mutate(cmd.Context(), resource, domain.OpDelete, domain.Entity{"id": args[1]}); err != nil {
			return err
		}
		fmt.Printf("Deleted %s %s\n", resource, args[1])
		return nil
	},
}

func resourceApp(cmd *cobra.Command, arg string) (*app, domain.ResourceType, error) {
	resource := domain.ResourceType(arg)
	if !resource.Valid() {
		return nil, "", fmt.Errorf("unknown resource %q", arg)
	}
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	if !a.restore(cmd.Context()) {
		return nil, "", fmt.Errorf("not logged in: run `academyctl login` first")
	}
	return a, resource, nil
}

func parseEntity(data string) (domain.Entity, error) {
	if data == "" {
		return nil, fmt.Errorf("--data is required")
	}
	var entity domain.Entity
	if err := json.Unmarshal([]byte(data), &entity); err != nil {
		return nil, fmt.Errorf("parse --data: %w", err)
	}
	return entity, nil
}

func init() {
	getCmd.Flags().IntVar(&getPage, "page", 1, "page number")
	getCmd.Flags().IntVar(&getLimit, "limit", 20, "page size")
	getCmd.Flags().StringVar(&getSearch, "search", "", "search term")

	createCmd.Flags().StringVar(&mutationData, "data", "", "entity JSON")
	updateCmd.Flags().StringVar(&mutationData, "data", "", "entity JSON")
}
