package main

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/blogapi/internal/db"
	"github.com/geocoder89/blogapi/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var seedEmail string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert seed data",
}

var seedAdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create the admin account from ADMIN_EMAIL / ADMIN_PASSWORD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
		}

		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			created, err := db.EnsureAdminUser(ctx, postgres.NewUsersRepo(pool, nil), cfg)
			if err != nil {
				return err
			}

			if created {
				success("admin %s created", cfg.AdminEmail)
			} else {
				success("admin %s already exists", cfg.AdminEmail)
			}
			return nil
		})
	},
}

var seedPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Create sample posts for an existing user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			posts, err := db.SeedPosts(ctx, postgres.NewUsersRepo(pool, nil), postgres.NewPostsRepo(pool, nil), seedEmail)
			if err != nil {
				return err
			}

			for _, p := range posts {
				state := "draft"
				if p.Published {
					state = "published"
				}
				success("post %d %q (%s)", p.ID, p.Title, state)
			}
			return nil
		})
	},
}

func init() {
	seedPostsCmd.Flags().StringVar(&seedEmail, "email", "", "email of the author")
	_ = seedPostsCmd.MarkFlagRequired("email")

	seedCmd.AddCommand(seedAdminCmd, seedPostsCmd)
	RootCmd.AddCommand(seedCmd)
}

func withPool(parent context.Context, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	if parent == nil {
		parent = context.Background()
	}

	pool, err := db.NewPool(cfg.DBURL, 2)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	return fn(ctx, pool)
}
