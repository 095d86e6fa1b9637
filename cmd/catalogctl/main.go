// catalogctl tareas de administración del catálogo que no pasan por la API:
// migraciones, reconciliación de roles y alta del primer administrador.
//
// Uso:
//
//	catalogctl migrate
//	catalogctl seed-roles
//	catalogctl create-admin --email admin@tienda.com --password secreto --name "Admin"
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

const commandTimeout = 2 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Administración de la base del catálogo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedRolesCmd(), newCreateAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, _ *logger.Logger) error {
				applied, err := postgres.Migrate(ctx, pool)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
					return nil
				}
				for _, name := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", name)
				}
				return nil
			})
		},
	}
}

func newSeedRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Crea los roles admin y client si faltan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
				uc := usecase.NewUserUseCase(postgres.NewUserRepository(pool), postgres.NewRoleRepository(pool), log)
				if err := uc.EnsureRoles(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "roles listos")
				return nil
			})
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var in dto.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario administrador (idempotente por email)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Email == "" || in.Password == "" {
				return fmt.Errorf("--email y --password son obligatorios")
			}
			return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
				uc := usecase.NewUserUseCase(postgres.NewUserRepository(pool), postgres.NewRoleRepository(pool), log)
				created, err := uc.SeedAdmin(ctx, postgres.NewTxRunner(pool), in)
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintf(cmd.OutOrStdout(), "el usuario %s ya existe, sin cambios\n", in.Email)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "administrador %s creado\n", in.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email del administrador")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (mínimo 6 caracteres)")
	cmd.Flags().StringVar(&in.Name, "name", "Administrador", "nombre visible")
	return cmd
}

// withPool carga la configuración, abre el pool y lo cierra al terminar fn.
func withPool(parent context.Context, fn func(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn", Output: os.Stderr})

	ctx, cancel := context.WithTimeout(parent, commandTimeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, pool, log)
}
