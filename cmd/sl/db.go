package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/config"
	"github.com/stitchline/stitchline/internal/db"
	"github.com/stitchline/stitchline/internal/verify"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBSeedCmd())
	cmd.AddCommand(newDBHashCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var (
		configPath string
		seedPath   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Stitchline database",
		Long:  "Creates the MySQL database, migrates all tables, and optionally seeds reference data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath, seedPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&seedPath, "seed", "", "path to reference-data YAML to seed after migration")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath, seedPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config for line %q from %s\n", cfg.LineID, configPath)

	adminDB, err := db.ConnectAdmin(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to MySQL at %s:%d: %w", cfg.DB.Host, cfg.DB.Port, err)
	}
	fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", cfg.DB.Host, cfg.DB.Port)

	if err := db.CreateDatabase(adminDB, cfg.DB.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s ready\n", cfg.DB.Database)

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if seedPath != "" {
		if err := seedFromFile(cmd, gormDB, seedPath); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nStitchline database initialized successfully.")
	return nil
}

func newDBMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations against the existing database",
		Long:  "Applies table migrations without creating the database. Use after upgrading sl on a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(db.AllModels()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	return cmd
}

func newDBSeedCmd() *cobra.Command {
	var (
		configPath string
		seedPath   string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert reference data from a YAML file",
		Long: `Loads lines, styles, personnel, breaks and time tables from a YAML file.
Existing rows are updated in place, so the file can be re-applied after edits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return seedFromFile(cmd, gormDB, seedPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Stitchline config file")
	cmd.Flags().StringVar(&seedPath, "file", "seed.yaml", "path to reference-data YAML")
	return cmd
}

func seedFromFile(cmd *cobra.Command, gormDB *gorm.DB, seedPath string) error {
	out := cmd.OutOrStdout()
	seed, err := db.LoadSeed(seedPath)
	if err != nil {
		return err
	}
	if err := db.Seed(gormDB, seed); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d lines, %d styles, %d personnel, %d breaks, %d time tables\n",
		len(seed.Lines), len(seed.Styles), len(seed.Personnel), len(seed.Breaks), len(seed.TimeTables))
	return nil
}

func newDBHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-credential",
		Short: "Hash a credential for the personnel seed file",
		Long: `Reads a credential and prints its bcrypt hash. Paste the hash into the
personnel section of the seed file when verify.mode is "hashed".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := promptCredential(cmd, "hashing")
			if err != nil {
				return err
			}
			hash, err := verify.HashCredential(plain)
			if err != nil {
				return fmt.Errorf("hash credential: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	return cmd
}
