package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/strato-web/strato/internal/config"
)

// initCmd writes a starter strato.json and public directory.
func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a strato.json in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			if config.Exists(wd) {
				return fmt.Errorf("%s already exists", config.ConfigFileName)
			}

			cfg := config.New()
			if name != "" {
				cfg.Name = name
			} else {
				cfg.Name = filepath.Base(wd)
			}

			if err := cfg.SaveTo(filepath.Join(wd, config.ConfigFileName)); err != nil {
				fatal(err)
			}
			if err := os.MkdirAll(filepath.Join(wd, cfg.Static.Dir), 0o755); err != nil {
				return err
			}

			success("created %s", config.ConfigFileName)
			info("start the server with: strato serve")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "project name")
	return cmd
}
