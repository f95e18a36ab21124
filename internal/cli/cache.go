package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depshift/pkg/config"
)

// newCacheCmd creates the metadata cache management command. Only the file
// backend has a directory to manage; redis users manage their server
// directly.
func newCacheCmd() *cobra.Command {
	var (
		dir        string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry metadata cache",
	}

	cmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Composer working directory")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to depshift.toml (default: <dir>/depshift.toml)")

	cmd.AddCommand(newCacheClearCmd(&dir, &configPath))
	cmd.AddCommand(newCachePathCmd(&dir, &configPath))

	return cmd
}

func newCacheClearCmd(dir, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cached registry metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, err := resolveCacheDir(*dir, *configPath)
			if err != nil {
				return err
			}

			if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.Walk(cacheDir, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == cacheDir {
					return nil
				}
				if !info.IsDir() {
					if err := os.Remove(path); err == nil {
						count++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			// Clean up empty subdirectories.
			_ = filepath.Walk(cacheDir, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == cacheDir {
					return nil
				}
				if info.IsDir() {
					os.Remove(path)
				}
				return nil
			})

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", cacheDir)
			return nil
		},
	}
}

func newCachePathCmd(dir, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, err := resolveCacheDir(*dir, *configPath)
			if err != nil {
				return err
			}
			fmt.Println(cacheDir)
			return nil
		},
	}
}

// resolveCacheDir determines the file cache directory from config, falling
// back to the default under the user's cache home.
func resolveCacheDir(dir, configPath string) (string, error) {
	cfg, err := config.Load(dir, configPath)
	if err != nil {
		return "", err
	}
	if cfg.Cache.Backend != config.BackendFile {
		return "", fmt.Errorf("cache backend %q has no local directory", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", "depshift"), nil
}
