// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/feedstore"
	"github.com/poiesic/feedstore/repository"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "feedstore",
		Usage: "Inspect and load key-addressed feed storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "Repository locator URL (file://..., badger://...)",
				EnvVars: []string{"FEEDSTORE_REPO"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file with flag defaults",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Read an entry and write its content to stdout",
				ArgsUsage: "<segment>...",
				Action:    getCommand,
			},
			{
				Name:      "put",
				Usage:     "Write stdin as the entry's content",
				ArgsUsage: "<segment>...",
				Action:    putCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "atomic",
						Usage: "Publish the write atomically (file backend)",
					},
				},
			},
			{
				Name:      "ls",
				Usage:     "List the immediate children of a directory-like node",
				ArgsUsage: "[segment]...",
				Action:    lsCommand,
			},
			{
				Name:      "exists",
				Usage:     "Report whether an entry exists (exit status 1 when absent)",
				ArgsUsage: "<segment>...",
				Action:    existsCommand,
			},
			{
				Name:      "import",
				Usage:     "Bulk-load a directory tree through a buffered store",
				ArgsUsage: "<directory>",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size for concurrent file reads",
						Value: 4,
					},
				},
			},
		},
	}
}

// cfg holds the defaults loaded from the config file. Flags given on the
// command line win over config values.
var cfg config

// setup loads the config file into unset flags, then configures logging.
func setup(c *cli.Context) error {
	cfg = config{}
	if path := c.String("config"); path != "" {
		loaded, err := loadConfig(path)
		if err != nil {
			return err
		}
		cfg = *loaded
		if !c.IsSet("repo") && cfg.Repo != "" {
			if err := c.Set("repo", cfg.Repo); err != nil {
				return err
			}
		}
		if !c.IsSet("log-level") && cfg.LogLevel != "" {
			if err := c.Set("log-level", cfg.LogLevel); err != nil {
				return err
			}
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func openStore(c *cli.Context, opts ...feedstore.Option) (*feedstore.Store, error) {
	rawurl := c.String("repo")
	if rawurl == "" {
		return nil, fmt.Errorf("no repository locator: pass --repo or set it in the config file")
	}
	rawurl, err := mergeLocatorFlags(rawurl, c.Bool("atomic"), cfg)
	if err != nil {
		return nil, err
	}
	return feedstore.Open(rawurl, opts...)
}

// mergeLocatorFlags folds the file-backend mode flags from the command line
// and the config file into the locator's query parameters. Parameters
// already present in the locator win; non-file schemes pass through
// untouched.
func mergeLocatorFlags(rawurl string, atomic bool, cfg config) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("parsing repository locator: %w", err)
	}
	if u.Scheme != "file" {
		return rawurl, nil
	}
	query := u.Query()
	if (atomic || cfg.Atomic) && !query.Has("atomic") {
		query.Set("atomic", "true")
	}
	if cfg.ChunkSize > 0 && !query.Has("chunk") {
		query.Set("chunk", strconv.Itoa(cfg.ChunkSize))
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func keyArgs(c *cli.Context) (repository.Key, error) {
	key := repository.Key(c.Args().Slice())
	if err := repository.ValidateKey(key, true); err != nil {
		return nil, err
	}
	return key, nil
}

func getCommand(c *cli.Context) error {
	key, err := keyArgs(c)
	if err != nil {
		return err
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	chunks, err := store.Repository().Read(key)
	if err != nil {
		return err
	}
	for chunk, err := range chunks {
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func putCommand(c *cli.Context) error {
	key, err := keyArgs(c)
	if err != nil {
		return err
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return store.Repository().Write(key, repository.Bytes(content))
}

func lsCommand(c *cli.Context) error {
	key := repository.Key(c.Args().Slice())
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.Repository().List(key)
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func existsCommand(c *cli.Context) error {
	key, err := keyArgs(c)
	if err != nil {
		return err
	}
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if !store.Repository().Exists(key) {
		return cli.Exit(fmt.Sprintf("%s: not found", key), 1)
	}
	fmt.Println(key)
	return nil
}

// poolSize resolves the import worker count: an explicit --workers flag
// wins, then the config file, then the flag's default.
func poolSize(flagValue int, flagSet bool, configWorkers int) int {
	if !flagSet && configWorkers > 0 {
		return configWorkers
	}
	return flagValue
}

// importCommand walks a directory tree and writes every file through a
// buffered store, one worker pool task per file, then flushes once at the
// end. The buffer's lock serializes the writes; the pool parallelizes the
// file reads feeding them.
func importCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("no source directory given")
	}
	store, err := openStore(c, feedstore.WithBuffer())
	if err != nil {
		return err
	}
	defer store.Close()

	pool, err := ants.NewPool(poolSize(c.Int("workers"), c.IsSet("workers"), cfg.Workers))
	if err != nil {
		return err
	}
	defer pool.Release()

	repo := store.Repository()
	logger := slog.Default()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		imported int
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			logger.Error("import failed", "err", err)
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		imported++
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := repository.Key(strings.Split(filepath.ToSlash(rel), "/"))
		wg.Add(1)
		return pool.Submit(func() {
			defer wg.Done()
			content, err := os.ReadFile(path)
			if err != nil {
				record(fmt.Errorf("reading %s: %w", path, err))
				return
			}
			record(repo.Write(key, repository.Bytes(content)))
		})
	})
	wg.Wait()
	if walkErr != nil {
		return walkErr
	}
	if firstErr != nil {
		return firstErr
	}
	if err := store.Flush(); err != nil {
		return err
	}
	logger.Info("import complete", "files", imported, "source", dir)
	return nil
}
