package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/server"
	"github.com/matzehuels/kintree/pkg/store"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		baseURL string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API used by the editor: upload parsing, validation,
saving, avatar uploads, layout and export. Storage and cache backends come
from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			if cmd.Flags().Changed("base-url") {
				c.Config.Server.BaseURL = baseURL
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public URL of the API (default server.base_url)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout and artifact cache")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cfg := c.Config

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()

	avatars, err := store.NewAvatarStore(cfg.Storage.UploadsDir, store.DefaultUploadsPrefix)
	if err != nil {
		return err
	}

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"storage", cfg.Storage.Backend,
		"cache", cfg.Cache.Backend)

	srv := server.New(server.Options{
		Addr:        cfg.Server.Addr,
		BaseURL:     cfg.Server.BaseURL,
		CORSOrigins: cfg.Server.CORSOrigins,
		UploadsDir:  cfg.Storage.UploadsDir,
		PresetsDir:  cfg.Storage.PresetsDir,
		Layout:      cfg.Layout,
		Presets:     cfg.Presets,
	}, runner, st, avatars, c.Logger)
	return srv.Run(ctx)
}
