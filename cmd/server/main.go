// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sozercan/genome-workbench/internal/alphagenome"
	"github.com/sozercan/genome-workbench/internal/analysis"
	"github.com/sozercan/genome-workbench/internal/annotation"
	"github.com/sozercan/genome-workbench/internal/config"
	"github.com/sozercan/genome-workbench/internal/llm"
	"github.com/sozercan/genome-workbench/internal/server"
	"github.com/sozercan/genome-workbench/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		addr       string
	)
	cmd := &cobra.Command{
		Use:           "genome-workbench",
		Short:         "Web workbench for the AlphaGenome prediction API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(configFile, addr)
			if err != nil {
				slog.Error("server failed", "error", err)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to a config file (yaml, json or toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port, overrides server.host and server.port")
	return cmd
}

func run(configFile, addr string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetDefault(cfg.Log.Logger())

	if addr != "" {
		host, port, err := splitAddr(addr)
		if err != nil {
			return err
		}
		cfg.Server.Host, cfg.Server.Port = host, port
	}

	client, err := alphagenome.NewClient(cfg.AlphaGenome)
	if err != nil {
		return fmt.Errorf("failed to create prediction service client: %w", err)
	}

	var genes *annotation.Source
	if cfg.Annotation.GTFSource != "" {
		genes = annotation.NewSource(cfg.Annotation.GTFSource, nil)
	}

	var narrator analysis.Summarizer
	if cfg.OpenAI.Enabled() {
		provider, err := llm.NewOpenAI(cfg.OpenAI)
		if err != nil {
			return fmt.Errorf("failed to create LLM provider: %w", err)
		}
		narrator = llm.NewNarrator(provider)
	}

	sessions := session.NewStore(cfg.Server.SessionTTL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx, time.Minute)

	srv, err := server.New(*cfg, analysis.New(client, genes, narrator), sessions)
	if err != nil {
		return err
	}
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port,
		"geneLookup", genes.Enabled(), "narration", narrator != nil)
	return srv.Run()
}
