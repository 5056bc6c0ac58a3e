package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/menta2k/quickcrop/internal/server"
	"github.com/menta2k/quickcrop/internal/utils"
	"github.com/menta2k/quickcrop/pkg/cache/memory"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trim API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			utils.Logger.Info("starting quickcrop server",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit))

			detector, closeCache := newDetector(cmd.Context(), a.cfg, memory.New())
			defer closeCache()

			gin.SetMode(a.cfg.Server.Mode)
			srv := server.New(a.cfg, detector, newRunner(a.cfg), utils.Logger, Version)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, e.g. :8080")
	return cmd
}
