package main

import (
	"fmt"
	"net"

	pb "stockstreamer/src/grpc_control"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"
	"stockstreamer/src/poller"
	"stockstreamer/src/server"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers starts the dashboard and the gRPC control server in the
// background and returns the gRPC server for shutdown.
func startServers(
	dashboard *server.DashboardServer,
	pollingManager *poller.PollingManager,
	config *models.MConfig,
	appLogger *logger.Logger,
) *grpc.Server {

	// 1. Dashboard
	go func() {
		if err := dashboard.Start(); err != nil {
			appLogger.Error("Dashboard failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	grpcServer := grpc.NewServer()
	grpcLogger := logger.NewLogger(config, "ControlService")
	controlService := pb.NewControlService(pollingManager, config.DataSource.Symbols, grpcLogger)
	pb.RegisterPollerControlServer(grpcServer, controlService)

	go func() {
		addr := fmt.Sprintf("%s:%d", config.GrpcHost, config.GrpcPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			appLogger.Error("Failed to listen for gRPC: %v", err)
			return
		}

		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("Failed to serve gRPC: %v", err)
		}
	}()

	return grpcServer
}
