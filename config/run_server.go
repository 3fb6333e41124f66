package config

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// RunServer : запускает сервер и корректно останавливает его по SIGINT/SIGTERM
func RunServer(ctx context.Context, server *http.Server) {
	logger := zap.L()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("сервер запущен", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ошибка работы сервера", zap.Error(err))
		}
	case sig := <-signalChannel:
		logger.Info("получен сигнал остановки работы сервера", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Error("ошибка при остановке сервера", zap.Error(err))
	} else {
		logger.Info("сервер успешно остановлен")
	}
}
