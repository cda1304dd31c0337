//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/taskhub/internal/bootstrap"
	"github.com/yanqian/taskhub/internal/domain/task"
	"github.com/yanqian/taskhub/internal/domain/token"
	"github.com/yanqian/taskhub/internal/infra/config"
	httpiface "github.com/yanqian/taskhub/internal/interface/http"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		provideLogger,
		bootstrap.ProvideClock,
		bootstrap.ProvideKeySource,
		token.NewCodec,
		token.NewVerifier,
		bootstrap.ProvideStorage,
		bootstrap.ProvideTaskRepository,
		task.NewService,
		httpiface.NewTaskHandler,
		httpiface.NewTaskRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
