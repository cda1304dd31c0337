//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/taskhub/internal/bootstrap"
	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/infra/config"
	httpiface "github.com/yanqian/taskhub/internal/interface/http"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		provideLogger,
		bootstrap.TokenSet,
		bootstrap.ProvideStorage,
		bootstrap.ProvideUserRepository,
		bootstrap.ProvideEventPublisher,
		auth.NewService,
		httpiface.NewAuthHandler,
		httpiface.NewAuthRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
