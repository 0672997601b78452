//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yuefen/wearwise/internal/bootstrap"
	"github.com/yuefen/wearwise/internal/domain/auth"
	"github.com/yuefen/wearwise/internal/domain/closet"
	"github.com/yuefen/wearwise/internal/domain/packing"
	"github.com/yuefen/wearwise/internal/domain/rotation"
	"github.com/yuefen/wearwise/internal/domain/search"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	"github.com/yuefen/wearwise/internal/infra/config"
	httpiface "github.com/yuefen/wearwise/internal/interface/http"
	"github.com/yuefen/wearwise/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideStylistConfig,
		provideRotationConfig,
		providePackingConfig,
		provideSearchConfig,
		provideAuthConfig,
		providePgxPool,
		provideWearStore,
		provideClosetRepository,
		provideSuggestionCache,
		provideSearchIndex,
		provideEmbedder,
		provideAuthRepository,
		provideImageStore,
		provideClosetImageStorage,
		provideImageResolver,
		rotation.NewTracker,
		stylist.NewService,
		packing.NewPlanner,
		search.NewService,
		closet.NewService,
		auth.NewService,
		wire.Bind(new(stylist.FreshnessProvider), new(rotation.Tracker)),
		wire.Bind(new(closet.Indexer), new(search.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
