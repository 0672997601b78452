// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"github.com/yuefen/wearwise/internal/bootstrap"
	"github.com/yuefen/wearwise/internal/domain/auth"
	"github.com/yuefen/wearwise/internal/domain/closet"
	"github.com/yuefen/wearwise/internal/domain/packing"
	"github.com/yuefen/wearwise/internal/domain/rotation"
	"github.com/yuefen/wearwise/internal/domain/search"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	"github.com/yuefen/wearwise/internal/infra/config"
	"github.com/yuefen/wearwise/internal/interface/http"
	"github.com/yuefen/wearwise/pkg/logger"
)

// Injectors from wire.go:

func initializeApp() (*bootstrap.App, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	slogLogger := logger.New()
	pool := providePgxPool(configConfig, slogLogger)
	repository := provideClosetRepository(pool)
	searchConfig := provideSearchConfig(configConfig)
	index := provideSearchIndex(pool)
	embedder := provideEmbedder(configConfig)
	service := search.NewService(searchConfig, index, embedder, slogLogger)
	r2Images := provideImageStore(configConfig, slogLogger)
	imageStorage := provideClosetImageStorage(r2Images)
	closetService := closet.NewService(repository, service, imageStorage, slogLogger)
	stylistConfig := provideStylistConfig(configConfig)
	rotationConfig := provideRotationConfig(configConfig)
	wearStore := provideWearStore(pool)
	tracker := rotation.NewTracker(rotationConfig, wearStore, slogLogger)
	suggestionCache := provideSuggestionCache(configConfig, slogLogger)
	stylistService := stylist.NewService(stylistConfig, tracker, suggestionCache, slogLogger)
	packingConfig := providePackingConfig(configConfig)
	planner := packing.NewPlanner(packingConfig, stylistService, slogLogger)
	authConfig := provideAuthConfig(configConfig)
	authRepository := provideAuthRepository(pool)
	authService := auth.NewService(authConfig, authRepository, slogLogger)
	imageResolver := provideImageResolver(r2Images)
	handler := http.NewHandler(closetService, stylistService, tracker, planner, service, authService, imageResolver, slogLogger)
	server := http.NewRouter(configConfig, handler, authService)
	app := bootstrap.NewApp(configConfig, slogLogger, server)
	return app, nil
}
