package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/mmo-game/internal/api"
	"github.com/annel0/mmo-game/internal/app"
	"github.com/annel0/mmo-game/internal/cache"
	"github.com/annel0/mmo-game/internal/config"
	"github.com/annel0/mmo-game/internal/ecs"
	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/interaction"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/network"
	"github.com/annel0/mmo-game/internal/observability"
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/regional"
	"github.com/annel0/mmo-game/internal/scheduler"
	"github.com/annel0/mmo-game/internal/states"
	"github.com/annel0/mmo-game/internal/storage"
	"github.com/annel0/mmo-game/internal/sync"
	"github.com/annel0/mmo-game/internal/timestep"
	"github.com/annel0/mmo-game/internal/world"
	"github.com/annel0/mmo-game/internal/world/block"
)

func main() {
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск voxel sandbox сервера...")

	// === TELEMETRY ===
	shutdownTel, err := observability.InitTelemetry(context.Background(), "voxel_server")
	if err != nil {
		logging.Warn("Не удалось инициализировать OpenTelemetry: %v", err)
	}

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load("")
	if err != nil {
		logging.Warn("Не удалось загрузить config: %v", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	restPort := cfg.Server.GetRESTPort()
	metricsPort := cfg.Server.GetMetricsPort()
	restAddr := fmt.Sprintf(":%d", restPort)
	metricsAddr := fmt.Sprintf(":%d", metricsPort)

	seed := cfg.World.Seed
	if seed == 0 {
		seed = time.Now().Unix()
	}
	tickRate := float64(cfg.World.GetTickRate())

	natsURL := "nats://127.0.0.1:4222"
	streamName := "EVENTS"
	retention := 24
	if cfg.EventBus.URL != "" {
		natsURL = cfg.EventBus.URL
	}
	if cfg.EventBus.Stream != "" {
		streamName = cfg.EventBus.Stream
	}
	if cfg.EventBus.Retention > 0 {
		retention = cfg.EventBus.Retention
	}

	logging.Info("📡 Конфигурация: seed=%d tickRate=%.0f REST API=%s", seed, tickRate, restAddr)

	// === EVENTBUS ===
	bus, err := eventbus.NewJetStreamBus(natsURL, streamName, time.Duration(retention)*time.Hour)
	if err != nil {
		logging.Error("❌ Не удалось инициализировать JetStreamBus: %v", err)
		log.Fatalf("EventBus init failed: %v", err)
	}
	eventbus.Init(bus)
	logging.Info("✅ JetStreamBus подключён %s", natsURL)

	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Не удалось запустить LoggingListener: %v", err)
	}

	exporter := eventbus.NewMetricsExporter(bus)
	exporter.StartHTTP(metricsAddr)

	// === МИР ===
	dirty, err := storage.OpenDirtyIndex("world/dirty.db")
	if err != nil {
		log.Fatalf("не удалось открыть индекс сохранений: %v", err)
	}
	worldSave, err := storage.OpenWorldSave("world", dirty)
	if err != nil {
		log.Fatalf("не удалось открыть хранилище мира: %v", err)
	}
	level, err := world.OpenLevel(worldSave, seed)
	if err != nil {
		log.Fatalf("не удалось открыть уровень: %v", err)
	}

	// === HOT CACHE (опционально, для регионального шардинга) ===
	var chunkCache *cache.RedisCache
	var cacheInvalidator *cache.NATSInvalidator
	if cfg.Cache.RedisURL != "" {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

		nodeID, hostErr := os.Hostname()
		if hostErr != nil || nodeID == "" {
			nodeID = "voxel-server"
		}
		cacheInvalidator, err = cache.NewNATSInvalidator(&cache.InvalidatorConfig{NATSURL: natsURL}, nodeID)
		if err != nil {
			logging.Warn("Не удалось подключиться к NATS cache invalidator: %v", err)
			cacheInvalidator = nil
		}

		var invalidator cache.CacheInvalidator
		if cacheInvalidator != nil {
			invalidator = cacheInvalidator
		}
		chunkCache, err = cache.NewRedisCache(&cache.CacheConfig{
			RedisURL:      cfg.Cache.RedisURL,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
			DefaultTTL:    ttl,
		}, nil, invalidator)
		if err != nil {
			logging.Warn("Не удалось подключиться к Redis hot cache: %v", err)
		} else {
			level.SetHotCache(cache.NewChunkHotCache(chunkCache, cache.ChunkHotCacheConfig{TTL: ttl}))
			logging.Info("✅ Chunk hot cache подключён %s", cfg.Cache.RedisURL)

			if cacheInvalidator != nil {
				invalidateCtx, cancelInvalidate := context.WithCancel(context.Background())
				defer cancelInvalidate()
				err := cacheInvalidator.SubscribeInvalidations(invalidateCtx, func(key string) error {
					logging.Debug("hot cache: remote invalidation for %s", key)
					return nil
				})
				if err != nil {
					logging.Warn("Не удалось подписаться на cache invalidations: %v", err)
				}
			}
		}
	}

	registry := ecs.NewRegistry()
	interactions := interaction.NewBlockInteractionResource()

	// === SCHEDULER ===
	sched := scheduler.New()
	sched.Add(&scheduler.VoxelPhysicsSystem{Voxel: physics.NewVoxelSystem(level)})
	sched.Add(&scheduler.OverlapBroadphaseSystem{Overlap: physics.NewOverlapSystem()})
	sched.Add(&scheduler.BlockIntentPhaseSystem{Intent: interaction.NewBlockIntentSystem(level, app.NoInput{})})
	sched.Add(&scheduler.BlockHitPhaseSystem{Hit: interaction.NewBlockHitSystem(level, app.UnitSpeed{})})
	sched.Add(&scheduler.BlockBreakPhaseSystem{Break: interaction.NewBlockBreakSystem(level, app.MathRand{})})
	sched.Add(&scheduler.BlockUsePhaseSystem{Use: interaction.NewBlockUseSystem(level)})
	sched.Add(&scheduler.FurnacePhaseSystem{Furnace: interaction.NewFurnaceSystem()})
	sched.Add(&scheduler.BlockEntityUIPhaseSystem{Interact: interaction.NewBlockEntityInteractSystem(app.LoggingUI{})})

	gameCtx := &app.GameContext{
		Level:        level,
		Registry:     registry,
		Scheduler:    sched,
		TimeStep:     timestep.New(tickRate),
		EventBus:     bus,
		Config:       cfg,
		Interactions: interactions,
	}

	stack := states.New()
	stack.Push(func() states.State { return app.NewPlayingState(gameCtx) })
	stack.ProcessPendingChanges()

	application := app.New(gameCtx, stack)
	simCtx, cancelSim := context.WithCancel(context.Background())
	go application.Run(simCtx)

	// Применяем overrides для fuel/recipe таблиц, если каталог существует.
	if err := block.LoadJSONOverrides("assets/blocks"); err != nil && !os.IsNotExist(err) {
		logging.Error("Ошибка загрузки block overrides: %v", err)
	}

	// === СЕТЕВЫЕ КАНАЛЫ (TCP надёжный + KCP "ненадёжный") ===
	codec, err := network.NewCodec()
	if err != nil {
		logging.Warn("Не удалось создать network codec: %v", err)
	}

	netHandler := func(peer *network.Peer, f network.Frame) ([]network.Frame, error) {
		eventType := "network.frame"
		switch f.Opcode {
		case network.OpPositionUpdate:
			eventType = "network.position_update"
		case network.OpBlockUpdate:
			eventType = "network.block_update"
		case network.OpChat:
			eventType = "network.chat"
		}
		return nil, bus.Publish(context.Background(), &eventbus.Envelope{
			ID:        fmt.Sprintf("peer-%d-%d", peer.SourceID, time.Now().UnixNano()),
			Timestamp: time.Now(),
			Source:    fmt.Sprintf("peer-%d", peer.SourceID),
			EventType: eventType,
			Payload:   f.Payload,
		})
	}

	var tcpChannel, udpChannel *network.Server
	if codec != nil {
		tcpAddr := fmt.Sprintf(":%d", cfg.Server.GetTCPPort())
		udpAddr := fmt.Sprintf(":%d", cfg.Server.GetUDPPort())

		tcpChannel = network.NewServer(network.TCPTransport{}, codec, netHandler)
		if err := tcpChannel.Start(tcpAddr); err != nil {
			logging.Warn("Не удалось запустить TCP канал: %v", err)
		} else {
			logging.Info("✅ TCP канал слушает %s", tcpAddr)
		}

		udpChannel = network.NewServer(network.KCPTransport{}, codec, netHandler)
		if err := udpChannel.Start(udpAddr); err != nil {
			logging.Warn("Не удалось запустить KCP канал: %v", err)
		} else {
			logging.Info("✅ KCP канал слушает %s", udpAddr)
		}
	}

	// === SYNC / REGIONAL NODE ===
	syncCfg := sync.SyncConfig{
		RegionID:     "region-eu-west",
		Bus:          bus,
		BatchSize:    100,
		FlushEvery:   3 * time.Second,
		UseGzipCompr: true,
	}
	if cfg.Sync.RegionID != "" {
		syncCfg.RegionID = cfg.Sync.RegionID
		if cfg.Sync.BatchSize > 0 {
			syncCfg.BatchSize = cfg.Sync.BatchSize
		}
		if cfg.Sync.FlushEvery > 0 {
			syncCfg.FlushEvery = time.Duration(cfg.Sync.FlushEvery) * time.Second
		}
		syncCfg.UseGzipCompr = cfg.Sync.UseGzipCompr
	}

	syncManager, err := sync.NewSyncManager(syncCfg)
	if err != nil {
		logging.Warn("Не удалось инициализировать SyncManager: %v", err)
	}

	batchManager := sync.NewBatchManager(bus, syncCfg.RegionID, syncCfg.BatchSize, syncCfg.FlushEvery, nil)

	regionalNode, err := regional.NewRegionalNode(regional.NodeConfig{
		RegionID:     syncCfg.RegionID,
		Level:        level,
		EventBus:     bus,
		BatchManager: batchManager,
	})
	if err != nil {
		logging.Warn("Не удалось создать RegionalNode: %v", err)
	} else if err := regionalNode.Start(context.Background()); err != nil {
		logging.Warn("Не удалось запустить RegionalNode: %v", err)
	} else {
		logging.Info("✅ RegionalNode %s запущен", syncCfg.RegionID)
	}

	// === REST API (debug/admin surface) ===
	apiIntegration, err := api.NewServerIntegration(api.IntegrationConfig{
		RestPort: restAddr,
		Registry: registry,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания REST API интеграции: %v", err)
	}
	if err := apiIntegration.Start(); err != nil {
		log.Fatalf("❌ Ошибка запуска REST API: %v", err)
	}

	logging.Info("✅ Сервер запущен: REST API http://localhost%s, health http://localhost%s/health", restAddr, restAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	cancelSim()

	if tcpChannel != nil {
		tcpChannel.Stop()
	}
	if udpChannel != nil {
		udpChannel.Stop()
	}
	if codec != nil {
		codec.Close()
	}
	if chunkCache != nil {
		if err := chunkCache.Close(); err != nil {
			logging.Error("❌ Ошибка закрытия hot cache: %v", err)
		}
	}
	if cacheInvalidator != nil {
		if err := cacheInvalidator.Close(); err != nil {
			logging.Error("❌ Ошибка закрытия cache invalidator: %v", err)
		}
	}

	if err := apiIntegration.Stop(); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	if err := level.Save(); err != nil {
		logging.Error("❌ Ошибка сохранения мира: %v", err)
	}

	if shutdownTel != nil {
		_ = shutdownTel(context.Background())
	}

	if syncManager != nil {
		syncManager.Stop()
	}

	if regionalNode != nil {
		if err := regionalNode.Stop(); err != nil {
			logging.Error("❌ Ошибка остановки RegionalNode: %v", err)
		}
	}

	logging.Info("👋 Сервер успешно остановлен")
}
