package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hookrelay/internal/aibot"
	"hookrelay/internal/bridge"
	"hookrelay/internal/config"
	"hookrelay/internal/db"
	"hookrelay/internal/dispatch"
	"hookrelay/internal/redis"
	"hookrelay/internal/scheduler"
	"hookrelay/internal/taskqueue"
	"hookrelay/internal/telegram"
	"hookrelay/internal/web"
	"hookrelay/internal/weblog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConn, err := db.NewDB(cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbConn.Close(context.Background())

	redisClient := redis.NewRedisClient(cfg.RedisAddr)

	tg := telegram.NewClient()
	defaultToken := cfg.DefaultBotToken()

	var logStore weblog.Store
	if cfg.RedisAddr != "" {
		logStore = weblog.NewRedisStore(redisClient)
	} else {
		logStore = weblog.NewMemoryStore()
	}
	recorder := weblog.NewRecorder(logStore)

	dispatcher := dispatch.NewDispatcher(tg, defaultToken)
	service := dispatch.NewService(dbConn, dispatcher, recorder)

	taskqueue.SetGlobalInstances(dbConn, tg, defaultToken)
	go taskqueue.StartWorkers(cfg.RedisAddr)

	sched := scheduler.NewScheduler(dbConn)
	sched.Start()
	if err := sched.LoadBots(); err != nil {
		log.Printf("MAIN: Failed to load scheduled bots: %v", err)
	}

	var mqttBridge *bridge.Bridge
	if cfg.MQTTBroker != "" {
		mqttBridge, err = bridge.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, service)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT: %v", err)
		}
		if err := mqttBridge.Start(); err != nil {
			log.Fatalf("Failed to start MQTT bridge: %v", err)
		}
	}

	ai := aibot.NewClient(cfg.OpenAIAPIKey)

	webServer := web.NewWebServer(dbConn, redisClient, cfg.JWTSecret, service, logStore, sched, tg, ai, defaultToken)
	go webServer.Start(":" + cfg.Port)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if mqttBridge != nil {
		mqttBridge.Stop()
	}
	sched.Stop()
	taskqueue.StopWorkers()
	log.Println("Shutdown complete")
}
