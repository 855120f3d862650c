package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"chirp/api/middleware"
	"chirp/api/routes"
	"chirp/config"
	"chirp/db"
	"chirp/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	// Redis нужен лимитеру, кешу ленты и кешу сессий; без него работаем
	// в деградированном режиме на одном процессе
	if err := services.InitRedis(); err != nil {
		log.Printf("WARN: Redis initialization failed: %v", err)
	}
	defer services.CloseRedis()

	services.InitLimiters()

	if err := services.InitIdentity(); err != nil {
		panic("Failed to initialize identity provider client: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// RabbitMQ опционален: без него события постов уходят в WebSocket напрямую
	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("WARN: RabbitMQ initialization failed: %v", err)
	} else {
		defer services.CloseRabbitMQ()
		if err := services.StartPostEventConsumer(ctx, "chirp_ws_push"); err != nil {
			log.Printf("WARN: failed to start post event consumer: %v", err)
		}
	}

	router := gin.Default()
	router.Use(middleware.PrometheusMiddleware("chirp"))

	routes.PublicApi(router)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
