package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"primestore/handlers"
	"primestore/internal/auth"
	"primestore/internal/cart"
	"primestore/internal/consul"
	"primestore/internal/orders"
	"primestore/internal/payments"
	"primestore/internal/products"
	"primestore/internal/stores/kafka"
	"primestore/internal/stores/postgres"
	"primestore/internal/users"
	"primestore/pkg/logkey"

	"github.com/joho/godotenv"
)

func main() {
	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	keys, err := loadAuthKeys()
	if err != nil {
		return err
	}

	db, err := postgres.OpenDB()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	usersConf, err := users.NewConf(db)
	if err != nil {
		return err
	}
	productsConf, err := products.NewConf(db)
	if err != nil {
		return err
	}
	cartConf, err := cart.NewConf(db)
	if err != nil {
		return err
	}
	ordersConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}

	paymentsConf := payments.NewConf(os.Getenv("STRIPE_SECRET_KEY"))
	if !paymentsConf.Configured() {
		slog.Warn("STRIPE_SECRET_KEY not set, payment intents disabled")
	}

	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer kafkaConf.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, eventing disabled")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("CONSUL_HTTP_ADDR") != "" {
		deregister, err := registerWithConsul(port)
		if err != nil {
			// Registration is best effort; the storefront serves without it.
			slog.Error("consul registration failed", slog.String(logkey.ERROR, err.Error()))
		} else {
			defer deregister()
		}
	}

	r := handlers.API(keys, usersConf, productsConf, cartConf, ordersConf, paymentsConf, kafkaConf)

	slog.Info("starting server", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		return fmt.Errorf("running server: %w", err)
	}
	return nil
}

func loadAuthKeys() (*auth.Keys, error) {
	privatePath := os.Getenv("JWT_PRIVATE_KEY_PATH")
	if privatePath == "" {
		privatePath = "private.pem"
	}
	publicPath := os.Getenv("JWT_PUBLIC_KEY_PATH")
	if publicPath == "" {
		publicPath = "pubkey.pem"
	}

	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	return auth.NewKeysFromPEM(privatePEM, publicPEM)
}

func registerWithConsul(port string) (func(), error) {
	client, err := consul.NewClient()
	if err != nil {
		return nil, err
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("parsing APP_PORT: %w", err)
	}

	address := os.Getenv("SERVICE_ADDRESS")
	if address == "" {
		address = "localhost"
	}
	serviceID := fmt.Sprintf("primestore-%s", port)
	if err := consul.RegisterService(client, "primestore", serviceID, address, portInt); err != nil {
		return nil, err
	}

	return func() {
		if err := consul.DeregisterService(client, serviceID); err != nil {
			slog.Error("consul deregistration failed", slog.String(logkey.ERROR, err.Error()))
		}
	}, nil
}
