package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"storefront-service/services"

	aws_pkg "storefront-service/pkg/aws"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	// Redis catalog cache; empty disables caching
	RedisURL string

	// Kafka order events
	KafkaBrokers    []string
	KafkaOrderTopic string

	// SNS topic for review moderation notifications
	ReviewSNSTopicARN string

	// Placeholder profile values for first-contact customers
	CustomerDefaults services.CustomerDefaults
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8085"),
		PostgresUser:      os.Getenv("POSTGRES_USER"),
		PostgresPassword:  os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:        os.Getenv("POSTGRES_DB"),
		PostgresHost:      os.Getenv("POSTGRES_HOST"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:   getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:  getEnv("POSTGRES_TIMEZONE", "UTC"),
		RedisURL:          os.Getenv("REDIS_URL"),
		KafkaOrderTopic:   getEnv("KAFKA_ORDER_TOPIC", "storefront.orders"),
		ReviewSNSTopicARN: os.Getenv("REVIEW_SNS_TOPIC_ARN"),
		CustomerDefaults: services.CustomerDefaults{
			FirstName: getEnv("CUSTOMER_DEFAULT_FIRST_NAME", "FirstName"),
			LastName:  getEnv("CUSTOMER_DEFAULT_LAST_NAME", "LastName"),
			Email:     getEnv("CUSTOMER_DEFAULT_EMAIL", "example@example.com"),
			Phone:     getEnv("CUSTOMER_DEFAULT_PHONE", "00000000000"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	// Override DB credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)

			if creds, err := sm.GetCredentials(context.Background(), "storefront/DB_CREDENTIALS"); err == nil {
				// Exported back to the environment so the database
				// package sees the overridden credentials.
				if v, ok := creds["POSTGRES_USER"]; ok && v != "" {
					cfg.PostgresUser = v
					os.Setenv("POSTGRES_USER", v)
				}
				if v, ok := creds["POSTGRES_PASSWORD"]; ok && v != "" {
					cfg.PostgresPassword = v
					os.Setenv("POSTGRES_PASSWORD", v)
				}
				if v, ok := creds["POSTGRES_DB"]; ok && v != "" {
					cfg.PostgresDB = v
					os.Setenv("POSTGRES_DB", v)
				}
				if v, ok := creds["POSTGRES_HOST"]; ok && v != "" {
					cfg.PostgresHost = v
					os.Setenv("POSTGRES_HOST", v)
				}
				if v, ok := creds["POSTGRES_PORT"]; ok && v != "" {
					cfg.PostgresPort = v
					os.Setenv("POSTGRES_PORT", v)
				}
			}
		}
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
