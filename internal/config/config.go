// config.go
package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	MongoURI     string
	MongoDBName  string
	AuthURL      string
	CatalogURL   string
	CustomersURL string
	RabbitURL    string
	Port         string
}

func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:  getEnv("MONGO_DB_NAME", "exchange_order_db"),
		AuthURL:      getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		CatalogURL:   getEnv("CATALOG_URL", "http://host.docker.internal:3002"),
		CustomersURL: getEnv("CUSTOMERS_URL", "http://host.docker.internal:3003"),
		RabbitURL:    getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:         getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
