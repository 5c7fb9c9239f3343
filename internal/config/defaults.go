package config

import "time"

const defaultPort = 8080

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var defaultLog = Log{
	Level:   "info",
	Backend: "slog",
}

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "food_dispatch",
}

var defaultKafka = Kafka{
	GroupID:     "food-dispatch",
	StatusTopic: "order.status",
	NotifyTopic: "order.placed",
}

var defaultDelivery = Delivery{
	SweepInterval:    time.Minute,
	SweepConcurrency: 8,
	ETAMin:           3,
	ETAMax:           10,
	OperationTimeout: 3 * time.Second,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultLog returns the default logging settings.
func DefaultLog() Log {
	return defaultLog
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default kafka settings. Brokers are empty, which disables kafka.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultDelivery returns the default delivery settings.
func DefaultDelivery() Delivery {
	return defaultDelivery
}
