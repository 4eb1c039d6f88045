package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Store     StoreConfig     `json:"store"`
	Express   ExpressConfig   `json:"express"`
	Stock     StockConfig     `json:"stock"`
	Optimizer OptimizerConfig `json:"optimizer"`
	Bank      BankConfig      `json:"bank"`
	Dispatch  DispatchConfig  `json:"dispatch"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// StoreConfig identifies this node's store and the sibling stores of the
// enterprise.
type StoreConfig struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Location  string       `json:"location"`
	Checkouts []string     `json:"checkouts"`
	Peers     []PeerConfig `json:"peers"`
}

type PeerConfig struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	BaseURL  string `json:"base_url"`
}

type ExpressConfig struct {
	EvaluationWindowSeconds int     `json:"evaluation_window_seconds"`
	EvaluationPeriodSeconds int     `json:"evaluation_period_seconds"`
	Threshold               float64 `json:"threshold"`
	ItemLimit               int     `json:"item_limit"`
}

type StockConfig struct {
	CheckIntervalSeconds int `json:"check_interval_seconds"`
}

type OptimizerConfig struct {
	Command        string   `json:"command"`
	Args           []string `json:"args"`
	Prompt         string   `json:"prompt"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type BankConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type DispatchConfig struct {
	ReservationTimeoutSeconds int `json:"reservation_timeout_seconds"`
	StockQueryTimeoutSeconds  int `json:"stock_query_timeout_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Express.EvaluationWindowSeconds == 0 {
		c.Express.EvaluationWindowSeconds = 3600
	}
	if c.Express.EvaluationPeriodSeconds == 0 {
		c.Express.EvaluationPeriodSeconds = 60
	}
	if c.Express.Threshold == 0 {
		c.Express.Threshold = 0.5
	}
	if c.Express.ItemLimit == 0 {
		c.Express.ItemLimit = 8
	}
	if c.Stock.CheckIntervalSeconds == 0 {
		c.Stock.CheckIntervalSeconds = 300
	}
	if c.Optimizer.Prompt == "" {
		c.Optimizer.Prompt = "ampl:"
	}
	if c.Optimizer.TimeoutSeconds == 0 {
		c.Optimizer.TimeoutSeconds = 30
	}
	if c.Bank.TimeoutSeconds == 0 {
		c.Bank.TimeoutSeconds = 5
	}
	if c.Dispatch.ReservationTimeoutSeconds == 0 {
		c.Dispatch.ReservationTimeoutSeconds = 5
	}
	if c.Dispatch.StockQueryTimeoutSeconds == 0 {
		c.Dispatch.StockQueryTimeoutSeconds = 5
	}
}

func (c ExpressConfig) EvaluationWindow() time.Duration {
	return time.Duration(c.EvaluationWindowSeconds) * time.Second
}

func (c ExpressConfig) EvaluationPeriod() time.Duration {
	return time.Duration(c.EvaluationPeriodSeconds) * time.Second
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
