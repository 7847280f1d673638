package config

import "time"

func SetDefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			SiteURL:         "http://localhost:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "postgres",
		},
		Database: DatabaseConfig{
			Host:              "localhost",
			Port:              5432,
			User:              "postgres",
			Password:          "",
			Name:              "cryptocart",
			SSLMode:           "require",
			MaxOpenConns:      10,
			MaxIdleConns:      5,
			ConnMaxLifetime:   1 * time.Hour,
			ConnMaxIdleTime:   15 * time.Minute,
			HealthCheckPeriod: 1 * time.Minute,
		},
		Logger: LoggerConfig{
			Level:        "info",
			Format:       "json",
			Output:       "stdout",
			EnableColors: false,
		},
		DebugLog: DebugLogConfig{
			Enabled:    false,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		},
		Crypto: CryptoConfig{
			Algorithm: "aes_gcm",
		},
		Store: StoreConfig{
			TaxEnabled:       false,
			PricesIncludeTax: false,
			UploadsDir:       "uploads",
			PaymentMethods:   []string{"bacs", "cheque", "cod"},
		},
		Gateway: GatewayConfig{
			CheckoutURL: "https://www.coinpayments.net/index.php",
		},
		Admin: AdminConfig{
			Username: "admin",
			NonceTTL: 24 * time.Hour,
		},
		Mail: MailConfig{
			Port:     "587",
			FromName: "CryptoCart Lite",
			TLSMode:  "starttls",
		},
	}
}
