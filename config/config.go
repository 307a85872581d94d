package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del sweeper.
type Config struct {
	Sweep  SweepConfig  `yaml:"sweep"`
	Grid   GridConfig   `yaml:"grid"`
	Data   DataConfig   `yaml:"data"`
	Report ReportConfig `yaml:"report"`
	Log    LogConfig    `yaml:"log"`
}

// SweepConfig controla el comportamiento del sweep.
type SweepConfig struct {
	Workers    int    `yaml:"workers"`     // 0 → runtime.NumCPU()
	TopK       int    `yaml:"top_k"`       // tamaño del leaderboard
	BarSeconds int    `yaml:"bar_seconds"` // duración de una observación
	Policy     string `yaml:"policy"`      // choose_first | prefer:<estrategia>
}

// GridConfig define la rejilla de candidatos a evaluar.
type GridConfig struct {
	Strategy    string               `yaml:"strategy"`    // "breakout", "counter" o "breakout+counter"
	Instruments []string             `yaml:"instruments"`
	From        time.Time            `yaml:"from"`
	To          time.Time            `yaml:"to"`
	Params      map[string][]float64 `yaml:"params"`
}

// DataConfig controla de dónde vienen las observaciones de mercado.
type DataConfig struct {
	Source  string `yaml:"source"`   // csv | http
	CSVDir  string `yaml:"csv_dir"`  // directorio de fixtures para source: csv
	HTTPURL string `yaml:"http_url"` // base URL del servicio para source: http
}

// ReportConfig controla dónde se persisten los resultados.
type ReportConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, vacío → sin persistencia
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Bar devuelve la duración de una observación como time.Duration.
func (c *Config) Bar() time.Duration {
	return time.Duration(c.Sweep.BarSeconds) * time.Second
}

func (c *Config) validate() error {
	if c.Grid.Strategy == "" {
		return fmt.Errorf("grid.strategy is required")
	}
	if len(c.Grid.Instruments) == 0 {
		return fmt.Errorf("grid.instruments is required")
	}
	if !c.Grid.To.After(c.Grid.From) {
		return fmt.Errorf("grid.to must be after grid.from")
	}
	switch c.Data.Source {
	case "csv":
		if c.Data.CSVDir == "" {
			return fmt.Errorf("data.csv_dir is required for source csv")
		}
	case "http":
		if c.Data.HTTPURL == "" {
			return fmt.Errorf("data.http_url is required for source http")
		}
	default:
		return fmt.Errorf("unknown data.source %q", c.Data.Source)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SWEEP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sweep.Workers = n
		}
	}
	if v := os.Getenv("REPORT_DSN"); v != "" {
		cfg.Report.DSN = v
	}
	if v := os.Getenv("HISTDATA_URL"); v != "" {
		cfg.Data.HTTPURL = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Sweep.TopK <= 0 {
		cfg.Sweep.TopK = 25
	}
	if cfg.Sweep.BarSeconds <= 0 {
		cfg.Sweep.BarSeconds = 60
	}
	if cfg.Sweep.Policy == "" {
		cfg.Sweep.Policy = "choose_first"
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = "csv"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
