package config

import "time"

// API holds the HTTP service settings (CORE_API_*)
type API struct {
	Addr            string
	Swagger         bool
	Profiler        bool
	CORSOrigins     []string
	MaxBodyBytes    int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Signals holds the extraction settings (CORE_SIGNALS_*)
type Signals struct {
	ExcerptLimit int
	BatchWorkers int
	MaxBatch     int
	// LogFaults enables debug logging of recovered per-field faults
	LogFaults bool
}

// LoadAPI reads API settings under c (usually New().Prefix("CORE_API_"))
func LoadAPI(c Conf) API {
	return API{
		Addr:            c.MayPort("PORT", ":4000"),
		Swagger:         c.MayBool("SWAGGER", true),
		Profiler:        c.MayBool("PROFILER", false),
		CORSOrigins:     c.MayCSV("CORS_ORIGINS", []string{"*"}),
		MaxBodyBytes:    c.MayInt64("MAX_BODY_BYTES", 1<<20),
		RequestTimeout:  c.MayDuration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: c.MayDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// LoadSignals reads extraction settings under c (usually New().Prefix("CORE_SIGNALS_"))
func LoadSignals(c Conf) Signals {
	return Signals{
		ExcerptLimit: c.MayIntIn("EXCERPT_LIMIT", 200, 1, 200),
		BatchWorkers: c.MayIntIn("BATCH_WORKERS", 0, 0, 256),
		MaxBatch:     c.MayIntIn("MAX_BATCH", 100, 1, 1000),
		LogFaults:    c.MayBool("LOG_FAULTS", true),
	}
}
