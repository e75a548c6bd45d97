package config

// Tree defaults.
const (
	DefaultTreeCapacity  = 100
	DefaultTreeHibernate = false
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Output defaults.
const (
	DefaultOutputFormat = OutputTable
	DefaultOutputColor  = true
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
	DefaultEnvironment = "development"
)

// Soak defaults.
const (
	DefaultSoakOperations = 10000
	DefaultSoakValueRange = 1000
	DefaultSoakSeed       = 1
)
