package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	BaseUrl           string
	SettingsFile      string
	ManifestDir       string
	RedisAddr         string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
