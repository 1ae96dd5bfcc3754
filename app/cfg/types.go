package cfg

type Cfg struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	Port        string
	BaseUrl     string
	WorkerCount int

	BotToken       string
	VKServiceToken string
	RedisAddr      string
	MatcherFile    string
	SearchEndpoint string

	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
