package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Redis        Redis
	JWT          JWT
	QuestionBank QuestionBank
	GeminiApiKey string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type JWT struct {
	Secret      string
	ExpiryHours int
}

// QuestionBank holds the per-section question counts used to default and
// validate TotalQuestions when a section is created.
type QuestionBank struct {
	AptitudeQuestionCount int
	ValuesQuestionCount   int
	PersonalQuestionCount int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("JWT_EXPIRY_HOURS", 72)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("APTITUDE_QUESTION_COUNT", 30)
	viper.SetDefault("VALUES_QUESTION_COUNT", 20)
	viper.SetDefault("PERSONAL_QUESTION_COUNT", 25)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.JWT.Secret = viper.GetString("JWT_SECRET")
	config.JWT.ExpiryHours = viper.GetInt("JWT_EXPIRY_HOURS")

	config.QuestionBank.AptitudeQuestionCount = viper.GetInt("APTITUDE_QUESTION_COUNT")
	config.QuestionBank.ValuesQuestionCount = viper.GetInt("VALUES_QUESTION_COUNT")
	config.QuestionBank.PersonalQuestionCount = viper.GetInt("PERSONAL_QUESTION_COUNT")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
