package server

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ConfigPath string
	Profile    string
	Verbose    bool
	ApiGinMode string

	Ip   string
	Port string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// roster fixture, optional
	RosterPath string

	// chat send limiter, per caller
	ChatRate  float64
	ChatBurst int

	//kc, disabled while AuthAddress or Realm is empty
	AuthAddress  string
	Realm        string
	Audience     string
	ClientID     string
	ClientSecret string
	RosterSync   bool
}

func loadConfig(path string) Config {
	if err := godotenv.Load(path); err != nil {
		log.Printf("Failed to load the config file at %s, using default ones...", path)
	}

	s := strings.Split(path, "/")
	config := Config{
		ConfigPath: s[len(s)-1],
		Profile:    getEnv("PROFILE", "baremetal"),
		Verbose:    getBoolEnv("VERBOSE", "true"),
		ApiGinMode: getEnv("GIN_MODE", "debug"),

		Ip:             getEnv("IP", "localhost"),
		Port:           getEnv("PORT", "5050"),
		AllowedOrigins: getEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvFields("ALLOW_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvFields("ALLOW_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-User-ID"}),

		RosterPath: getEnv("ROSTER_PATH", ""),

		ChatRate:  getFloatEnv("CHAT_RATE", 5),
		ChatBurst: getIntEnv("CHAT_BURST", 10),

		AuthAddress:  getEnv("KC_ADDRESS", ""),
		Realm:        getEnv("KC_REALM", ""),
		Audience:     getEnv("KC_AUDIENCE", ""),
		ClientID:     getEnv("KC_CLIENT", "pms-collab"),
		ClientSecret: getEnv("KC_CLIENT_SECRET", ""),
		RosterSync:   getBoolEnv("KC_ROSTER_SYNC", "false"),
	}

	if config.Verbose {
		log.Print(config.toString())
	}

	return config
}

func (cfg Config) keycloakEnabled() bool {
	return cfg.AuthAddress != "" && cfg.Realm != ""
}

func getEnv(env, fallback string) string {
	if value, exists := os.LookupEnv(env); exists {
		return value
	}

	return fallback
}

func getEnvFields(env string, fallback []string) []string {
	if value, exists := os.LookupEnv(env); exists {
		fields := strings.Split(strings.TrimSpace(value), ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		return fields
	}

	return fallback
}

func getBoolEnv(env, fallback string) bool {
	if value, exists := os.LookupEnv(env); exists {
		return strings.ToLower(value) == "true"
	}

	return strings.ToLower(fallback) == "true"
}

func getIntEnv(env string, fallback int) int {
	if value, exists := os.LookupEnv(env); exists {
		int_value, err := strconv.Atoi(value)
		if err == nil {
			return int_value
		}
	}

	return fallback
}

func getFloatEnv(env string, fallback float64) float64 {
	if value, exists := os.LookupEnv(env); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}

	return fallback
}

func (cfg *Config) toString() string {
	var strBuilder strings.Builder

	reflectedValues := reflect.ValueOf(cfg).Elem()
	reflectedTypes := reflect.TypeOf(cfg).Elem()

	strBuilder.WriteString(fmt.Sprintf("[CFG]CONFIGURATION: %s\n", cfg.ConfigPath))

	for i := 0; i < reflectedValues.NumField(); i++ {
		fieldName := reflectedTypes.Field(i).Name
		fieldValue := reflectedValues.Field(i).Interface()

		if strings.Contains(fieldName, "Secret") {
			if s, ok := fieldValue.(string); ok && s != "" {
				fieldValue = "****"
			}
		}

		strBuilder.WriteString("[CFG]")
		if i < 9 {
			strBuilder.WriteString(fmt.Sprintf("%d.  ", i+1))
		} else {
			strBuilder.WriteString(fmt.Sprintf("%d. ", i+1))
		}
		if len(fieldName) <= 6 {
			strBuilder.WriteString(fmt.Sprintf("%v\t\t\t\t\t-> %v\n", fieldName, fieldValue))
		} else if len(fieldName) <= 14 {
			strBuilder.WriteString(fmt.Sprintf("%v\t\t\t\t-> %v\n", fieldName, fieldValue))
		} else {
			strBuilder.WriteString(fmt.Sprintf("%v\t\t\t-> %v\n", fieldName, fieldValue))
		}
	}

	return strBuilder.String()
}
