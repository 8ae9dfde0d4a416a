package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configVars = []string{
	"APP_ENV", "APP_PORT", "APP_HOST", "LOG_LEVEL", "JWT_SECRET", "DATABASE_URL",
	"DB_DRIVER", "DB_PATH", "PAGE_SIZE", "TOKEN_TTL_HOURS", "MEDIA_ROOT", "MEDIA_URL",
	"CORS_ALLOWED_ORIGINS",
}

func cleanupTestEnv() {
	for _, v := range configVars {
		os.Unsetenv(v)
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			envValue:     "",
			expected:     "default_value",
		},
		{
			name:         "should return empty string default",
			key:          "EMPTY_KEY",
			defaultValue: "",
			envValue:     "",
			expected:     "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			} else {
				os.Unsetenv(tt.key)
			}

			result := GetEnvWithDefault(tt.key, tt.defaultValue)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	os.Setenv("TEST_INT", "42")
	os.Setenv("TEST_BAD_INT", "forty-two")
	os.Setenv("TEST_BOOL", "true")
	defer func() {
		os.Unsetenv("TEST_INT")
		os.Unsetenv("TEST_BAD_INT")
		os.Unsetenv("TEST_BOOL")
	}()

	assert.Equal(t, 42, GetEnvAsType("TEST_INT", 1))
	assert.Equal(t, 7, GetEnvAsType("TEST_BAD_INT", 7))
	assert.Equal(t, true, GetEnvAsType("TEST_BOOL", false))
	assert.Equal(t, "fallback", GetEnvAsType("TEST_MISSING", "fallback"))
}

func TestLoadConfig(t *testing.T) {
	t.Run("successful config load with all env vars", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()
		os.Setenv("APP_PORT", "9000")
		os.Setenv("APP_HOST", "0.0.0.0")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("JWT_SECRET", "super_secret_jwt_key")
		os.Setenv("DB_DRIVER", "postgres")
		os.Setenv("DATABASE_URL", "postgres://foodgram:pw@db:5432/foodgram")
		os.Setenv("PAGE_SIZE", "10")
		os.Setenv("TOKEN_TTL_HOURS", "2")
		os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://foodgram.example")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, 10, config.PageSize)
		assert.Equal(t, 2*time.Hour, config.TokenTTL)
		assert.Equal(t, []string{"http://localhost:3000", "https://foodgram.example"}, config.CORSAllowedOrigins)

		dbConfig := config.Database()
		assert.Equal(t, "postgres", dbConfig.Driver)
		assert.Equal(t, "postgres://foodgram:pw@db:5432/foodgram", dbConfig.DSN())
	})

	t.Run("should fail with invalid port", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("APP_PORT", "not_a_number")
		defer cleanupTestEnv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail with invalid database url", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("DATABASE_URL", "not a url")
		defer cleanupTestEnv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should require jwt secret in production", func(t *testing.T) {
		cleanupTestEnv()
		os.Setenv("APP_ENV", "production")
		defer cleanupTestEnv()

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		cleanupTestEnv()
		defer cleanupTestEnv()

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, "foodgram.sqlite", config.DBPath)
		assert.Equal(t, 6, config.PageSize)
		assert.Equal(t, 24*time.Hour, config.TokenTTL)
		assert.Equal(t, "/media/", config.MediaURL)
		assert.Equal(t, []string{"*"}, config.CORSAllowedOrigins)
	})
}

func TestConfigStringMasksSecrets(t *testing.T) {
	config := &Config{
		DBPassword:  "db-password",
		JWTSecret:   "jwt-secret",
		DatabaseURL: "postgres://foodgram:url-password@db:5432/foodgram",
	}

	s := config.String()

	assert.NotContains(t, s, "db-password")
	assert.NotContains(t, s, "jwt-secret")
	assert.NotContains(t, s, "url-password")
	assert.Contains(t, s, "foodgram")
}

func TestLevelForEnvironment(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, LevelForEnvironment("development"))
	assert.Equal(t, logrus.ErrorLevel, LevelForEnvironment("production"))
	assert.Equal(t, logrus.InfoLevel, LevelForEnvironment("staging"))
}

func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
