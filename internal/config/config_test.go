package config

import "testing"

func TestIsChatAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []int64
		chatID  int64
		want    bool
	}{
		{name: "empty list admits anyone", allowed: nil, chatID: 12345, want: true},
		{name: "empty list admits negative ids", allowed: nil, chatID: -100123, want: true},
		{name: "member admitted", allowed: []int64{1, 2, 3}, chatID: 2, want: true},
		{name: "non-member rejected", allowed: []int64{1, 2, 3}, chatID: 4, want: false},
		{name: "group chat id admitted", allowed: []int64{-100200300}, chatID: -100200300, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Telegram: TelegramConfig{AllowedChatIDs: tt.allowed}}
			if got := cfg.IsChatAllowed(tt.chatID); got != tt.want {
				t.Fatalf("IsChatAllowed(%d) = %v, want %v", tt.chatID, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Telegram:  TelegramConfig{Token: "tok"},
			RateLimit: RateLimitConfig{Requests: 10, WindowSeconds: 60},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Telegram.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing telegram token should fail validation")
	}

	cfg = base()
	cfg.RateLimit.Requests = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("non-positive rate limit should fail validation")
	}

	cfg = base()
	cfg.RateLimit.WindowSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative window should fail validation")
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 8080}}
	if got := cfg.ServerAddress(); got != "0.0.0.0:8080" {
		t.Fatalf("ServerAddress = %q", got)
	}
}
