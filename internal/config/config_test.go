package config

import (
	"strings"
	"testing"
)

func validYAML() []byte {
	return []byte(`
line_id: line-07
db:
  host: db.floor.local
  port: 3307
  user: floor
  password: secret
  database: stitchline_prod
dashboard:
  port: 9090
metrics:
  schedule: "*/5 * * * *"
notify:
  slack:
    bot_token: xoxb-test
    channel: C123
verify:
  mode: plain
`)
}

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse(validYAML())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LineID != "line-07" {
		t.Errorf("LineID = %q", cfg.LineID)
	}
	if cfg.DB.Host != "db.floor.local" || cfg.DB.Port != 3307 {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d", cfg.Dashboard.Port)
	}
	if cfg.Metrics.Schedule != "*/5 * * * *" {
		t.Errorf("Metrics.Schedule = %q", cfg.Metrics.Schedule)
	}
	if cfg.Notify.Slack.Channel != "C123" {
		t.Errorf("Notify.Slack.Channel = %q", cfg.Notify.Slack.Channel)
	}
	if cfg.Verify.Mode != "plain" {
		t.Errorf("Verify.Mode = %q", cfg.Verify.Mode)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("line_id: line-01\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DB.Host != "127.0.0.1" || cfg.DB.Port != 3306 {
		t.Errorf("DB defaults = %+v", cfg.DB)
	}
	if cfg.DB.User != "stitchline" || cfg.DB.Database != "stitchline" {
		t.Errorf("DB defaults = %+v", cfg.DB)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d", cfg.Dashboard.Port)
	}
	if cfg.Metrics.PollSeconds != 30 {
		t.Errorf("Metrics.PollSeconds = %d", cfg.Metrics.PollSeconds)
	}
	if cfg.Verify.Mode != "hashed" {
		t.Errorf("Verify.Mode = %q", cfg.Verify.Mode)
	}
}

func TestParse_MissingLineID(t *testing.T) {
	_, err := Parse([]byte("db:\n  host: x\n"))
	if err == nil {
		t.Fatal("expected error for missing line_id")
	}
	if !strings.Contains(err.Error(), "line_id is required") {
		t.Errorf("error = %q", err)
	}
}

func TestParse_BadVerifyMode(t *testing.T) {
	_, err := Parse([]byte("line_id: line-01\nverify:\n  mode: md5\n"))
	if err == nil {
		t.Fatal("expected error for bad verify mode")
	}
	if !strings.Contains(err.Error(), "verify.mode") {
		t.Errorf("error = %q", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse([]byte("{not yaml"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q", err)
	}
}
