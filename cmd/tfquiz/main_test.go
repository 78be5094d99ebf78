package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tfquiz/internal/config"
	"github.com/verte-zerg/tfquiz/internal/model"
	"github.com/verte-zerg/tfquiz/internal/stats"
)

func parseRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newRootCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	return cmd
}

func TestMergeConfigDefaults(t *testing.T) {
	cmd := parseRoot(t)
	cfg, err := mergeConfig(cmd, config.FileConfig{})
	if err != nil {
		t.Fatalf("mergeConfig failed: %v", err)
	}
	if cfg.Count != defaultCount || cfg.Type != model.TypeMeme || !cfg.History {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Timeout != 0 || cfg.TTSLang != "ko-KR" || cfg.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected service defaults %+v", cfg)
	}
}

func TestMergeConfigFlagsOverrideFile(t *testing.T) {
	count := 9
	qtype := "aiSettings"
	baseURL := "http://quiz.example:9000"
	timeout := "15s"
	enabled := false
	fileCfg := config.FileConfig{
		Quiz:    config.QuizConfig{Count: &count, Type: &qtype},
		Service: config.ServiceConfig{BaseURL: &baseURL, Timeout: &timeout},
		History: config.HistoryConfig{Enabled: &enabled},
	}

	cmd := parseRoot(t, "--count", "3", "--timeout", "2s")
	cfg, err := mergeConfig(cmd, fileCfg)
	if err != nil {
		t.Fatalf("mergeConfig failed: %v", err)
	}
	if cfg.Count != 3 || cfg.Timeout != 2*time.Second {
		t.Fatalf("flags should win, got count=%d timeout=%s", cfg.Count, cfg.Timeout)
	}
	if cfg.Type != model.TypeAI || cfg.BaseURL != baseURL || cfg.History {
		t.Fatalf("file values should apply to unset flags, got %+v", cfg)
	}
}

func TestMergeConfigEnvOverridesFile(t *testing.T) {
	count := 9
	fileCfg := config.FileConfig{Quiz: config.QuizConfig{Count: &count}}
	env := map[string]string{config.EnvCount: "4", config.EnvTTSLang: "en-US"}
	fileCfg, err := config.ApplyEnv(fileCfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	cfg, err := mergeConfig(parseRoot(t), fileCfg)
	if err != nil {
		t.Fatalf("mergeConfig failed: %v", err)
	}
	if cfg.Count != 4 || cfg.TTSLang != "en-US" {
		t.Fatalf("env should override file, got %+v", cfg)
	}
}

func TestMergeConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
		file config.FileConfig
		want string
	}{
		{name: "count", args: []string{"--count", "0"}, want: "--count must be > 0"},
		{name: "type", args: []string{"--type", "quiz"}, want: "invalid --type value"},
		{name: "base-url", args: []string{"--base-url", "localhost"}, want: "--base-url must be an http(s) URL"},
		{name: "timeout", args: []string{"--timeout", "-1s"}, want: "--timeout must be >= 0"},
		{name: "file timeout", file: config.FileConfig{Service: config.ServiceConfig{Timeout: strPtr("soon")}}, want: "invalid timeout value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mergeConfig(parseRoot(t, tc.args...), tc.file)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyDurationConfigZero(t *testing.T) {
	cmd := parseRoot(t)
	target := 5 * time.Second
	if err := applyDurationConfig(cmd, "timeout", &target, strPtr("0")); err != nil {
		t.Fatalf("applyDurationConfig failed: %v", err)
	}
	if target != 0 {
		t.Fatalf("expected zero timeout, got %s", target)
	}
}

var commentedKey = regexp.MustCompile(`(?m)^# ([a-z-]+ = )`)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("commented template should decode: %v", err)
	}
	if cfg.Quiz.Count != nil {
		t.Fatalf("commented template should set nothing")
	}

	enabled := commentedKey.ReplaceAllString(defaultConfigTemplate(), "$1")
	if err := os.WriteFile(path, []byte(enabled), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = config.LoadConfig(path)
	if err != nil {
		t.Fatalf("uncommented template should decode: %v", err)
	}
	if cfg.Quiz.Count == nil || *cfg.Quiz.Count != defaultCount {
		t.Fatalf("expected count %d, got %v", defaultCount, cfg.Quiz.Count)
	}
	if cfg.Speech.Player == nil || cfg.History.Enabled == nil || !*cfg.History.Enabled {
		t.Fatalf("expected speech and history sections, got %+v", cfg)
	}
	merged, err := mergeConfig(parseRoot(t), cfg)
	if err != nil {
		t.Fatalf("template values should validate: %v", err)
	}
	if merged.Timeout != 0 {
		t.Fatalf("expected zero timeout, got %s", merged.Timeout)
	}
}

func TestBuildHistoryConfig(t *testing.T) {
	historyType, historySince, historyLast, historyCurveWindow = "meme", "2026-03-01", 4, 5
	t.Cleanup(func() {
		historyType, historySince, historyLast, historyCurveWindow = "", "", 0, defaultCurveWindow
	})
	cfg, err := buildHistoryConfig()
	if err != nil {
		t.Fatalf("buildHistoryConfig failed: %v", err)
	}
	if cfg.Type != "meme" || cfg.Since == nil || cfg.Since.Day() != 1 || cfg.Last != 4 || cfg.CurveWindow != 5 {
		t.Fatalf("unexpected history config %+v", cfg)
	}

	historyType = "trivia"
	if _, err := buildHistoryConfig(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	historyType, historySince = "", "yesterday"
	if _, err := buildHistoryConfig(); err == nil {
		t.Fatalf("expected error for bad date")
	}
	historySince, historyCurveWindow = "", 0
	if _, err := buildHistoryConfig(); err == nil {
		t.Fatalf("expected error for zero curve window")
	}
}

func sampleReport() stats.Report {
	ended := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	return stats.Report{
		Sessions: []model.SessionAggregate{
			{SessionID: 1, UUID: "u1", EndedAt: ended, Type: "meme", Questions: 2, Average: 30, Label: "T-leaning"},
		},
		WindowSessionIDs: []int64{1},
		Answers: []model.AnswerRow{
			{SessionID: 1, EndedAt: ended, Position: 1, Question: "친구가 울면?", Answer: "왜?", Score: 10},
			{SessionID: 1, EndedAt: ended, Position: 2, Question: "q2", Answer: "a2", Score: 50},
		},
		CurveWindow: 3,
	}
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, sampleReport(), "json"); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	var decoded stats.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded.Answers) != 2 || decoded.Sessions[0].Label != "T-leaning" {
		t.Fatalf("unexpected decoded report %+v", decoded)
	}
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, sampleReport(), "yaml"); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded["curve_window"] != 3 {
		t.Fatalf("expected curve_window 3, got %v", decoded["curve_window"])
	}
	answers, ok := decoded["answers"].([]any)
	if !ok || len(answers) != 2 {
		t.Fatalf("expected two answers in yaml, got %v", decoded["answers"])
	}
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, sampleReport(), "text"); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 1", "Results by label", "Score Trend", "Answers (Windowed)", "Strong T"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report, got %q", want, out)
		}
	}

	buf.Reset()
	if err := writeReport(&buf, stats.Report{}, "text"); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected empty report %q", buf.String())
	}
}

func strPtr(s string) *string {
	return &s
}
