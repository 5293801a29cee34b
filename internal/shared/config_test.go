package shared_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"review_insights/internal/shared"
)

var configEnvVars = []string{
	"INSIGHTS_CONFIG", "INSIGHTS_HTTP_ADDR", "INSIGHTS_MIN_MENTIONS", "INSIGHTS_OPPORTUNITIES",
	"INSIGHTS_ANALYSIS_WORKERS", "INSIGHTS_CACHE_TTL_SECONDS", "INSIGHTS_SOURCE_RPS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "insights.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestConfigLoad(t *testing.T) {
	convey.Convey("Given the config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When no file or env is set", func() {
			cfg, err := shared.Load()

			convey.Convey("Then compiled defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MinMentions, convey.ShouldEqual, 5)
				convey.So(cfg.MaxRecommendations, convey.ShouldEqual, 3)
				convey.So(cfg.Opportunities, convey.ShouldBeTrue)
				convey.So(cfg.CacheTTL().Minutes(), convey.ShouldEqual, 15.0)
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			path := writeConfigFile(t, `
http_addr: ":9090"
min_mentions: 2
opportunities: false
apps:
  CBE: com.example.cbe
field_aliases:
  text: [comment_body]
`)
			_ = os.Setenv("INSIGHTS_CONFIG", path)
			cfg, err := shared.Load()

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MinMentions, convey.ShouldEqual, 2)
				convey.So(cfg.Opportunities, convey.ShouldBeFalse)
				convey.So(cfg.Apps["CBE"], convey.ShouldEqual, "com.example.cbe")
				convey.So(cfg.FieldAliases["text"], convey.ShouldResemble, []string{"comment_body"})
			})

			convey.Convey("And env vars override the file", func() {
				_ = os.Setenv("INSIGHTS_MIN_MENTIONS", "7")
				_ = os.Setenv("INSIGHTS_SOURCE_RPS", "2.5")
				cfg, err := shared.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinMentions, convey.ShouldEqual, 7)
				convey.So(cfg.SourceRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":9090")
			})
		})

		convey.Convey("When the threshold is invalid", func() {
			_ = os.Setenv("INSIGHTS_MIN_MENTIONS", "0")
			_, err := shared.Load()

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, shared.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("INSIGHTS_CONFIG", "/nonexistent/insights.yaml")
			_, err := shared.Load()

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, shared.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
