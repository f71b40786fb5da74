package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nephroworks/cdss/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no config file and no env overrides", t, func() {
		os.Unsetenv("CDSS_CONFIG")
		os.Unsetenv("CDSS_ADDR")
		os.Unsetenv("CDSS_MODEL_PATH")

		cfg, err := config.Load(context.Background())

		Convey("Then defaults are applied", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Worksheet, ShouldEqual, "Sheet1")
			So(cfg.RecentCapacity, ShouldEqual, 256)
			So(cfg.SpreadsheetID, ShouldBeEmpty)
			So(cfg.Baseline["ph_level"], ShouldEqual, 7.4)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	Convey("Given env overrides", t, func() {
		os.Unsetenv("CDSS_CONFIG")
		t.Setenv("CDSS_ADDR", ":9090")
		t.Setenv("CDSS_MODEL_PATH", "/opt/models/risk.onnx")
		t.Setenv("CDSS_LOG_LEVEL", "debug")

		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.ModelPath, ShouldEqual, "/opt/models/risk.onnx")
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})
}

func TestLoadYAMLFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "cdss.yaml")
		yml := "addr: \":7070\"\nworksheet: \"Cases\"\nrecent_capacity: 16\n"
		So(os.WriteFile(path, []byte(yml), 0o600), ShouldBeNil)
		t.Setenv("CDSS_CONFIG", path)

		cfg, err := config.Load(context.Background())

		Convey("Then file values are layered over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.Worksheet, ShouldEqual, "Cases")
			So(cfg.RecentCapacity, ShouldEqual, 16)
			So(cfg.ModelPath, ShouldEqual, "models/nephro_risk.onnx")
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given invalid configuration", t, func() {
		os.Unsetenv("CDSS_CONFIG")

		Convey("An empty addr is rejected", func() {
			t.Setenv("CDSS_ADDR", "")
			// koanf treats empty env values as set, so this must fail.
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("A spreadsheet without credentials is rejected", func() {
			t.Setenv("CDSS_SPREADSHEET_ID", "sheet-123")
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("A missing config file surfaces a load error", func() {
			t.Setenv("CDSS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
