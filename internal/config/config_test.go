package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/okian/scoutgrade/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Format, convey.ShouldEqual, config.FormatConsole)
			convey.So(cfg.Output, convey.ShouldEqual, "-")
			convey.So(cfg.Catalog, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with several invalid fields", t, func() {
		cfg := config.New(context.Background())
		cfg.Addr = ""
		cfg.Format = "xml"
		cfg.WorkerCount = 0
		cfg.TopN = -1

		err := cfg.Validate()

		convey.Convey("Then every problem is reported", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr")
			convey.So(err.Error(), convey.ShouldContainSubstring, `"xml"`)
			convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count")
			convey.So(err.Error(), convey.ShouldContainSubstring, "top_n")
		})
	})
}
