package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/scoutgrade/internal/domain/dedupe"
	"github.com/okian/scoutgrade/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(16))
		ctx := context.Background()

		Convey("When the key is new", func() {
			seen := d.SeenAndRecord(ctx, "p1|2025")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the key repeats", func() {
			d.SeenAndRecord(ctx, "p1|2025")
			seen := d.SeenAndRecord(ctx, "p1|2025")

			Convey("Then it is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording concurrently", func() {
			var wg sync.WaitGroup
			firsts := make(chan string, 100)
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					key := fmt.Sprintf("p%d", i%10)
					if !d.SeenAndRecord(ctx, key) {
						firsts <- key
					}
				}(i)
			}
			wg.Wait()
			close(firsts)

			Convey("Then each key is new exactly once", func() {
				So(len(firsts), ShouldEqual, 10)
				So(d.Size(), ShouldEqual, 10)
			})
		})
	})
}

func TestRecords(t *testing.T) {
	Convey("Given records with a repeated player-season", t, func() {
		records := []model.PlayerRecord{
			{PlayerID: "a", Season: 2025, Team: "first"},
			{PlayerID: "b", Season: 2025},
			{PlayerID: " A ", Season: 2025, Team: "second"},
			{PlayerID: "a", Season: 2024},
		}

		kept, dropped := dedupe.Records(context.Background(), dedupe.NewInMemoryDeduper(), records)

		Convey("Then the first record wins and order is kept", func() {
			So(kept, ShouldHaveLength, 3)
			So(kept[0].Team, ShouldEqual, "first")
			So(kept[1].PlayerID, ShouldEqual, "b")
			So(kept[2].Season, ShouldEqual, 2024)
			So(dropped, ShouldHaveLength, 1)
			So(dropped[0].Team, ShouldEqual, "second")
		})
	})
}
