package visibility

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/ledger"
	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
)

// 2024-06-11 is a Tuesday.
var tuesday = time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)

func tracker(name string, days ...schedule.WeekDay) model.Tracker {
	return model.Tracker{
		ID:       uuid.New(),
		Name:     name,
		Schedule: schedule.Schedule(days),
	}
}

func categories(cats ...model.TrackerCategory) []model.TrackerCategory {
	return cats
}

func names(cats []model.TrackerCategory) []string {
	var out []string
	for _, c := range cats {
		for _, t := range c.Trackers {
			out = append(out, t.Name)
		}
	}
	return out
}

func TestScheduleMismatchExcluded(t *testing.T) {
	mondayWednesday := tracker("Gym", schedule.Monday, schedule.Wednesday)
	all := categories(model.TrackerCategory{Title: "Health", Trackers: []model.Tracker{mondayWednesday}})

	got := Visible(all, tuesday, "", "", nil)
	if len(got) != 0 {
		t.Errorf("tracker scheduled Mon/Wed should be hidden on Tuesday, got %v", names(got))
	}

	// Search text cannot bring it back.
	got = Visible(all, tuesday, "gym", "", nil)
	if len(got) != 0 {
		t.Errorf("search must not override the schedule filter, got %v", names(got))
	}
}

func TestIrregularEventAlwaysVisible(t *testing.T) {
	event := tracker("Dentist")
	all := categories(model.TrackerCategory{Title: "One-offs", Trackers: []model.Tracker{event}})

	for i := 0; i < 7; i++ {
		day := tuesday.AddDate(0, 0, i)
		got := Visible(all, day, "", "", nil)
		if len(got) != 1 || len(got[0].Trackers) != 1 {
			t.Errorf("irregular event should be visible on %s", day.Format("2006-01-02"))
		}
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	all := categories(model.TrackerCategory{Title: "Health", Trackers: []model.Tracker{
		tracker("Morning Run", schedule.Tuesday),
		tracker("Read a book", schedule.Tuesday),
	}})

	got := Visible(all, tuesday, "RUN", "", nil)
	if want := []string{"Morning Run"}; len(got) != 1 || got[0].Trackers[0].Name != want[0] {
		t.Errorf("search RUN: got %v, want %v", names(got), want)
	}

	got = Visible(all, tuesday, "o", "", nil)
	if len(names(got)) != 2 {
		t.Errorf("search o: got %v, want both trackers", names(got))
	}
}

func TestSearchNarrowsNeverExpands(t *testing.T) {
	all := categories(
		model.TrackerCategory{Title: "A", Trackers: []model.Tracker{
			tracker("Water plants", schedule.Tuesday),
			tracker("Walk", schedule.Tuesday),
		}},
		model.TrackerCategory{Title: "B", Trackers: []model.Tracker{
			tracker("Write journal"),
		}},
	)

	base := len(names(Visible(all, tuesday, "wa", "", nil)))
	narrowed := len(names(Visible(all, tuesday, "wat", "", nil)))
	if narrowed > base {
		t.Errorf("longer search term expanded the result: %d > %d", narrowed, base)
	}
}

func TestEmptyCategoriesDropped(t *testing.T) {
	all := categories(
		model.TrackerCategory{Title: "Empty", Trackers: nil},
		model.TrackerCategory{Title: "Weekend", Trackers: []model.Tracker{tracker("Hike", schedule.Saturday)}},
		model.TrackerCategory{Title: "Daily", Trackers: []model.Tracker{tracker("Stretch")}},
	)

	got := Visible(all, tuesday, "", "", nil)
	if len(got) != 1 || got[0].Title != "Daily" {
		t.Errorf("want only Daily category, got %d categories", len(got))
	}
}

func TestStatusFilterConsultsLedger(t *testing.T) {
	done := tracker("Done thing", schedule.Tuesday)
	pending := tracker("Pending thing", schedule.Tuesday)
	all := categories(model.TrackerCategory{Title: "Stuff", Trackers: []model.Tracker{done, pending}})

	l := ledger.New()
	l.SetClock(func() time.Time { return tuesday })
	if _, err := l.Toggle(done.ID, tuesday); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	got := Visible(all, tuesday, "", model.FilterCompleted, l)
	if want := "Done thing"; len(names(got)) != 1 || names(got)[0] != want {
		t.Errorf("completed filter: got %v, want [%s]", names(got), want)
	}

	got = Visible(all, tuesday, "", model.FilterNotCompleted, l)
	if want := "Pending thing"; len(names(got)) != 1 || names(got)[0] != want {
		t.Errorf("not_completed filter: got %v, want [%s]", names(got), want)
	}
}

func TestAllAndTodayPassThrough(t *testing.T) {
	done := tracker("Done thing", schedule.Tuesday)
	pending := tracker("Pending thing", schedule.Tuesday)
	all := categories(model.TrackerCategory{Title: "Stuff", Trackers: []model.Tracker{done, pending}})

	l := ledger.New()
	l.SetClock(func() time.Time { return tuesday })
	l.Toggle(done.ID, tuesday)

	for _, f := range []model.Filter{model.FilterAll, model.FilterToday, ""} {
		got := Visible(all, tuesday, "", f, l)
		if len(names(got)) != 2 {
			t.Errorf("filter %q: got %v, want both trackers", f, names(got))
		}
	}
}

func TestOrderPreserved(t *testing.T) {
	all := categories(
		model.TrackerCategory{Title: "B", Trackers: []model.Tracker{tracker("Second")}},
		model.TrackerCategory{Title: "A", Trackers: []model.Tracker{tracker("Third"), tracker("First")}},
	)

	got := Visible(all, tuesday, "", "", nil)
	want := []string{"Second", "Third", "First"}
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("got %v, want %v", gotNames, want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, gotNames[i], want[i])
		}
	}
}

func TestEmptyInputYieldsEmptyResult(t *testing.T) {
	if got := Visible(nil, tuesday, "", "", nil); len(got) != 0 {
		t.Errorf("Visible(nil) = %v, want empty", got)
	}
}

func TestAnyDue(t *testing.T) {
	weekend := categories(model.TrackerCategory{Title: "W", Trackers: []model.Tracker{tracker("Hike", schedule.Saturday)}})
	if AnyDue(weekend, tuesday) {
		t.Error("Saturday-only tracker should not be due on Tuesday")
	}
	saturday := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !AnyDue(weekend, saturday) {
		t.Error("Saturday tracker should be due on Saturday")
	}
}
