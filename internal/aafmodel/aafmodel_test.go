package aafmodel_test

import (
	"path/filepath"
	"testing"

	"bobbin/internal/aafmodel"
)

func TestParseMobIDNormalizesBareUUID(t *testing.T) {
	id, err := aafmodel.ParseMobID("0b58c6d2-2a4e-43ef-9a54-6f6c4b9b7d10")
	if err != nil {
		t.Fatalf("ParseMobID: %v", err)
	}
	if id != "urn:uuid:0b58c6d2-2a4e-43ef-9a54-6f6c4b9b7d10" {
		t.Fatalf("unexpected id: %s", id)
	}
	if _, err := aafmodel.ParseMobID("not-an-id"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestParseRational(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1/2", 0.5},
		{"99/100", 0.99},
		{"24", 24},
		{"0.5", 0.5},
	}
	for _, tc := range cases {
		got, err := aafmodel.ParseRational(tc.in)
		if err != nil {
			t.Fatalf("ParseRational(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRational(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := aafmodel.ParseRational("1/0"); err == nil {
		t.Fatal("expected zero denominator failure")
	}
}

func TestDictionaryRegistrationIsIdempotent(t *testing.T) {
	dict := aafmodel.NewDictionary()
	dict.RegisterOperation(aafmodel.OperationDef{Identification: "op-1", Name: "first"})
	dict.RegisterOperation(aafmodel.OperationDef{Identification: "op-1", Name: "second"})
	if len(dict.Operations) != 1 {
		t.Fatalf("expected one operation, got %d", len(dict.Operations))
	}
	if dict.Operations["op-1"].Name != "first" {
		t.Fatal("re-registration overwrote the original definition")
	}
}

func TestContainerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aaf")

	out, err := aafmodel.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	master := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.MasterMob, Name: "clip-1"}
	slot := master.CreateTimelineSlot(24)
	slot.Segment = &aafmodel.Component{
		Kind:   aafmodel.KindSourceClip,
		Length: 48,
		Start:  12,
	}
	out.Content.AppendMob(master)
	comp := &aafmodel.Mob{ID: aafmodel.NewMobID(), Kind: aafmodel.CompositionMob, TopLevel: true, Name: "timeline"}
	out.Content.AppendMob(comp)
	out.Dictionary.RegisterOperation(aafmodel.OperationDef{Identification: "op-sub", Name: "Submaster"})
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	in, err := aafmodel.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer in.Close()

	if len(in.Content.Mobs) != 2 {
		t.Fatalf("expected 2 mobs, got %d", len(in.Content.Mobs))
	}
	if in.Content.Mobs[0].Name != "clip-1" {
		t.Fatalf("mob order not preserved: %q first", in.Content.Mobs[0].Name)
	}
	got := in.Content.Mob(master.ID)
	if got == nil {
		t.Fatalf("master mob %s missing after round trip", master.ID)
	}
	if got.Slots[0].Segment.Length != 48 || got.Slots[0].Segment.Start != 12 {
		t.Fatalf("segment did not survive round trip: %+v", got.Slots[0].Segment)
	}
	if len(in.Content.TopLevelMobs()) != 1 {
		t.Fatal("top-level flag lost in round trip")
	}
	if _, ok := in.Dictionary.Operations["op-sub"]; !ok {
		t.Fatal("dictionary lost in round trip")
	}
}

func TestCreateRejectsConcurrentWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.aaf")
	first, err := aafmodel.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer first.Close()

	if _, err := aafmodel.Create(path); err == nil {
		t.Fatal("expected second writer to be rejected while lock held")
	}
}
