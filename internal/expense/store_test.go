package expense

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/theirongolddev/iexpense/internal/model"
	"github.com/theirongolddev/iexpense/internal/store"

	"github.com/google/uuid"
)

const (
	personal = model.CategoryPersonal
	business = model.CategoryBusiness
)

// seed returns a store holding [A(P), B(B), C(P)] over a fresh memory port.
func seed(t *testing.T) (*Store, *store.Memory, model.Expense, model.Expense, model.Expense) {
	t.Helper()
	port := store.NewMemory()
	s := New(port)
	a := s.Add("A", personal, 5)
	b := s.Add("B", business, 50)
	c := s.Add("C", personal, 500)
	return s, port, a, b, c
}

func names(items []model.Expense) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Name
	}
	return out
}

func TestNew_EmptyPort(t *testing.T) {
	var failures int
	s := New(store.NewMemory(), WithErrorHandler(func(Op, error) { failures++ }))

	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if items := s.Items(); items == nil || len(items) != 0 {
		t.Fatalf("Items = %#v, want empty non-nil slice", items)
	}
	if failures != 0 {
		t.Fatalf("missing blob reported %d failures, want 0", failures)
	}
}

func TestRoundTrip(t *testing.T) {
	items := []model.Expense{
		{ID: uuid.New(), Name: "Coffee", Type: personal, Amount: 3.1},
		{ID: uuid.New(), Name: "", Type: business, Amount: -12.75},
		{ID: uuid.New(), Name: "Tiny", Type: "Travel", Amount: 0.1 + 0.2},
		{ID: uuid.New(), Name: "Big", Type: personal, Amount: math.MaxFloat64},
	}

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got []model.Expense
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, items)
	}
}

func TestPersistedFormat(t *testing.T) {
	port := store.NewMemory()
	s := New(port)
	e := s.Add("Lunch", personal, 12.5)

	data, found, _ := port.Get(StorageKey)
	if !found {
		t.Fatal("nothing persisted under storage key")
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("persisted blob is not a JSON array: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("persisted %d records, want 1", len(raw))
	}
	want := map[string]any{"id": e.ID.String(), "name": "Lunch", "type": personal, "amount": 12.5}
	if !reflect.DeepEqual(raw[0], want) {
		t.Fatalf("persisted record = %v, want %v", raw[0], want)
	}
}

func TestLoad_AcceptsUppercaseIDs(t *testing.T) {
	port := store.NewMemory()
	blob := `[{"id":"E621E1F8-C36C-495A-93FC-0C247A3E6E5F","name":"Taxi","type":"Business","amount":23}]`
	_ = port.Set(StorageKey, []byte(blob))

	s := New(port)
	items := s.Items()
	if len(items) != 1 || items[0].Name != "Taxi" {
		t.Fatalf("Items = %#v, want the Taxi record", items)
	}
	if items[0].ID.String() != "e621e1f8-c36c-495a-93fc-0c247a3e6e5f" {
		t.Fatalf("ID = %s", items[0].ID)
	}
}

func TestAppend_PreservesOrder(t *testing.T) {
	s, _, _, _, _ := seed(t)
	d := s.Add("D", business, 1)

	items := s.Items()
	if items[len(items)-1].ID != d.ID {
		t.Fatalf("last master record = %s, want D", items[len(items)-1].Name)
	}
	proj := s.ByCategory(business)
	if proj[len(proj)-1].ID != d.ID {
		t.Fatalf("last Business record = %s, want D", proj[len(proj)-1].Name)
	}
	if got, want := names(items), []string{"A", "B", "C", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("master order = %v, want %v", got, want)
	}
}

func TestAppend_NoValidation(t *testing.T) {
	s := New(store.NewMemory())
	s.Add("", personal, 0)
	s.Add("refund", personal, -20)
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestAppend_UniqueIDs(t *testing.T) {
	s := New(store.NewMemory())
	dup := model.NewExpense("first", personal, 1)
	s.Append(dup)
	s.Append(dup)
	s.Append(model.Expense{Name: "zero id", Type: business})
	for i := 0; i < 500; i++ {
		s.Add("bulk", personal, float64(i))
	}

	seen := make(map[uuid.UUID]bool)
	for _, e := range s.Items() {
		if e.ID == uuid.Nil {
			t.Fatalf("record %q has nil ID", e.Name)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate ID %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestRemoveByCategory_ResolvesByIdentity(t *testing.T) {
	s, _, _, _, _ := seed(t)

	if n := s.RemoveByCategory(personal, 0); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if got, want := names(s.Items()), []string{"B", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after removing Personal[0]: %v, want %v", got, want)
	}
}

func TestRemoveByCategory_SecondFilteredRow(t *testing.T) {
	s, _, _, _, _ := seed(t)

	// Personal[1] is C, which sits at master index 2.
	s.RemoveByCategory(personal, 1)
	if got, want := names(s.Items()), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after removing Personal[1]: %v, want %v", got, want)
	}
}

func TestRemoveByCategory_OutOfRangeIgnored(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    []string
	}{
		{"past end", []int{99}, []string{"A", "B", "C"}},
		{"negative", []int{-1}, []string{"A", "B", "C"}},
		{"no indices", nil, []string{"A", "B", "C"}},
		{"mixed", []int{99, 1, -3}, []string{"A", "B"}},
		{"duplicates", []int{0, 0}, []string{"B", "C"}},
		{"all", []int{1, 0}, []string{"B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, _, _ := seed(t)
			s.RemoveByCategory(personal, tt.indices...)
			if got := names(s.Items()); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("items = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveByCategory_CategoryIsolation(t *testing.T) {
	port := store.NewMemory()
	s := New(port)
	for i := 0; i < 6; i++ {
		s.Add("p", personal, float64(i))
		s.Add("b", business, float64(i))
	}
	before := s.ByCategory(personal)

	s.RemoveByCategory(business, 0, 2, 4, 5)

	if after := s.ByCategory(personal); !reflect.DeepEqual(after, before) {
		t.Fatalf("Personal projection changed by Business removal")
	}
	if got := len(s.ByCategory(business)); got != 2 {
		t.Fatalf("Business count = %d, want 2", got)
	}
}

func TestRemoveByCategory_UnknownCategory(t *testing.T) {
	s, _, _, _, _ := seed(t)
	if n := s.RemoveByCategory("Travel", 0); n != 0 {
		t.Fatalf("removed %d from unknown category, want 0", n)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
}

func TestPersistOnMutation(t *testing.T) {
	s, port, _, _, _ := seed(t)

	check := func(step string) {
		t.Helper()
		fresh := New(port)
		if !reflect.DeepEqual(fresh.Items(), s.Items()) {
			t.Fatalf("%s: reloaded %v, in memory %v", step, names(fresh.Items()), names(s.Items()))
		}
	}

	check("after appends")
	s.RemoveByCategory(personal, 0)
	check("after remove")
	s.RemoveByCategory(business, 7)
	check("after no-op remove")
	s.RemoveByCategory(personal, 0)
	s.RemoveByCategory(business, 0)
	check("after emptying")
}

func TestPersistOnMutation_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")
	kv, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s := New(kv)
	s.Add("A", personal, 1.25)
	s.Add("B", business, 2.5)
	s.RemoveByCategory(business, 0)
	want := s.Items()
	_ = kv.Close()

	reopened, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if got := New(reopened).Items(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after restart %v, want %v", names(got), names(want))
	}
}

type failingPort struct {
	blob   []byte
	getErr error
	setErr error
	sets   int
}

func (f *failingPort) Get(string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.blob, f.blob != nil, nil
}

func (f *failingPort) Set(string, []byte) error {
	f.sets++
	return f.setErr
}

func TestLoad_CorruptBlobIsSilent(t *testing.T) {
	var ops []Op
	s := New(&failingPort{blob: []byte(`{"not":"an array"`)},
		WithErrorHandler(func(op Op, err error) { ops = append(ops, op) }))

	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after corrupt blob", s.Len())
	}
	if !reflect.DeepEqual(ops, []Op{OpDecode}) {
		t.Fatalf("reported ops = %v, want [decode]", ops)
	}
}

func TestLoad_NeverPartial(t *testing.T) {
	blob := `[{"id":"` + uuid.NewString() + `","name":"ok","type":"Personal","amount":1},{"id":42}]`
	s := New(&failingPort{blob: []byte(blob)})
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0 (no partial load)", s.Len())
	}
}

func TestLoad_PortErrorIsSilent(t *testing.T) {
	var ops []Op
	s := New(&failingPort{getErr: errors.New("disk gone")},
		WithErrorHandler(func(op Op, err error) { ops = append(ops, op) }))
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if !reflect.DeepEqual(ops, []Op{OpLoad}) {
		t.Fatalf("reported ops = %v, want [load]", ops)
	}
}

func TestPersist_WriteFailureKeepsMemory(t *testing.T) {
	writeErr := errors.New("read-only")
	port := &failingPort{setErr: writeErr}
	var reported []error
	s := New(port, WithErrorHandler(func(op Op, err error) {
		if op != OpWrite {
			t.Errorf("op = %s, want write", op)
		}
		reported = append(reported, err)
	}))

	s.Add("A", personal, 1)
	s.Add("B", personal, 2)
	s.RemoveByCategory(personal, 0)

	if got, want := names(s.Items()), []string{"B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	if port.sets != 3 {
		t.Fatalf("Set called %d times, want one per mutation (3)", port.sets)
	}
	if len(reported) != 3 || !errors.Is(reported[0], writeErr) {
		t.Fatalf("reported = %v, want 3 wrapped write errors", reported)
	}
}

func TestLoad_DuplicateIDsAreReassigned(t *testing.T) {
	id := uuid.NewString()
	blob := `[{"id":"` + id + `","name":"Rent","type":"Personal","amount":900},` +
		`{"id":"` + id + `","name":"Laptop","type":"Business","amount":1500}]`
	port := store.NewMemory()
	if err := port.Set(StorageKey, []byte(blob)); err != nil {
		t.Fatalf("seeding port: %v", err)
	}

	s := New(port)
	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("Len = %d, want 2", len(items))
	}
	if items[0].ID.String() != id {
		t.Errorf("first occurrence kept id %s, want %s", items[0].ID, id)
	}
	if items[0].ID == items[1].ID {
		t.Fatal("duplicate ids survived load")
	}

	// The repaired list is written back.
	if got := New(port).Items(); got[1].ID != items[1].ID {
		t.Errorf("reloaded id = %s, want %s", got[1].ID, items[1].ID)
	}

	if n := s.RemoveByCategory(business, 0); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if got, want := names(s.Items()), []string{"Rent"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
}

func TestLoad_UniqueIDsDoNotRewrite(t *testing.T) {
	blob := `[{"id":"` + uuid.NewString() + `","name":"A","type":"Personal","amount":1}]`
	port := &failingPort{blob: []byte(blob)}
	New(port)
	if port.sets != 0 {
		t.Fatalf("Set called %d times on a clean load, want 0", port.sets)
	}
}

func TestChangeHandler(t *testing.T) {
	port := store.NewMemory()
	var events []Event
	s := New(port, WithChangeHandler(func(ev Event) {
		// The mutation must already be durable when the event fires.
		if got := New(port).Len(); got != len(ev.Items) {
			t.Errorf("%s event: persisted %d, event carries %d", ev.Op, got, len(ev.Items))
		}
		events = append(events, ev)
	}))

	s.Add("A", personal, 1)
	s.RemoveByCategory(personal, 0)

	if len(events) != 2 || events[0].Op != OpAppend || events[1].Op != OpRemove {
		t.Fatalf("events = %+v, want append then remove", events)
	}
	if len(events[1].Items) != 0 {
		t.Fatalf("remove event items = %d, want 0", len(events[1].Items))
	}
}

func TestItemsAndByCategoryAreCopies(t *testing.T) {
	s, _, _, _, _ := seed(t)

	items := s.Items()
	items[0].Name = "mutated"
	proj := s.ByCategory(personal)
	proj[0].Name = "mutated"

	if s.Items()[0].Name != "A" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestCategories(t *testing.T) {
	s, _, _, _, _ := seed(t)
	s.Add("T", "Travel", 3)
	if got, want := s.Categories(), []string{personal, business, "Travel"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
}
