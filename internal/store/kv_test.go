package store

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"
)

func openTemp(t *testing.T) (*KV, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "expenses.db")
	kv, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	return kv, path
}

func TestKV_GetMissing(t *testing.T) {
	kv, _ := openTemp(t)
	defer kv.Close()

	v, found, err := kv.Get("expenses")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found || v != nil {
		t.Fatalf("Get on empty db = (%q, %v), want (nil, false)", v, found)
	}
}

func TestKV_SetOverwritesAndSurvivesReopen(t *testing.T) {
	kv, path := openTemp(t)

	if err := kv.Set("expenses", []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set("expenses", []byte(`[2]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, found, err := reopened.Get("expenses")
	if err != nil || !found {
		t.Fatalf("Get after reopen = (found=%v, err=%v)", found, err)
	}
	if !bytes.Equal(v, []byte(`[2]`)) {
		t.Fatalf("value = %q, want [2]", v)
	}
}

func TestKV_DeleteAndKeys(t *testing.T) {
	kv, _ := openTemp(t)
	defer kv.Close()

	for _, k := range []string{"b", "a", "c"} {
		if err := kv.Set(k, []byte(k)); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}
	if err := kv.Delete("b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := kv.Delete("missing"); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}

	keys, err := kv.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	if err := m.Set("k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'z'

	v, found, _ := m.Get("k")
	if !found || string(v) != "abc" {
		t.Fatalf("Get = (%q, %v), want (abc, true)", v, found)
	}
	v[1] = 'z'
	again, _, _ := m.Get("k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through Get result: %q", again)
	}
}

func TestDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got, want := DefaultPath(), filepath.Join("/tmp/xdg-data", "iexpense", "expenses.db"); got != want {
		t.Fatalf("DefaultPath = %q, want %q", got, want)
	}
}

func TestIsBusy(t *testing.T) {
	cases := map[string]bool{
		"database is locked (5) (SQLITE_BUSY)": true,
		"SQLITE_BUSY":                          true,
		"no such table: kv":                    false,
	}
	for msg, want := range cases {
		if got := isBusy(errString(msg)); got != want {
			t.Errorf("isBusy(%q) = %v, want %v", msg, got, want)
		}
	}
	if isBusy(nil) {
		t.Error("isBusy(nil) = true")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
