package facts

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return s, dir
}

func TestSetGet(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.Set("editor", "neovim"); err != nil {
		t.Fatal(err)
	}
	v, ok := s.Get("editor")
	if !ok || v != "neovim" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestKeyNormalization(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.Set("  Favorite Editor ", "neovim"); err != nil {
		t.Fatal(err)
	}
	if v, ok := s.Get("favorite_editor"); !ok || v != "neovim" {
		t.Errorf("normalized lookup = %q, %v", v, ok)
	}
	if _, ok := s.Get("FAVORITE EDITOR"); !ok {
		t.Error("lookup should normalize the query key too")
	}
}

func TestGetMissing(t *testing.T) {
	s, _ := openTestStore(t)
	if _, ok := s.Get("nope"); ok {
		t.Error("expected miss")
	}
}

func TestSetOverwrites(t *testing.T) {
	s, _ := openTestStore(t)
	s.Set("editor", "vim")
	s.Set("editor", "neovim")
	if v, _ := s.Get("editor"); v != "neovim" {
		t.Errorf("got %q", v)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestDelete(t *testing.T) {
	s, _ := openTestStore(t)
	s.Set("editor", "neovim")
	existed, err := s.Delete("editor")
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v", existed, err)
	}
	if _, ok := s.Get("editor"); ok {
		t.Error("still present after delete")
	}
	existed, err = s.Delete("editor")
	if err != nil || existed {
		t.Errorf("second delete = %v, %v", existed, err)
	}
}

func TestSearch(t *testing.T) {
	s, _ := openTestStore(t)
	s.Set("editor", "neovim")
	s.Set("shell", "zsh")
	s.Set("terminal", "konsole")

	hits := s.Search("neovim")
	if len(hits) != 1 || hits["editor"] != "neovim" {
		t.Errorf("value search = %v", hits)
	}
	hits = s.Search("SHELL")
	if len(hits) != 1 {
		t.Errorf("key search = %v", hits)
	}
	if hits := s.Search("missing"); len(hits) != 0 {
		t.Errorf("expected empty, got %v", hits)
	}
}

func TestAllSorted(t *testing.T) {
	s, _ := openTestStore(t)
	s.Set("zebra", "1")
	s.Set("apple", "2")
	s.Set("mango", "3")

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Key != "apple" || all[1].Key != "mango" || all[2].Key != "zebra" {
		t.Errorf("order = %v", all)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, dir := openTestStore(t)
	s.Set("editor", "neovim")

	s2, err := OpenStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := s2.Get("editor"); !ok || v != "neovim" {
		t.Errorf("reopened Get = %q, %v", v, ok)
	}
}

func TestCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "facts.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore on corrupt file: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d", s.Len())
	}
}
