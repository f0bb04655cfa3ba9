package node

import (
	"errors"
	"slices"
	"sync"
	"testing"

	apperrors "github.com/matzehuels/godswood/pkg/errors"
)

func mustRef(t *testing.T, ref Ref, err error) Ref {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func mustGet(t *testing.T, s *Store, ref Ref) Node {
	t.Helper()
	n, err := s.Get(ref)
	if err != nil {
		t.Fatalf("Get(%d): %v", ref, err)
	}
	return n
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore()

	app := mustRef(t, s.AddAppNode(Fields{}))
	child := mustRef(t, s.AddNode("svc", Fields{}))
	leaf := mustRef(t, s.AddLeafNode("db", Fields{DisplayName: "Database"}))
	bare := mustRef(t, s.NewNode())

	tests := []struct {
		name        string
		ref         Ref
		wantName    string
		wantDisplay string
		wantKind    Kind
	}{
		{"app", app, DefaultAppName, DefaultDisplayName, KindRoot},
		{"node", child, "svc", DefaultDisplayName, KindNode},
		{"leaf", leaf, "db", "Database", KindLeaf},
		{"bare", bare, "", "", KindNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := mustGet(t, s, tt.ref)
			if n.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", n.Name, tt.wantName)
			}
			if tt.wantDisplay != "" && n.DisplayName != tt.wantDisplay {
				t.Errorf("DisplayName = %q, want %q", n.DisplayName, tt.wantDisplay)
			}
			if n.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", n.Kind, tt.wantKind)
			}
		})
	}

	if n := mustGet(t, s, app); n.Service != ServiceGeneral {
		t.Errorf("Service = %v, want %v", n.Service, ServiceGeneral)
	}
	if got := s.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}

func TestStoreIDsIncrease(t *testing.T) {
	s := NewStore()
	var prev Ref
	for i := 0; i < 10; i++ {
		ref := mustRef(t, s.NewNode())
		if ref.IsZero() {
			t.Fatal("allocated zero ref")
		}
		if ref.ID() <= prev.ID() {
			t.Fatalf("id %d not greater than %d", ref.ID(), prev.ID())
		}
		prev = ref
	}
}

func TestStoreLinkOrder(t *testing.T) {
	s := NewStore()
	app := mustRef(t, s.AddAppNode(Fields{Name: "app1"}))
	var want []Ref
	for _, name := range []string{"c", "a", "b"} {
		ref := mustRef(t, s.AddNode(name, Fields{}))
		if err := s.Link(app, ref); err != nil {
			t.Fatal(err)
		}
		want = append(want, ref)
	}

	children, err := s.Children(app)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(children, want) {
		t.Errorf("Children() = %v, want %v", children, want)
	}

	parents, err := s.Parents(want[0])
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(parents, []Ref{app}) {
		t.Errorf("Parents() = %v, want [%d]", parents, app)
	}
}

func TestStoreLinkDangling(t *testing.T) {
	s := NewStore()
	app := mustRef(t, s.AddAppNode(Fields{}))

	err := s.Link(app, Ref(99))
	if !errors.Is(err, ErrDanglingRef) {
		t.Fatalf("Link() error = %v, want ErrDanglingRef", err)
	}
	if !apperrors.Is(err, apperrors.ErrCodeDanglingReference) {
		t.Errorf("code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeDanglingReference)
	}

	if _, err := s.Get(Ref(99)); !errors.Is(err, ErrDanglingRef) {
		t.Errorf("Get() error = %v, want ErrDanglingRef", err)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore()
	app := mustRef(t, s.AddAppNode(Fields{Name: "app1"}))
	child := mustRef(t, s.AddNode("svc", Fields{}))
	if err := s.Link(app, child); err != nil {
		t.Fatal(err)
	}

	n := mustGet(t, s, app)
	n.Children[0] = Ref(42)
	n.Paths["x"] = RootPath("x")

	again := mustGet(t, s, app)
	if !slices.Equal(again.Children, []Ref{child}) {
		t.Errorf("Children = %v, want [%d]", again.Children, child)
	}
	if _, ok := again.Paths["x"]; ok {
		t.Error("mutation of a snapshot leaked into the store")
	}
}

func TestStoreIndex(t *testing.T) {
	s := NewStore()
	a := mustRef(t, s.AddNode("a", Fields{}))
	b := mustRef(t, s.AddNode("b", Fields{}))

	_, err := s.GetWeakNode(".app.a")
	if !errors.Is(err, ErrNotFound) || !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Fatalf("GetWeakNode() error = %v, want NOT_FOUND", err)
	}

	if err := s.UpdateIndex(".app.a", a); err != nil {
		t.Fatal(err)
	}
	if got := mustRef(t, s.GetWeakNode(".app.a")); got != a {
		t.Errorf("GetWeakNode() = %d, want %d", got, a)
	}

	// Last writer wins on collision.
	if err := s.UpdateIndex(".app.a", b); err != nil {
		t.Fatal(err)
	}
	if got := mustRef(t, s.GetWeakNode(".app.a")); got != b {
		t.Errorf("GetWeakNode() after overwrite = %d, want %d", got, b)
	}
	if got := s.IndexLen(); got != 1 {
		t.Errorf("IndexLen() = %d, want 1", got)
	}

	if err := s.UpdateIndex(".app.z", Ref(77)); !errors.Is(err, ErrDanglingRef) {
		t.Errorf("UpdateIndex(unknown) error = %v, want ErrDanglingRef", err)
	}
}

func TestStoreSetPath(t *testing.T) {
	s := NewStore()
	a := mustRef(t, s.AddNode("a", Fields{}))
	p := RootPath("app1").Append("a")
	if err := s.SetPath(a, "app1", p); err != nil {
		t.Fatal(err)
	}

	n := mustGet(t, s, a)
	got, ok := n.Path("app1")
	if !ok || got != p {
		t.Errorf("Path(app1) = %v, %v; want %v, true", got, ok, p)
	}
	if _, ok := n.Path("other"); ok {
		t.Error("Path(other) found, want missing")
	}
}

func TestStorePoisoning(t *testing.T) {
	s := NewStore()
	ref := mustRef(t, s.AddAppNode(Fields{Name: "app1"}))
	if err := s.UpdateIndex(".app1", ref); err != nil {
		t.Fatal(err)
	}

	err := s.write("test", func() error { panic("boom") })
	if !errors.Is(err, ErrStoreCorrupted) {
		t.Fatalf("write() error = %v, want ErrStoreCorrupted", err)
	}
	if !apperrors.Fatal(err) {
		t.Error("Fatal() = false for a corrupted store")
	}
	if !s.Poisoned() {
		t.Error("Poisoned() = false after a panicking writer")
	}

	if _, err := s.NewNode(); !errors.Is(err, ErrStoreCorrupted) {
		t.Errorf("NewNode() error = %v", err)
	}
	if _, err := s.Get(ref); !errors.Is(err, ErrStoreCorrupted) {
		t.Errorf("Get() error = %v", err)
	}
	if _, err := s.GetWeakNode(".app1"); !errors.Is(err, ErrStoreCorrupted) {
		t.Errorf("GetWeakNode() error = %v", err)
	}
	if n, idx := s.Len(), s.IndexLen(); n != 0 || idx != 0 {
		t.Errorf("Len(), IndexLen() = %d, %d on a poisoned store, want 0, 0", n, idx)
	}

	// Another store is unaffected.
	other := NewStore()
	if _, err := other.NewNode(); err != nil {
		t.Errorf("fresh store: %v", err)
	}
}

func TestStoreConcurrentAllocation(t *testing.T) {
	s := NewStore()
	const workers, perWorker = 16, 200

	var wg sync.WaitGroup
	ids := make(chan Ref, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ref, err := s.AddNode("n", Fields{})
				if err != nil {
					t.Error(err)
					return
				}
				ids <- ref
				_, _ = s.Get(ref)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[Ref]bool, workers*perWorker)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perWorker {
		t.Errorf("allocated %d ids, want %d", len(seen), workers*perWorker)
	}
	if got := s.Len(); got != workers*perWorker {
		t.Errorf("Len() = %d, want %d", got, workers*perWorker)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindRoot, "root"},
		{KindNode, "node"},
		{KindLeaf, "leaf"},
		{Kind(9), "kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}

	text, err := KindLeaf.MarshalText()
	if err != nil || string(text) != "leaf" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}
