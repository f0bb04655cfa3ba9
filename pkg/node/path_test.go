package node

import "testing"

func TestPathAppend(t *testing.T) {
	root := RootPath("app1")
	if root.String() != ".app1" || root.Depth() != 1 {
		t.Fatalf("RootPath = (%q, %d), want (.app1, 1)", root.String(), root.Depth())
	}

	a := root.Append("node1")
	b := root.Append("node2")

	if root.String() != ".app1" {
		t.Errorf("Append modified receiver: %q", root.String())
	}
	if a.String() != ".app1.node1" || a.Depth() != 2 {
		t.Errorf("a = (%q, %d), want (.app1.node1, 2)", a.String(), a.Depth())
	}
	if b.String() != ".app1.node2" || b.Depth() != 2 {
		t.Errorf("b = (%q, %d), want (.app1.node2, 2)", b.String(), b.Depth())
	}

	c := b.Append("node3")
	if c.String() != ".app1.node2.node3" || c.Depth() != 3 {
		t.Errorf("c = (%q, %d), want (.app1.node2.node3, 3)", c.String(), c.Depth())
	}
	if name, ok := ParseAppName(c.String()); !ok || name != "app1" {
		t.Errorf("ParseAppName(c) = %q, %v", name, ok)
	}
}

func TestPathZero(t *testing.T) {
	var p Path
	if !p.IsZero() {
		t.Error("zero Path should report IsZero")
	}
	if p.String() != "" || p.Depth() != 0 {
		t.Errorf("zero Path = (%q, %d)", p.String(), p.Depth())
	}
	if RootPath("x").IsZero() {
		t.Error("RootPath should not be zero")
	}
}

func TestParseAppName(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{".app1", "app1", true},
		{".app1.node2.node3", "app1", true},
		{"app1.node2", "", false},
		{".", "", false},
		{"..node", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ParseAppName(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseAppName(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
