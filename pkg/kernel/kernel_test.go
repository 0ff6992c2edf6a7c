package kernel_test

import (
	"github.com/brickingsoft/reactor/pkg/kernel"
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	v, err := kernel.Get()
	if runtime.GOOS != "linux" {
		if err == nil {
			t.Fatal("expected error on", runtime.GOOS)
		}
		return
	}
	if err != nil {
		t.Fatal(err)
	}
	t.Log(v)
}

func TestParse(t *testing.T) {
	cases := []struct {
		release string
		want    kernel.Version
	}{
		{"6.1.0-18-amd64", kernel.Version{Major: 6, Minor: 1, Patch: 0, Flavor: "-18-amd64"}},
		{"5.15.133.1-microsoft-standard-WSL2", kernel.Version{Major: 5, Minor: 15, Patch: 133, Flavor: ".1-microsoft-standard-WSL2"}},
		{"6.8", kernel.Version{Major: 6, Minor: 8}},
	}
	for _, c := range cases {
		v, err := kernel.Parse(c.release)
		if err != nil {
			t.Error(c.release, err)
			continue
		}
		if v != c.want {
			t.Error(c.release, "got", v, "want", c.want)
		}
	}
	if _, err := kernel.Parse("linux"); err == nil {
		t.Error("expected error")
	}
}

func TestCompare(t *testing.T) {
	a := kernel.Version{Major: 6, Minor: 0}
	b := kernel.Version{Major: 5, Minor: 19, Patch: 3}
	if kernel.Compare(a, b) != 1 || kernel.Compare(b, a) != -1 || kernel.Compare(a, a) != 0 {
		t.Fatal("unexpected compare result")
	}
}
